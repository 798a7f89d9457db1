package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotAvailable replaces any conversation field the caller left empty.
const NotAvailable = "N/A"

// Header is the column row of the conversation sheet, in append order.
var Header = []string{
	"Call Time",
	"Phone Number",
	"Call Outcome",
	"Customer Name",
	"Room Name",
	"Check In Date",
	"Check Out Date",
	"Number of Guests",
	"Call Summary",
}

// Field is a conversation value. Voice agents send some fields as JSON
// numbers, so numbers and booleans decode to their literal text.
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = Field(s)
		return nil
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] == '{' || b[0] == '[' {
		return fmt.Errorf("unsupported conversation field value %s", b)
	}
	*f = Field(b)
	return nil
}

// Record is a conversation as submitted by a caller.
type Record struct {
	CallTime       Field `json:"callTime"`
	PhoneNumber    Field `json:"phoneNumber"`
	CallOutcome    Field `json:"callOutcome"`
	CustomerName   Field `json:"customerName"`
	RoomName       Field `json:"roomName"`
	CheckInDate    Field `json:"checkInDate"`
	CheckOutDate   Field `json:"checkOutDate"`
	NumberOfGuests Field `json:"numberOfGuests"`
	CallSummary    Field `json:"callSummary"`
}

// Entry is a normalized conversation ready for persistence.
type Entry struct {
	ID             uuid.UUID `json:"id"`
	LoggedAt       time.Time `json:"logged_at"`
	CallTime       string    `json:"call_time"`
	PhoneNumber    string    `json:"phone_number"`
	CallOutcome    string    `json:"call_outcome"`
	CustomerName   string    `json:"customer_name"`
	RoomName       string    `json:"room_name"`
	CheckInDate    string    `json:"check_in_date"`
	CheckOutDate   string    `json:"check_out_date"`
	NumberOfGuests string    `json:"number_of_guests"`
	CallSummary    string    `json:"call_summary"`
}

// Normalize fills empty fields with NotAvailable, except the call time which
// defaults to now.
func Normalize(rec Record, now time.Time) Entry {
	callTime := string(rec.CallTime)
	if strings.TrimSpace(callTime) == "" {
		callTime = now.UTC().Format(time.RFC3339)
	}
	return Entry{
		LoggedAt:       now.UTC(),
		CallTime:       callTime,
		PhoneNumber:    orNA(rec.PhoneNumber),
		CallOutcome:    orNA(rec.CallOutcome),
		CustomerName:   orNA(rec.CustomerName),
		RoomName:       orNA(rec.RoomName),
		CheckInDate:    orNA(rec.CheckInDate),
		CheckOutDate:   orNA(rec.CheckOutDate),
		NumberOfGuests: orNA(rec.NumberOfGuests),
		CallSummary:    orNA(rec.CallSummary),
	}
}

// Row returns the entry's values in Header order.
func (e Entry) Row() []string {
	return []string{
		e.CallTime,
		e.PhoneNumber,
		e.CallOutcome,
		e.CustomerName,
		e.RoomName,
		e.CheckInDate,
		e.CheckOutDate,
		e.NumberOfGuests,
		e.CallSummary,
	}
}

func orNA(f Field) string {
	if strings.TrimSpace(string(f)) == "" {
		return NotAvailable
	}
	return string(f)
}
