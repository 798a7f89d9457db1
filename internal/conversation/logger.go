package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEntryNotFound is returned when a stored conversation does not exist.
	ErrEntryNotFound = errors.New("conversation not found")

	errNoSheet = errors.New("conversation sheet not configured")
)

// Appender writes one row to the conversation sheet and reports the number
// of cells updated.
type Appender interface {
	AppendRow(ctx context.Context, row []string) (int64, error)
}

// Mirror receives every entry that was appended to the sheet.
type Mirror interface {
	MirrorConversation(ctx context.Context, e Entry) error
}

// Result is the outcome of LogConversation. Failures are reported through
// Success and Error rather than a Go error.
type Result struct {
	Success      bool   `json:"success"`
	LogID        string `json:"log_id,omitempty"`
	UpdatedCells int64  `json:"updated_cells,omitempty"`
	Error        string `json:"error,omitempty"`
}

type Logger struct {
	sheet   Appender
	mirrors []Mirror
	logger  *slog.Logger
	now     func() time.Time
}

// NewLogger returns a Logger appending to sheet. A nil sheet makes every call
// fail with a configuration error.
func NewLogger(sheet Appender, logger *slog.Logger, mirrors ...Mirror) *Logger {
	return &Logger{
		sheet:   sheet,
		mirrors: mirrors,
		logger:  logger,
		now:     time.Now,
	}
}

// LogConversation normalizes rec, appends it to the sheet and fans the entry
// out to mirrors.
func (l *Logger) LogConversation(ctx context.Context, rec Record) Result {
	if l.sheet == nil {
		return Result{Success: false, Error: errNoSheet.Error()}
	}

	entry := Normalize(rec, l.now())
	entry.ID = uuid.New()

	cells, err := l.sheet.AppendRow(ctx, entry.Row())
	if err != nil {
		l.logger.Error("failed to log conversation", "log_id", entry.ID, "error", err)
		return Result{Success: false, LogID: entry.ID.String(), Error: err.Error()}
	}
	l.logger.Info("conversation logged", "log_id", entry.ID, "updated_cells", cells)

	for _, m := range l.mirrors {
		if err := m.MirrorConversation(ctx, entry); err != nil {
			// Mirror failures never fail the log call.
			l.logger.Warn("conversation mirror failed", "log_id", entry.ID, "error", err)
		}
	}

	return Result{Success: true, LogID: entry.ID.String(), UpdatedCells: cells}
}

// HandleLogRequest is the NATS handler for resort.conversation.log.
func (l *Logger) HandleLogRequest(subject string, data []byte) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		l.logger.Error("failed to parse conversation log request", "subject", subject, "error", err)
		return
	}
	res := l.LogConversation(context.Background(), rec)
	if !res.Success {
		l.logger.Warn("conversation log request not recorded", "subject", subject, "error", res.Error)
	}
}
