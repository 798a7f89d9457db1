package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/resortinfo/internal/conversation"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversation_logs (
	id               UUID PRIMARY KEY,
	logged_at        TIMESTAMPTZ NOT NULL,
	call_time        TEXT NOT NULL,
	phone_number     TEXT NOT NULL,
	call_outcome     TEXT NOT NULL,
	customer_name    TEXT NOT NULL,
	room_name        TEXT NOT NULL,
	check_in_date    TEXT NOT NULL,
	check_out_date   TEXT NOT NULL,
	number_of_guests TEXT NOT NULL,
	call_summary     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS conversation_logs_logged_at_idx ON conversation_logs (logged_at DESC);
`

// EnsureSchema creates the conversation_logs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// MirrorConversation appends a logged conversation to conversation_logs.
func (s *Store) MirrorConversation(ctx context.Context, e conversation.Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_logs (
			id, logged_at, call_time, phone_number, call_outcome, customer_name,
			room_name, check_in_date, check_out_date, number_of_guests, call_summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.LoggedAt, e.CallTime, e.PhoneNumber, e.CallOutcome, e.CustomerName,
		e.RoomName, e.CheckInDate, e.CheckOutDate, e.NumberOfGuests, e.CallSummary,
	)
	if err != nil {
		return fmt.Errorf("insert conversation log: %w", err)
	}
	return nil
}

// ConversationByID fetches a mirrored conversation.
func (s *Store) ConversationByID(ctx context.Context, id uuid.UUID) (*conversation.Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, logged_at, call_time, phone_number, call_outcome, customer_name,
			room_name, check_in_date, check_out_date, number_of_guests, call_summary
		FROM conversation_logs
		WHERE id = $1`,
		id,
	)

	var e conversation.Entry
	err := row.Scan(&e.ID, &e.LoggedAt, &e.CallTime, &e.PhoneNumber, &e.CallOutcome, &e.CustomerName,
		&e.RoomName, &e.CheckInDate, &e.CheckOutDate, &e.NumberOfGuests, &e.CallSummary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, conversation.ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation log: %w", err)
	}
	return &e, nil
}

// RecentConversations returns up to limit mirrored conversations, newest first.
func (s *Store) RecentConversations(ctx context.Context, limit int) ([]conversation.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, logged_at, call_time, phone_number, call_outcome, customer_name,
			room_name, check_in_date, check_out_date, number_of_guests, call_summary
		FROM conversation_logs
		ORDER BY logged_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation logs: %w", err)
	}
	defer rows.Close()

	var out []conversation.Entry
	for rows.Next() {
		var e conversation.Entry
		if err := rows.Scan(&e.ID, &e.LoggedAt, &e.CallTime, &e.PhoneNumber, &e.CallOutcome, &e.CustomerName,
			&e.RoomName, &e.CheckInDate, &e.CheckOutDate, &e.NumberOfGuests, &e.CallSummary); err != nil {
			return nil, fmt.Errorf("scan conversation log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
