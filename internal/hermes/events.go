package hermes

import (
	"context"
	"time"

	"github.com/MikeSquared-Agency/resortinfo/internal/conversation"
)

const (
	// SubjectConversationLogged announces every conversation appended to the sheet.
	SubjectConversationLogged = "resort.conversation.logged"
	// SubjectConversationLog carries conversation records to be logged.
	SubjectConversationLog = "resort.conversation.log"
	// SubjectRegistered announces the service on startup.
	SubjectRegistered = "resort.agent.resortinfo.registered"
)

// ConversationLogged is the payload published on SubjectConversationLogged.
type ConversationLogged struct {
	Timestamp string             `json:"timestamp"`
	Entry     conversation.Entry `json:"entry"`
}

// NewConversationLogged builds the event for an appended entry.
func NewConversationLogged(e conversation.Entry) ConversationLogged {
	return ConversationLogged{
		Timestamp: e.LoggedAt.UTC().Format(time.RFC3339),
		Entry:     e,
	}
}

// MirrorConversation publishes the entry on SubjectConversationLogged, keyed
// by its log id.
func (c *Client) MirrorConversation(ctx context.Context, e conversation.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.publish(SubjectConversationLogged, NewConversationLogged(e), e.ID.String())
}
