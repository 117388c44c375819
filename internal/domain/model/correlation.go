package model

import (
	"time"

	"telegram-support-relay/internal/domain"
)

// CorrelationEntry links a message forwarded to a support target back to the
// user who sent it. Entries are append-only.
type CorrelationEntry struct {
	ID                 int64
	UserID             int64
	ForwardedMessageID int
	OriginalMessageID  int
	Category           Category
	CreatedAt          time.Time
}

func NewCorrelationEntry(userID int64, forwardedMsgID, originalMsgID int, c Category) (*CorrelationEntry, error) {
	if userID <= 0 || forwardedMsgID <= 0 || !c.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &CorrelationEntry{
		UserID:             userID,
		ForwardedMessageID: forwardedMsgID,
		OriginalMessageID:  originalMsgID,
		Category:           c,
		CreatedAt:          time.Now().UTC(),
	}, nil
}
