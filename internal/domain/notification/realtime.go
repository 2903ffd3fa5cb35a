package notification

import (
	"context"

	"github.com/google/uuid"
)

type accountSender interface {
	SendToAccountJSON(accountID uuid.UUID, payload any) error
}

// WSPublisher publishes notification:new events over websocket
type WSPublisher struct {
	sender accountSender
}

// NewWSPublisher creates a WS-backed realtime publisher
func NewWSPublisher(sender accountSender) *WSPublisher {
	return &WSPublisher{sender: sender}
}

func (p *WSPublisher) NotifyNew(ctx context.Context, accountID uuid.UUID, n *Notification, unreadCount int) error {
	if p == nil || p.sender == nil {
		return nil
	}

	payload := map[string]interface{}{
		"type": "notification:new",
		"data": map[string]interface{}{
			"notification": n,
			"unread_count": unreadCount,
		},
	}

	return p.sender.SendToAccountJSON(accountID, payload)
}
