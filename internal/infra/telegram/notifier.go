// internal/infra/telegram/notifier.go
package telegram

import (
	"context"

	"medication_reminder/internal/app"
	domaintelegram "medication_reminder/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// OwnerNotifier reports each session outcome to the owner's chat.
type OwnerNotifier struct {
	client  domaintelegram.Client
	ownerID int64
	logger  *logrus.Entry
}

func NewOwnerNotifier(client domaintelegram.Client, ownerID int64, logger *logrus.Entry) *OwnerNotifier {
	return &OwnerNotifier{client: client, ownerID: ownerID, logger: logger}
}

var _ app.SessionNotifier = (*OwnerNotifier)(nil)

func (n *OwnerNotifier) SessionResolved(_ context.Context, result app.SessionResult) {
	text := outcomeMessage(result)
	if err := n.client.SendText(n.ownerID, text); err != nil {
		n.logger.WithError(err).WithField("session_id", result.ID).Error("Failed to notify owner")
		return
	}
	n.logger.WithField("session_id", result.ID).Debug("Owner notified")
}

// outcomeMessage renders the result the same way as a history line.
func outcomeMessage(result app.SessionResult) string {
	return result.Entry().String()
}
