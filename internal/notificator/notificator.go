package notificator

import (
	"runtime/debug"

	"github.com/core-coin/vendere/internal/models"
	"github.com/core-coin/vendere/pkg/logger"
)

// Notificator fans an issuance notice out to the configured ops channels.
// Either channel may be nil when not configured. Delivery is best effort:
// the mint has already committed by the time a notice arrives here.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
	EmailNotificator    *EmailNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator, emailNotif *EmailNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telNotif, EmailNotificator: emailNotif}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) SendIssuance(notice *models.IssuanceNotice) {
	message := notice.String()
	if n.TelegramNotificator != nil {
		n.safeCall(func() { n.TelegramNotificator.SendNotification(message) }, "telegramNotification")
	}
	if n.EmailNotificator != nil {
		n.safeCall(func() { n.EmailNotificator.SendNotification(message) }, "emailNotification")
	}
}
