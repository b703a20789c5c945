// internal/infra/telegram/commands.go
package telegram

import (
	"context"
	"errors"
	"fmt"

	"medication_reminder/internal/app"

	"github.com/sirupsen/logrus"
)

// Presser is the simulated confirmation sensor.
type Presser interface {
	Press()
}

// Commands implements the chat control surface on top of the configuration
// channel. Every method returns the reply text; the telebot wiring lives in
// RegisterBotCommands.
type Commands struct {
	channel *app.ConfigChannel
	trigger *app.Trigger
	button  Presser
	ownerID int64
	logger  *logrus.Entry
}

func NewCommands(channel *app.ConfigChannel, trigger *app.Trigger, button Presser, ownerID int64, logger *logrus.Entry) *Commands {
	return &Commands{
		channel: channel,
		trigger: trigger,
		button:  button,
		ownerID: ownerID,
		logger:  logger,
	}
}

const (
	msgUnauthorized = "Error: you are not allowed to change this device."
	msgReadFailed   = "Could not read the value, please try again."
)

func (h *Commands) isOwner(senderID int64) bool {
	return h.ownerID != 0 && senderID == h.ownerID
}

// Setting reads target when payload is empty and writes it otherwise.
func (h *Commands) Setting(ctx context.Context, senderID int64, target app.Target, payload string) string {
	logCtx := h.logger.WithFields(logrus.Fields{
		"target":    target,
		"sender_id": senderID,
	})
	if payload == "" {
		v, err := h.channel.Read(target)
		if err != nil {
			logCtx.WithError(err).Warn("Read failed")
			return msgReadFailed
		}
		if v == "" {
			v = "(empty)"
		}
		return fmt.Sprintf("%s: %s", target, v)
	}

	if !h.isOwner(senderID) {
		logCtx.Warn("Unauthorized write attempt")
		return msgUnauthorized
	}
	err := h.channel.Write(ctx, target, payload)
	switch {
	case errors.Is(err, app.ErrUnknownTarget), errors.Is(err, app.ErrNotWritable):
		logCtx.WithError(err).Warn("Write rejected")
		return fmt.Sprintf("Error: %s cannot be changed.", target)
	case err != nil:
		logCtx.WithError(err).Error("Write applied but not persisted")
		v, _ := h.channel.Read(target)
		return fmt.Sprintf("%s set to %s, but it could not be saved and will be lost on restart.", target, v)
	}
	v, _ := h.channel.Read(target)
	return fmt.Sprintf("%s: %s", target, v)
}

// Credentials writes network credentials. They are never echoed back.
func (h *Commands) Credentials(ctx context.Context, senderID int64, payload string) string {
	logCtx := h.logger.WithField("sender_id", senderID)
	if !h.isOwner(senderID) {
		logCtx.Warn("Unauthorized credentials write attempt")
		return msgUnauthorized
	}
	if payload == "" {
		return "Usage: /wifi <ssid>,<password>"
	}
	if err := h.channel.Write(ctx, app.TargetCredentials, payload); err != nil {
		logCtx.WithError(err).Error("Credentials applied but not persisted")
		return "Credentials applied, but they could not be saved."
	}
	return "Credentials received. The device will try to sync its clock."
}

// Taken simulates the confirmation sensor.
func (h *Commands) Taken(senderID int64) string {
	if !h.isOwner(senderID) {
		h.logger.WithField("sender_id", senderID).Warn("Unauthorized confirmation attempt")
		return msgUnauthorized
	}
	h.button.Press()
	return "Confirmation registered."
}

// Ring starts an alarm session at once.
func (h *Commands) Ring(senderID int64) string {
	if !h.isOwner(senderID) {
		h.logger.WithField("sender_id", senderID).Warn("Unauthorized ring attempt")
		return msgUnauthorized
	}
	h.trigger.Fire()
	return "Alarm triggered."
}
