// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"medication_reminder/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

var (
	controlMarkup = &telebot.ReplyMarkup{}
	btnTaken      = controlMarkup.Data("✅ Taken", "dose_taken")
	btnRing       = controlMarkup.Data("🔔 Ring now", "ring_now")
)

func init() {
	controlMarkup.Inline(controlMarkup.Row(btnTaken, btnRing))
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Available commands:\n\n")
	b.WriteString("`/schedule [HH:MM,HH:MM,...]`\n - Show or replace the alarm schedule.\n\n")
	b.WriteString("`/volume [0-255]`\n - Show or set the alarm volume.\n\n")
	b.WriteString("`/timemode [12h|24h]`\n - Show or set the clock format.\n\n")
	b.WriteString("`/wifi <ssid>,<password>`\n - Set network credentials and resync the clock.\n\n")
	b.WriteString("`/history`\n - Show the last doses.\n\n")
	b.WriteString("`/taken`\n - Confirm the current dose.\n\n")
	b.WriteString("`/ring`\n - Start an alarm now.\n\n")
	b.WriteString("`/help`\n - Show this message.")
	return b.String()
}

// RegisterBotCommands wires the chat commands onto the bot. Reads are open to
// anyone who knows the bot; writes are accepted from the owner only.
func RegisterBotCommands(ctx context.Context, b *telebot.Bot, commands *Commands, baseLogger *logrus.Entry) {
	logger := baseLogger.WithField("handler_group", "control")

	b.Handle("/start", func(c telebot.Context) error {
		logger.WithField("command", "/start").WithField("sender_id", c.Sender().ID).Info("Processing /start command")
		if commands.isOwner(c.Sender().ID) {
			return c.Send(fmt.Sprintf("Hello, %s! Your medication reminder is online. Use /help for the list of commands.", c.Sender().FirstName), controlMarkup)
		}
		return c.Send("Hello! This bot controls a medication reminder. Only its owner can change settings.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(helpText(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	settingHandler := func(target app.Target) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			return c.Send(commands.Setting(ctx, c.Sender().ID, target, c.Message().Payload))
		}
	}
	b.Handle("/schedule", settingHandler(app.TargetSchedule))
	b.Handle("/volume", settingHandler(app.TargetVolume))
	b.Handle("/timemode", settingHandler(app.TargetTimeMode))

	b.Handle("/history", func(c telebot.Context) error {
		return c.Send(commands.Setting(ctx, c.Sender().ID, app.TargetHistory, ""))
	})

	b.Handle("/wifi", func(c telebot.Context) error {
		reply := commands.Credentials(ctx, c.Sender().ID, c.Message().Payload)
		// The message carries a password; best effort to remove it from the chat.
		if err := c.Delete(); err != nil {
			logger.WithError(err).Debug("Could not delete credentials message")
		}
		return c.Send(reply)
	})

	b.Handle("/taken", func(c telebot.Context) error {
		return c.Send(commands.Taken(c.Sender().ID))
	})

	b.Handle("/ring", func(c telebot.Context) error {
		return c.Send(commands.Ring(c.Sender().ID))
	})

	b.Handle(&btnTaken, func(c telebot.Context) error {
		return c.Respond(&telebot.CallbackResponse{Text: commands.Taken(c.Sender().ID)})
	})

	b.Handle(&btnRing, func(c telebot.Context) error {
		return c.Respond(&telebot.CallbackResponse{Text: commands.Ring(c.Sender().ID)})
	})
}
