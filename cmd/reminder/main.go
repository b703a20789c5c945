package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medication_reminder/internal/app"
	"medication_reminder/internal/domain/history"
	"medication_reminder/internal/domain/settings"
	"medication_reminder/internal/infra/config"
	idb "medication_reminder/internal/infra/database"
	"medication_reminder/internal/infra/device"
	"medication_reminder/internal/infra/httpapi"
	"medication_reminder/internal/infra/logger"
	"medication_reminder/internal/infra/mem"
	"medication_reminder/internal/infra/scheduler"
	"medication_reminder/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Medication Reminder starting...")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"db_driver":   cfg.DatabaseDriver,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	rtc := device.NewRTC(cfg.Location)
	if err := rtc.Begin(); err != nil {
		mainLogger.WithError(err).Error("Clock unavailable, halting")
		select {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var (
		kv          settings.KV
		historyRepo history.Repository
	)
	if cfg.DatabaseDriver == "memory" {
		kv = mem.NewStore()
		historyRepo = mem.NewHistoryRepository()
		mainLogger.Warn("Using in-memory storage, nothing survives a restart")
	} else {
		db, err := idb.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			mainLogger.WithError(err).Fatal("Could not prepare database schema")
		}
		kv = idb.NewSettingsStore(db)
		historyRepo = idb.NewHistoryRepository(db)
		mainLogger.Info("Database connection established successfully")
	}

	store := settings.NewStore(kv)
	initial, err := store.Load(ctx)
	if err != nil {
		mainLogger.WithError(err).Warn("Some settings could not be read, defaults applied")
	}

	historyLog := history.NewLog()
	recent, err := historyRepo.ListRecent(ctx, history.MaxEntries)
	if err != nil {
		mainLogger.WithError(err).Warn("Could not load history, starting empty")
	}
	for _, e := range recent {
		historyLog.Append(*e)
	}

	// Devices
	trigger := app.NewTrigger()
	alarm := scheduler.NewCronAlarm(cfg.Location, rtc, trigger.Fire, logger.Component("alarm"))
	alarm.Start()

	button := device.NewButton(rtc, cfg.SensorHold)
	display := device.NewConsoleDisplay(logger.Component("display"))
	syncer := device.NewHTTPTimeSync(cfg.TimeSyncURL, cfg.TimeSyncTimeout, rtc)
	armer := app.NewAlarmArmer(rtc, alarm, logger.Component("armer"))
	channel := app.NewConfigChannel(store, initial, logger.Component("config_channel"))

	// Telegram
	var (
		bot      *telebot.Bot
		notifier app.SessionNotifier
	)
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telegram")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{
						"sender_id": c.Sender().ID,
						"chat_id":   c.Chat().ID,
					})
				}
				entry.Error("Telebot error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		commands := telegram.NewCommands(channel, trigger, button, cfg.OwnerTelegramID, botLogger)
		telegram.RegisterBotCommands(ctx, bot, commands, botLogger)
		if cfg.OwnerTelegramID != 0 {
			notifier = telegram.NewOwnerNotifier(telegram.NewTelebotAdapter(bot), cfg.OwnerTelegramID, botLogger)
		}
		go bot.Start()
		mainLogger.Info("Telegram bot started")
	}

	timing := app.DefaultSessionTiming()
	timing.AlertDuration = cfg.AlertDuration
	timing.SilentDuration = cfg.SilentDuration
	timing.TotalBudget = cfg.TotalBudget
	timing.AlertPoll = cfg.AlertPoll
	timing.SilentPoll = cfg.SilentPoll

	engine := app.NewSessionEngine(app.SessionEngineDeps{
		Clock:       rtc,
		Sensor:      button,
		Buzzer:      device.NewLogBuzzer(logger.Component("buzzer")),
		Light:       device.NewLogLight(logger.Component("led")),
		Display:     display,
		Log:         historyLog,
		HistoryRepo: historyRepo,
		Armer:       armer,
		Notifier:    notifier,
		Timing:      timing,
		Logger:      logger.Component("session"),
	})

	controller := app.NewController(app.ControllerDeps{
		Clock:        rtc,
		Alarm:        alarm,
		Display:      display,
		Syncer:       syncer,
		Trigger:      trigger,
		Channel:      channel,
		Engine:       engine,
		Armer:        armer,
		Log:          historyLog,
		Logger:       logger.Component("controller"),
		Settings:     initial,
		PollInterval: cfg.ControllerPoll,
		MessageHold:  2 * time.Second,
	})

	// LAN control surface
	var server *http.Server
	if cfg.HTTPAddr != "" {
		handler := httpapi.NewControlHandler(channel, trigger, button, controller, logger.Component("http"))
		server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.New(handler, logger.Component("http")),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP control surface listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("HTTP server failed")
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		mainLogger.WithField("signal", sig.String()).Info("Shutting down application...")
		cancel()
	}()

	mainLogger.Info("Application setup complete")
	if err := controller.Run(ctx); err != nil {
		mainLogger.WithError(err).Error("Controller stopped with error")
	}

	alarm.Stop()
	if bot != nil {
		bot.Stop()
	}
	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("HTTP server shutdown failed")
		}
	}
	mainLogger.Info("Application shut down gracefully")
}
