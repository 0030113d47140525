// Package bot wires the Telegram transport: routing, middlewares, and
// the dialogue dispatcher.
package bot

import (
	"database/sql"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/nutritrack/nutrition-bot/internal/bot/handlers"
	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
	errors "github.com/nutritrack/nutrition-bot/internal/errors"
	"github.com/nutritrack/nutrition-bot/internal/i18n"
	"github.com/nutritrack/nutrition-bot/internal/idempotency"
	"github.com/nutritrack/nutrition-bot/internal/middleware"
	"github.com/nutritrack/nutrition-bot/internal/nutrition"
	"github.com/nutritrack/nutrition-bot/internal/progress"
	"github.com/nutritrack/nutrition-bot/internal/repository"
	"github.com/nutritrack/nutrition-bot/internal/state"
	"github.com/nutritrack/nutrition-bot/internal/user"
	"github.com/nutritrack/nutrition-bot/pkg/config"
)

// Dependencies bundles the services the bot handlers need.
type Dependencies struct {
	Users     *user.Service
	Goals     repository.GoalRepository
	Meals     repository.MealRepository
	Progress  *progress.Service
	Estimator nutrition.Estimator
	Catalog   *i18n.Manager
}

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot            *telebot.Bot
	db                 *sql.DB
	log                *slog.Logger
	cfg                config.Config
	fsm                state.StateMachine
	rateLimitMw        *middleware.RateLimitMiddleware
	router             *Router
	dispatcher         *Dispatcher
	keyboard           *keyboard.Builder
	errHandler         *errors.Handler
	idempotencyManager idempotency.Manager
	deps               Dependencies
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	db *sql.DB,
	fsm state.StateMachine,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
	deps Dependencies,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(fsm, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:            tb,
		db:                 db,
		log:                log,
		cfg:                cfg,
		fsm:                fsm,
		rateLimitMw:        rateLimitMw,
		router:             router,
		dispatcher:         dispatcher,
		keyboard:           kb,
		errHandler:         errHandler,
		idempotencyManager: idempotencyManager,
		deps:               deps,
	}

	b.setupRouter()

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AuthMiddleware(b.deps.Users, b.log))
	b.router.Use(LastActiveMiddleware(b.deps.Users))
	b.router.Use(middleware.Metrics)

	loc := handlers.NewLocalizer(b.deps.Users, b.deps.Catalog, b.log)

	startHandler := handlers.NewStartHandler(b.deps.Users, b.fsm, b.keyboard, loc, b.log)
	helpHandler := handlers.NewHelpHandler(b.keyboard, loc)
	setGoalsHandler := handlers.NewSetGoalsHandler(b.keyboard, loc)
	addMealHandler := handlers.NewAddMealHandler(loc)
	todayHandler := handlers.NewTodayHandler(b.deps.Progress, b.keyboard, loc, b.log)
	progressHandler := handlers.NewProgressHandler(b.deps.Progress, b.keyboard, loc, b.log)
	summaryHandler := handlers.NewSummaryHandler(b.deps.Progress, b.keyboard, loc, b.log)
	settingsHandler := handlers.NewSettingsHandler(b.deps.Users, b.keyboard, loc, b.log)
	profileHandler := handlers.NewProfileHandler(b.deps.Users, b.deps.Goals, loc, b.log)
	cancelHandler := handlers.NewCancelHandler(b.fsm, b.keyboard, loc, b.log)

	b.router.RegisterCommand(CommandStart, startHandler)
	b.router.RegisterCommand(CommandHelp, helpHandler)
	b.router.RegisterCommand(CommandSetGoals, setGoalsHandler)
	b.router.RegisterCommand(CommandAddMeal, addMealHandler)
	b.router.RegisterCommand(CommandToday, todayHandler)
	b.router.RegisterCommand(CommandProgress, progressHandler)
	b.router.RegisterCommand(CommandSummary, summaryHandler)
	b.router.RegisterCommand(CommandSettings, settingsHandler)
	b.router.RegisterCommand(CommandProfile, profileHandler)
	b.router.RegisterCommand(CommandCancel, cancelHandler)

	menuRoutes := map[string]handlers.Handler{
		"set_goals": setGoalsHandler,
		"add_meal":  addMealHandler,
		"today":     todayHandler,
		"progress":  progressHandler,
		"summary":   summaryHandler,
		"settings":  settingsHandler,
	}

	b.router.RegisterCallback(ActionMenu, handlers.NewMenuCallback(menuRoutes, loc, b.log))
	b.router.RegisterCallback(ActionGoalPreset, handlers.HandleGoalPreset(b.deps.Goals, loc, b.log))
	b.router.RegisterCallback(ActionGoalCustom, handlers.HandleGoalCustom(b.fsm, b.keyboard, loc, b.log))
	b.router.RegisterCallback(ActionGoalWeight, handlers.HandleGoalWeight(b.fsm, b.keyboard, loc, b.log))
	b.router.RegisterCallback(ActionActivity, handlers.HandleActivity(b.fsm, b.deps.Estimator, b.deps.Goals, b.keyboard, loc, b.log))
	b.router.RegisterCallback(ActionTodayPage, handlers.HandleTodayPage(b.deps.Progress, b.keyboard, loc, b.log))
	b.router.RegisterCallback(ActionSettingsNotify, handlers.HandleToggleNotifications(b.deps.Users, b.keyboard, loc, b.log))
	b.router.RegisterCallback(ActionSettingsLang, handlers.HandleSetLanguage(b.deps.Users, b.keyboard, loc, b.log))
	b.router.RegisterCallback(ActionFlowCancel, handlers.HandleFlowCancel(b.fsm, b.keyboard, loc, b.log))

	b.dispatcher.RegisterStateHandler(state.StateAwaitingCustomGoals,
		handlers.NewCustomGoalsStateHandler(b.fsm, b.deps.Goals, b.keyboard, loc, b.log))
	b.dispatcher.RegisterStateHandler(state.StateAwaitingWeightInfo,
		handlers.NewWeightStateHandler(b.fsm, b.keyboard, loc, b.log))
	b.dispatcher.RegisterStateHandler(state.StateAwaitingActivityLevel,
		handlers.NewActivityNudgeHandler(b.keyboard, loc))
	b.dispatcher.RegisterStateHandler(state.StateError,
		handlers.NewErrorRecoveryHandler(b.fsm, b.keyboard, loc, b.log))

	b.router.SetDefault(handlers.NewMealHandler(b.deps.Estimator, b.deps.Meals, b.deps.Progress, loc, b.log))
	b.router.SetUnknownCallback(handlers.NewUnknownCallback(loc, b.log))
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
