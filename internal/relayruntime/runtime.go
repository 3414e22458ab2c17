package relayruntime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vandi37/anonimus-bot/internal/linkstore"
	"github.com/vandi37/anonimus-bot/internal/relay"
	"github.com/vandi37/anonimus-bot/internal/relaymetrics"
	"github.com/vandi37/anonimus-bot/internal/relayruntime/worker"
	"github.com/vandi37/anonimus-bot/internal/retryutil"
	"github.com/vandi37/anonimus-bot/internal/statefile"
	"github.com/vandi37/anonimus-bot/internal/telegramapi"
)

var botCommands = []telegramapi.BotCommand{
	{Command: relay.CommandStart, Description: "How this bot works"},
	{Command: relay.CommandHelp, Description: "How this bot works"},
}

type Deps struct {
	API   API
	Store linkstore.Store
	// State persists the update offset across restarts. Optional.
	State   *statefile.RuntimeStore
	Metrics *relaymetrics.Metrics
	Logger  *slog.Logger
}

type event struct {
	ID       string
	UpdateID int64
	Message  relay.Message
}

// Run long-polls Telegram and relays messages until ctx is canceled.
func Run(ctx context.Context, d Deps, opts RunOptions) error {
	opts = normalizeRunOptions(opts)
	if d.API == nil {
		return fmt.Errorf("telegram api is required")
	}
	if d.Store == nil {
		return fmt.Errorf("link store is required")
	}
	if opts.OperatorChatID == 0 {
		return fmt.Errorf("operator chat id is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := relaymetrics.InstrumentStore(d.Store, d.Metrics)

	me, err := waitForBot(ctx, d.API, logger)
	if err != nil {
		return err
	}
	if me == nil {
		logger.Info("relay_stop", "reason", "context_canceled")
		return nil
	}
	logger.Info("relay_start",
		"bot_id", me.ID,
		"bot_username", me.Username,
		"operator_chat_id", opts.OperatorChatID,
		"max_concurrency", opts.MaxConcurrency,
	)

	r, err := relay.New(relay.Options{
		Store:          store,
		Transport:      NewTransport(d.API),
		OperatorChatID: opts.OperatorChatID,
		BotUsername:    me.Username,
		CommandReply:   opts.CommandReply,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	router := relay.NewRouter(r)

	if opts.RegisterCommands {
		registerCommands(ctx, d.API, logger)
	}

	offset := loadOffset(d.State, me.ID, logger)
	d.Metrics.SetOffset(offset)

	pool := worker.NewPool(opts.MaxConcurrency, func(ctx context.Context, ev event) {
		handleEvent(ctx, router, d.Metrics, logger, opts.EventTimeout, ev)
	})
	defer pool.Wait()

	for {
		updates, nextOffset, err := d.API.GetUpdates(ctx, offset, opts.PollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("relay_stop", "reason", "context_canceled")
				return nil
			}
			if telegramapi.IsPollTimeoutError(err) {
				logger.Debug("telegram_get_updates_timeout", "error", err.Error())
			} else {
				d.Metrics.PollFailed()
				logger.Warn("telegram_get_updates_error", "error", err.Error())
			}
			if !sleepCtx(ctx, time.Second) {
				logger.Info("relay_stop", "reason", "context_canceled")
				return nil
			}
			continue
		}
		offsetChanged := nextOffset != offset
		offset = nextOffset

		for _, u := range updates {
			if u.Message == nil || u.Message.Chat == nil {
				logger.Info("relay_update_unhandled", "update_id", u.UpdateID, "kind", u.Kind())
				continue
			}
			ev := event{
				ID:       newEventID(),
				UpdateID: u.UpdateID,
				Message:  messageFromTelegram(u.Message),
			}
			if err := pool.Submit(ctx, ev); err != nil {
				logger.Info("relay_stop", "reason", "context_canceled", "dropped_update_id", u.UpdateID)
				return nil
			}
		}

		if offsetChanged {
			d.Metrics.SetOffset(offset)
			if d.State != nil {
				if err := d.State.Save(statefile.RuntimeState{UpdateOffset: offset, BotID: me.ID}); err != nil {
					logger.Warn("relay_state_persist_error", "error", err.Error())
				}
			}
		}
	}
}

func handleEvent(ctx context.Context, router *relay.Router, m *relaymetrics.Metrics, logger *slog.Logger, timeout time.Duration, ev event) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	m.EventStarted()
	defer m.EventDone()

	start := time.Now()
	kind, err := router.Route(ctx, ev.Message)
	m.ObserveEvent(kind, err, time.Since(start))
	if err != nil {
		attrs := []any{
			"event_id", ev.ID,
			"update_id", ev.UpdateID,
			"kind", string(kind),
			"result", relaymetrics.Result(err),
			"chat_id", ev.Message.ChatID,
			"message_id", ev.Message.MessageID,
			"error", err.Error(),
		}
		switch {
		case telegramapi.IsForbidden(err):
			// The recipient blocked the bot or removed it from the chat.
			logger.Info("relay_recipient_unreachable", attrs...)
		case telegramapi.IsMessageNotFound(err):
			logger.Info("relay_message_gone", attrs...)
		default:
			logger.Warn("relay_event_error", attrs...)
		}
		return
	}
	logger.Debug("relay_event_done",
		"event_id", ev.ID,
		"update_id", ev.UpdateID,
		"kind", string(kind),
		"elapsed", time.Since(start).String(),
	)
}

// waitForBot retries getMe until it succeeds. It returns nil, nil when ctx
// is canceled first.
func waitForBot(ctx context.Context, api API, logger *slog.Logger) (*telegramapi.User, error) {
	for {
		me, err := api.GetMe(ctx)
		if err == nil {
			return me, nil
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil, nil
		}
		if isBadToken(err) {
			return nil, fmt.Errorf("telegram rejected the bot token: %w", err)
		}
		logger.Warn("telegram_get_me_error", "error", err.Error())
		if !sleepCtx(ctx, 2*time.Second) {
			return nil, nil
		}
	}
}

// isBadToken reports errors that retrying cannot fix. Telegram answers 401
// for a revoked token and 404 for one that is malformed.
func isBadToken(err error) bool {
	var reqErr *telegramapi.RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode == http.StatusUnauthorized || reqErr.StatusCode == http.StatusNotFound
}

func registerCommands(ctx context.Context, api API, logger *slog.Logger) {
	set := func(ctx context.Context) error {
		return api.SetMyCommands(ctx, botCommands)
	}
	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := set(callCtx); err != nil {
		logger.Warn("telegram_set_commands_error", "error", err.Error())
		retryutil.AsyncRetry(ctx, logger, "telegram_set_commands", 0, 0, set)
		return
	}
	logger.Debug("telegram_set_commands_ok", "count", len(botCommands))
}

func loadOffset(state *statefile.RuntimeStore, botID int64, logger *slog.Logger) int64 {
	if state == nil {
		return 0
	}
	snapshot, ok, err := state.Load()
	if err != nil {
		logger.Warn("relay_state_load_error", "error", err.Error())
		return 0
	}
	if !ok {
		return 0
	}
	if snapshot.BotID != 0 && snapshot.BotID != botID {
		logger.Warn("relay_state_bot_changed", "saved_bot_id", snapshot.BotID, "bot_id", botID)
		return 0
	}
	logger.Info("relay_state_loaded", "offset", snapshot.UpdateOffset)
	return snapshot.UpdateOffset
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
