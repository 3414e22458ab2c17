package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/vandi37/anonimus-bot/internal/configutil"
	"github.com/vandi37/anonimus-bot/internal/healthcheck"
	"github.com/vandi37/anonimus-bot/internal/linkstore"
	"github.com/vandi37/anonimus-bot/internal/logutil"
	"github.com/vandi37/anonimus-bot/internal/relaymetrics"
	"github.com/vandi37/anonimus-bot/internal/relayruntime"
	"github.com/vandi37/anonimus-bot/internal/statefile"
	"github.com/vandi37/anonimus-bot/internal/telegramapi"
)

const instanceLockWait = 3 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Relay user messages to the operator chat and replies back",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			operatorChatID, err := configutil.FlagOrViperChatID(cmd, "operator-chat-id", "relay.operator_chat_id")
			if err != nil {
				return err
			}
			if operatorChatID == 0 {
				return fmt.Errorf("missing relay.operator_chat_id (set via --operator-chat-id, ANONBOT_RELAY_OPERATOR_CHAT_ID or ADMIN_CHAT_ID)")
			}
			apiOpts, err := telegramOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			storeOpts, err := storeOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			runOpts := relayruntime.RunOptions{
				OperatorChatID:   operatorChatID,
				CommandReply:     viper.GetString("relay.command_reply"),
				PollTimeout:      configutil.FlagOrViperDuration(cmd, "telegram-poll-timeout", "telegram.poll_timeout"),
				EventTimeout:     configutil.FlagOrViperDuration(cmd, "event-timeout", "relay.event_timeout"),
				MaxConcurrency:   configutil.FlagOrViperInt(cmd, "max-concurrency", "relay.max_concurrency"),
				RegisterCommands: configutil.FlagOrViperBool(cmd, "register-commands", "telegram.register_commands"),
			}
			if apiOpts.HTTPClient.Timeout <= runOpts.PollTimeout {
				return fmt.Errorf("telegram.request_timeout (%s) must exceed telegram.poll_timeout (%s)", apiOpts.HTTPClient.Timeout, runOpts.PollTimeout)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			state, err := statefile.NewRuntimeStore(configutil.FlagOrViperString(cmd, "state-dir", "state.dir"))
			if err != nil {
				return err
			}
			lockCtx, cancelLock := context.WithTimeout(ctx, instanceLockWait)
			lock, err := statefile.Acquire(lockCtx, state.LockPath())
			cancelLock()
			if err != nil {
				if errors.Is(err, statefile.ErrLockTimeout) {
					return fmt.Errorf("another anonbot instance is running with state dir %s", state.Dir())
				}
				return err
			}
			defer lock.Release()

			store, err := linkstore.Open(ctx, storeOpts)
			if err != nil {
				return fmt.Errorf("open link store: %w", err)
			}
			defer store.Close()

			api, err := telegramapi.New(apiOpts)
			if err != nil {
				return err
			}
			metrics := relaymetrics.New()

			g, gctx := errgroup.WithContext(ctx)
			if listen := healthcheck.NormalizeListen(configutil.FlagOrViperString(cmd, "health-listen", "health.listen")); listen != "" {
				g.Go(func() error {
					err := healthcheck.ListenAndServe(gctx, logger, listen, healthcheck.Options{
						Component: "relay",
						Ready:     store.Ping,
						Registry:  metrics.Registry(),
					})
					if err != nil {
						return fmt.Errorf("health server on %s: %w", listen, err)
					}
					return nil
				})
			}
			g.Go(func() error {
				defer stop()
				return relayruntime.Run(gctx, relayruntime.Deps{
					API:     api,
					Store:   store,
					State:   state,
					Metrics: metrics,
					Logger:  logger,
				}, runOpts)
			})
			return g.Wait()
		},
	}

	addTelegramFlags(cmd)
	addStoreFlags(cmd)
	cmd.Flags().String("operator-chat-id", "", "Chat id that receives relayed messages and whose replies are sent back.")
	cmd.Flags().Duration("telegram-poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().Duration("event-timeout", 30*time.Second, "Time limit for handling one message.")
	cmd.Flags().Int("max-concurrency", 8, "Max number of messages handled at once.")
	cmd.Flags().Bool("register-commands", true, "Publish the /start and /help command menu at startup.")
	cmd.Flags().String("state-dir", "~/.anonbot", "Directory for the update offset and instance lock.")
	cmd.Flags().String("health-listen", "", "Serve /healthz, /readyz and /metrics on this address (empty disables).")

	return cmd
}
