package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vandi37/anonimus-bot/internal/linkstore"
	"github.com/vandi37/anonimus-bot/internal/telegramapi"
)

func newPingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the bot token and the link store work",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			out := cmd.OutOrStdout()

			apiOpts, err := telegramOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			storeOpts, err := storeOptionsFromFlags(cmd)
			if err != nil {
				return err
			}

			api, err := telegramapi.New(apiOpts)
			if err != nil {
				return err
			}
			me, err := api.GetMe(ctx)
			if err != nil {
				return fmt.Errorf("telegram: %w", err)
			}
			_, _ = fmt.Fprintf(out, "telegram: ok (@%s, id %d)\n", me.Username, me.ID)

			store, err := linkstore.Open(ctx, storeOpts)
			if err != nil {
				return fmt.Errorf("store: %w", err)
			}
			defer store.Close()
			_, _ = fmt.Fprintln(out, "store: ok")
			return nil
		},
	}
	addTelegramFlags(cmd)
	addStoreFlags(cmd)
	cmd.Flags().Duration("timeout", 10*time.Second, "Overall time limit for the checks.")
	return cmd
}
