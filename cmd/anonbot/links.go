package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vandi37/anonimus-bot/internal/linkstore"
)

type linkView struct {
	CopyID            int64  `json:"copy_id" yaml:"copy_id"`
	OriginalChatID    int64  `json:"original_chat_id" yaml:"original_chat_id"`
	OriginalThreadID  *int64 `json:"original_thread_id" yaml:"original_thread_id"`
	OriginalMessageID int64  `json:"original_message_id" yaml:"original_message_id"`
}

func newLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Inspect stored message links",
	}
	cmd.AddCommand(newLinksGetCmd())
	return cmd
}

func newLinksGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <copy-id>",
		Short: "Show where a message copy in the operator chat came from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			copyID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || copyID <= 0 {
				return fmt.Errorf("invalid copy id %q", args[0])
			}
			format, _ := cmd.Flags().GetString("output")

			storeOpts, err := storeOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			storeOpts.WriteProbe = false
			store, err := linkstore.Open(cmd.Context(), storeOpts)
			if err != nil {
				return fmt.Errorf("open link store: %w", err)
			}
			defer store.Close()

			origin, ok, err := store.Get(cmd.Context(), copyID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no link stored for copy id %d", copyID)
			}
			return writeLink(cmd.OutOrStdout(), format, copyID, origin)
		},
	}
	addStoreFlags(cmd)
	cmd.Flags().StringP("output", "o", "yaml", "Output format: yaml|json.")
	return cmd
}

func writeLink(w io.Writer, format string, copyID int64, origin linkstore.Origin) error {
	view := linkView{
		CopyID:            copyID,
		OriginalChatID:    origin.ChatID,
		OriginalThreadID:  origin.ThreadID,
		OriginalMessageID: origin.MessageID,
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}
