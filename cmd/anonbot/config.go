package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vandi37/anonimus-bot/internal/configutil"
	"github.com/vandi37/anonimus-bot/internal/linkstore"
	"github.com/vandi37/anonimus-bot/internal/telegramapi"
)

func addTelegramFlags(cmd *cobra.Command) {
	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("telegram-base-url", telegramapi.DefaultBaseURL, "Telegram Bot API base URL.")
	cmd.Flags().Duration("telegram-request-timeout", 60*time.Second, "HTTP timeout for Bot API calls (must exceed the poll timeout).")
	cmd.Flags().Float64("telegram-send-rate", 25, "Max outbound messages per second (negative disables throttling).")
	cmd.Flags().Int("telegram-send-burst", 5, "Outbound burst size.")
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store-url", "", "Link store URL: redis://, rediss://, unix:// or memory://.")
	cmd.Flags().Int("store-pool-size", 10, "Link store connection pool size.")
	cmd.Flags().String("store-key-prefix", "", "Prefix for link keys (empty keeps bare message ids).")
	cmd.Flags().Duration("store-link-ttl", 0, "Expire links after this long (0 keeps them forever).")
	cmd.Flags().Duration("store-dial-timeout", 5*time.Second, "Link store dial timeout.")
	cmd.Flags().Bool("store-startup-write-probe", false, "Write and read back a probe key at startup.")
}

func telegramOptionsFromFlags(cmd *cobra.Command) (telegramapi.Options, error) {
	token := strings.TrimSpace(configutil.FlagOrViperString(cmd, "telegram-bot-token", "telegram.bot_token"))
	if token == "" {
		return telegramapi.Options{}, fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token, ANONBOT_TELEGRAM_BOT_TOKEN or TELEGRAM_BOT_TOKEN)")
	}
	timeout := configutil.FlagOrViperDuration(cmd, "telegram-request-timeout", "telegram.request_timeout")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return telegramapi.Options{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    configutil.FlagOrViperString(cmd, "telegram-base-url", "telegram.base_url"),
		Token:      token,
		SendRate:   configutil.FlagOrViperFloat64(cmd, "telegram-send-rate", "telegram.send_rate"),
		SendBurst:  configutil.FlagOrViperInt(cmd, "telegram-send-burst", "telegram.send_burst"),
	}, nil
}

func storeOptionsFromFlags(cmd *cobra.Command) (linkstore.OpenOptions, error) {
	url := strings.TrimSpace(configutil.FlagOrViperString(cmd, "store-url", "store.url"))
	if url == "" {
		return linkstore.OpenOptions{}, fmt.Errorf("missing store.url (set via --store-url, ANONBOT_STORE_URL or REDIS_URL)")
	}
	ttl := configutil.FlagOrViperDuration(cmd, "store-link-ttl", "store.link_ttl")
	if ttl < 0 {
		return linkstore.OpenOptions{}, fmt.Errorf("invalid store.link_ttl %s: must be >= 0", ttl)
	}
	return linkstore.OpenOptions{
		URL:         url,
		PoolSize:    configutil.FlagOrViperInt(cmd, "store-pool-size", "store.pool_size"),
		KeyPrefix:   configutil.FlagOrViperString(cmd, "store-key-prefix", "store.key_prefix"),
		TTL:         ttl,
		DialTimeout: configutil.FlagOrViperDuration(cmd, "store-dial-timeout", "store.dial_timeout"),
		WriteProbe:  configutil.FlagOrViperBool(cmd, "store-startup-write-probe", "store.startup_write_probe"),
	}, nil
}
