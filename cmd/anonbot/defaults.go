package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/vandi37/anonimus-bot/internal/relay"
	"github.com/vandi37/anonimus-bot/internal/telegramapi"
)

// envAliases are the variable names the first release of the bot read.
var envAliases = map[string][]string{
	"telegram.bot_token":     {"TELEGRAM_BOT_TOKEN"},
	"store.url":              {"REDIS_URL"},
	"relay.operator_chat_id": {"ADMIN_CHAT_ID"},
}

func initViperDefaults() {
	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.base_url", telegramapi.DefaultBaseURL)
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.request_timeout", 60*time.Second)
	viper.SetDefault("telegram.send_rate", 25.0)
	viper.SetDefault("telegram.send_burst", 5)
	viper.SetDefault("telegram.register_commands", true)

	// Link store
	viper.SetDefault("store.url", "")
	viper.SetDefault("store.pool_size", 10)
	viper.SetDefault("store.key_prefix", "")
	viper.SetDefault("store.link_ttl", time.Duration(0))
	viper.SetDefault("store.dial_timeout", 5*time.Second)
	viper.SetDefault("store.startup_write_probe", false)

	// Relay
	viper.SetDefault("relay.max_concurrency", 8)
	viper.SetDefault("relay.event_timeout", 30*time.Second)
	viper.SetDefault("relay.command_reply", relay.DefaultCommandReply)

	// Global
	viper.SetDefault("state.dir", "~/.anonbot")
	viper.SetDefault("health.listen", "")
	viper.SetDefault("logging.redact_keys", []string{"bot_token", "token", "store_url"})
}
