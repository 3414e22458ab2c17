package relay

import "strings"

const (
	CommandHelp  = "help"
	CommandStart = "start"
)

// ParseCommand returns the command name of a "/help" or "/start" message.
// A command suffixed with another bot's username is not ours.
func ParseCommand(text string, botUsername string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	word := text
	if i := strings.IndexAny(word, " \t\n"); i >= 0 {
		word = word[:i]
	}
	word = strings.TrimPrefix(word, "/")
	name, mention, hasMention := strings.Cut(word, "@")
	if hasMention {
		botUsername = strings.TrimPrefix(strings.TrimSpace(botUsername), "@")
		if botUsername == "" || !strings.EqualFold(mention, botUsername) {
			return "", false
		}
	}
	name = strings.ToLower(name)
	switch name {
	case CommandHelp, CommandStart:
		return name, true
	default:
		return "", false
	}
}
