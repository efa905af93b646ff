// Package secrets resolves the bot credential.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"numrelay/internal/config"
)

const (
	KeyringService = "numrelay"
	KeyringAccount = "bot_token"
)

var ErrNoToken = errors.New("bot token not found")

// BotToken returns the token for cfg.TokenSource: the configured value for
// "env", the OS keyring entry for "keyring".
func BotToken(cfg *config.RelayConfig) (string, error) {
	switch cfg.TokenSource {
	case "", "env":
		if cfg.Token == "" {
			return "", ErrNoToken
		}
		return cfg.Token, nil
	case "keyring":
		tok, err := keyring.Get(KeyringService, KeyringAccount)
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w in keyring (%s/%s)", ErrNoToken, KeyringService, KeyringAccount)
		}
		if err != nil {
			return "", fmt.Errorf("keyring: %w", err)
		}
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return "", ErrNoToken
		}
		return tok, nil
	default:
		return "", fmt.Errorf("unknown token source %q", cfg.TokenSource)
	}
}

// StoreBotToken saves tok in the OS keyring for later "keyring" lookups.
func StoreBotToken(tok string) error {
	return keyring.Set(KeyringService, KeyringAccount, strings.TrimSpace(tok))
}
