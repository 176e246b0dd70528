package config

import (
	"crypto/sha256"
	"fmt"
	"os"

	"golang.org/x/term"
)

// PromptCipherKey interactively prompts for a passphrase on stderr
// when --cipher-key-hex was omitted and stdin is a terminal, deriving a
// fixed-length key from it via SHA-256. Returns nil, nil when stdin
// isn't a TTY — callers should fall back to running unencrypted.
func PromptCipherKey() ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil
	}

	fmt.Fprint(os.Stderr, "Session cipher key (leave blank to run unencrypted): ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading cipher key: %w", err)
	}
	if len(pass) == 0 {
		return nil, nil
	}
	sum := sha256.Sum256(pass)
	return sum[:], nil
}
