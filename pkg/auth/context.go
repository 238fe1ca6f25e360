// Package auth enforces the shared-secret policy on inbound agent requests.
package auth

import (
	"fmt"
	"strings"
)

// HeaderName carries the shared secret on agent-to-agent calls.
const HeaderName = "x-internal-api-key"

// Mode is the enforcement applied when the shared secret does not match.
type Mode string

const (
	// ModeSoft logs a warning and lets the request through.
	ModeSoft Mode = "soft"
	// ModeHard rejects the request.
	ModeHard Mode = "hard"
)

// ParseMode parses an enforcement mode, case-insensitively. Empty means soft.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeSoft):
		return ModeSoft, nil
	case string(ModeHard):
		return ModeHard, nil
	default:
		return "", fmt.Errorf("auth:context - unknown enforcement mode %q (want soft or hard)", s)
	}
}

// Context is the process-wide auth configuration. It is built once at startup and
// passed explicitly to whoever needs it; its fields cannot be changed afterwards.
type Context struct {
	secret string
	mode   Mode
}

// NewContext builds a Context. An empty secret disables authentication.
func NewContext(secret string, mode Mode) Context {
	if mode == "" {
		mode = ModeSoft
	}
	return Context{secret: secret, mode: mode}
}

// Enabled reports whether a shared secret is configured.
func (c Context) Enabled() bool {
	return c.secret != ""
}

// Mode returns the enforcement mode.
func (c Context) Mode() Mode {
	return c.mode
}

// String never includes the secret.
func (c Context) String() string {
	return fmt.Sprintf("auth{enabled=%t mode=%s}", c.Enabled(), c.mode)
}
