package throttle

import (
	"context"
	"strings"
	"time"
)

// Limiter counts failed login attempts per key within a sliding window.
type Limiter interface {
	// Blocked reports whether key has reached the failure limit.
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
	Name() string
}

// Key combines the login scope, client address and email into one counter key.
func Key(scope, ip, email string) string {
	return "login:" + scope + ":" + ip + ":" + strings.ToLower(email)
}

type Noop struct{}

func (Noop) Blocked(context.Context, string) (bool, error) { return false, nil }
func (Noop) Fail(context.Context, string) error            { return nil }
func (Noop) Reset(context.Context, string) error           { return nil }
func (Noop) Name() string                                  { return "disabled" }

// Settings converts config values; a non-positive limit disables throttling.
type Settings struct {
	Limit  int
	Window time.Duration
}

func (s Settings) Enabled() bool {
	return s.Limit > 0 && s.Window > 0
}
