// Package panel abstracts the remote VPN panels the bot provisions
// accounts on. Each platform wraps a distinct HTTP management API and
// returns an opaque subscription URL. The gateway never dedupes:
// idempotency is the caller's job.
package panel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/vpn-shop-bot/internal/domain/entity"
)

// Platform identifies a panel implementation. Closed set: adding a panel
// means adding a constant and a client here, not a new magic string.
type Platform string

const (
	PlatformXUI     Platform = "xui"
	PlatformHiddify Platform = "hiddify"
)

// ErrUnknownPlatform means a tariff references a panel this build does
// not speak. A hard failure for the caller, never a silent skip.
var ErrUnknownPlatform = fmt.Errorf("panel: unknown platform")

// Client creates one remote account per call and returns the
// subscription URL for it.
type Client interface {
	CreateAccount(ctx context.Context, server entity.Server, settings entity.ProvisionSettings) (string, error)
}

// A hung panel must not stall update handling indefinitely.
const httpTimeout = 15 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Registry dispatches by platform.
type Registry struct {
	clients map[Platform]Client
}

// NewRegistry wires the default implementations.
func NewRegistry() *Registry {
	return &Registry{clients: map[Platform]Client{
		PlatformXUI:     NewXUIClient(),
		PlatformHiddify: NewHiddifyClient(),
	}}
}

// Lookup resolves the client for a platform string coming from the
// catalog.
func (r *Registry) Lookup(platform string) (Client, error) {
	c, ok := r.clients[Platform(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return c, nil
}

// Register replaces or adds a client; tests use it to install fakes.
func (r *Registry) Register(platform Platform, c Client) {
	r.clients[platform] = c
}
