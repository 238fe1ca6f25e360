// Package proxy makes a remote agent callable as if it were local.
package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/morezero/agentmesh/pkg/registry"
	"github.com/morezero/agentmesh/pkg/semver"
)

const (
	logPrefix      = "proxy:proxy"
	defaultTimeout = 10 * time.Second
	discoveryKey   = "descriptor"
)

// Options configures a Proxy.
type Options struct {
	// Endpoint is the remote agent's base URL.
	Endpoint string
	// Secret is sent as the auth header on task calls. Empty sends no header.
	Secret string
	// VersionRange, if set, must be satisfied by the remote descriptor's version.
	VersionRange string
	// Timeout bounds every outbound call. Zero uses 10s.
	Timeout time.Duration
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Proxy is the client-side stand-in for one remote agent. It fetches the capability
// descriptor once and caches it until Reset or until the remote reports an unknown skill.
// A Proxy is safe for concurrent use.
type Proxy struct {
	endpoint     string
	secret       string
	versionRange string
	timeout      time.Duration
	client       *http.Client

	mu     sync.RWMutex
	cached *registry.CapabilityDescriptor
	group  singleflight.Group
}

// New creates a Proxy. No network call is made until first use.
func New(opts Options) (*Proxy, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("%s - endpoint is required", logPrefix)
	}
	if opts.VersionRange != "" && !semver.ValidRange(opts.VersionRange) {
		return nil, fmt.Errorf("%s - invalid version range %q", logPrefix, opts.VersionRange)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Proxy{
		endpoint:     endpoint,
		secret:       opts.Secret,
		versionRange: opts.VersionRange,
		timeout:      timeout,
		client:       client,
	}, nil
}

// Endpoint returns the remote base URL.
func (p *Proxy) Endpoint() string {
	return p.endpoint
}

// Cached returns the cached descriptor, or nil.
func (p *Proxy) Cached() *registry.CapabilityDescriptor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cached
}

// Reset drops the cached descriptor. The next call fetches it again.
func (p *Proxy) Reset() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

// EnsureCapabilities returns the cached descriptor, fetching it if needed. Concurrent
// callers on a cold cache share a single fetch. Failures are not cached and wrap
// ErrDiscoveryUnavailable.
func (p *Proxy) EnsureCapabilities(ctx context.Context) (*registry.CapabilityDescriptor, error) {
	if d := p.Cached(); d != nil {
		return d, nil
	}

	ch := p.group.DoChan(discoveryKey, func() (interface{}, error) {
		if d := p.Cached(); d != nil {
			return d, nil
		}
		// The shared fetch must outlive any single caller giving up.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		d, err := p.fetchDescriptor(fetchCtx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cached = d
		p.mu.Unlock()
		return d, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*registry.CapabilityDescriptor), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s - %w: %s: %v", logPrefix, ErrDiscoveryUnavailable, p.endpoint, ctx.Err())
	}
}

// refresh drops stale from the cache, unless another caller already replaced it, and
// fetches again.
func (p *Proxy) refresh(ctx context.Context, stale *registry.CapabilityDescriptor) (*registry.CapabilityDescriptor, error) {
	p.invalidate(stale)
	return p.EnsureCapabilities(ctx)
}

func (p *Proxy) invalidate(stale *registry.CapabilityDescriptor) {
	p.mu.Lock()
	if p.cached == stale {
		p.cached = nil
	}
	p.mu.Unlock()
	slog.Debug(fmt.Sprintf("%s - invalidated descriptor for %s", logPrefix, p.endpoint))
}
