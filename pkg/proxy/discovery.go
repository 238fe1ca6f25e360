package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/morezero/agentmesh/pkg/registry"
	"github.com/morezero/agentmesh/pkg/semver"
)

const discoveryLogPrefix = "proxy:discovery"

// maxDescriptorBytes caps the descriptor body read from a remote agent.
const maxDescriptorBytes = 1 << 20

func (p *Proxy) fetchDescriptor(ctx context.Context) (*registry.CapabilityDescriptor, error) {
	url := p.endpoint + registry.CardPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, p.discoveryErr("build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.discoveryErr("GET "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.discoveryErr("GET "+url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var d registry.CapabilityDescriptor
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDescriptorBytes)).Decode(&d); err != nil {
		return nil, p.discoveryErr("decode descriptor", err)
	}
	if err := d.Validate(); err != nil {
		return nil, p.discoveryErr("validate descriptor", err)
	}
	if p.versionRange != "" && !semver.SatisfiesRange(d.Version, p.versionRange) {
		return nil, p.discoveryErr("version check",
			fmt.Errorf("%s version %q does not satisfy %q", d.Name, d.Version, p.versionRange))
	}

	slog.Info(fmt.Sprintf("%s - discovered %s@%s at %s with %d skills",
		discoveryLogPrefix, d.Name, d.Version, p.endpoint, len(d.Skills)))
	return &d, nil
}

func (p *Proxy) discoveryErr(step string, err error) error {
	slog.Warn(fmt.Sprintf("%s - discovery failed for %s: %s: %v", discoveryLogPrefix, p.endpoint, step, err))
	return fmt.Errorf("%s - %w: %s: %s: %v", discoveryLogPrefix, ErrDiscoveryUnavailable, p.endpoint, step, err)
}
