package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/morezero/agentmesh/pkg/events"
	"github.com/morezero/agentmesh/pkg/registry"
)

// Verdict is the outcome of the gate for one request.
type Verdict int

const (
	Allow Verdict = iota
	WarnAndAllow
	Reject
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case WarnAndAllow:
		return events.DecisionWarnAndAllow
	case Reject:
		return events.DecisionReject
	default:
		return "unknown"
	}
}

// Decision is a verdict and, for WarnAndAllow and Reject, why the check failed.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// Decide applies the policy to a request path and the presented header value.
// Discovery paths are always allowed; with no secret configured everything is allowed.
func Decide(ac Context, path, presented string) Decision {
	if IsDiscoveryPath(path) {
		return Decision{Verdict: Allow}
	}
	if !ac.Enabled() {
		return Decision{Verdict: Allow}
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(ac.secret)) == 1 {
		return Decision{Verdict: Allow}
	}

	reason := events.ReasonInvalidKey
	if presented == "" {
		reason = events.ReasonMissingKey
	}
	if ac.mode == ModeHard {
		return Decision{Verdict: Reject, Reason: reason}
	}
	return Decision{Verdict: WarnAndAllow, Reason: reason}
}

// IsDiscoveryPath reports whether path is under the unauthenticated discovery prefix.
func IsDiscoveryPath(path string) bool {
	return path == registry.DiscoveryPrefix || strings.HasPrefix(path, registry.DiscoveryPrefix+"/")
}
