// Package events defines auth observability events and their publishers.
package events

// Decision values carried by AuthEvent.
const (
	DecisionWarnAndAllow = "warn_and_allow"
	DecisionReject       = "reject"
)

// Reasons for an auth failure.
const (
	ReasonMissingKey = "missing_key"
	ReasonInvalidKey = "invalid_key"
)

// AuthEvent is emitted once for every request that fails the shared-secret check.
// It never carries the expected or presented key.
type AuthEvent struct {
	Agent      string `json:"agent"`
	Decision   string `json:"decision"`
	Reason     string `json:"reason"`
	Mode       string `json:"mode"`
	Method     string `json:"method,omitempty"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remoteAddr,omitempty"`
	Timestamp  string `json:"timestamp"`
}
