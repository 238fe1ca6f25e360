package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectAuthEvent = "agentmesh.auth"
	// SubjectAuthWildcard matches every per-agent auth subject.
	SubjectAuthWildcard = "agentmesh.auth.>"
)

// BuildAuthSubject builds a per-agent auth event subject.
func BuildAuthSubject(agent, decision string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectAuthEvent, subjectToken(agent), subjectToken(decision))
}

// subjectToken makes s safe to use as a single subject token.
func subjectToken(s string) string {
	if s == "" {
		return "unknown"
	}
	r := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")
	return r.Replace(s)
}
