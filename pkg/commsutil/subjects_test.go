package commsutil

import "testing"

func TestBuildAuthSubject(t *testing.T) {
	tests := []struct {
		name     string
		agent    string
		decision string
		want     string
	}{
		{"basic", "inventory_agent", "reject", "agentmesh.auth.inventory_agent.reject"},
		{"warn", "payment_agent", "warn_and_allow", "agentmesh.auth.payment_agent.warn_and_allow"},
		{"dots replaced", "shipping.agent", "reject", "agentmesh.auth.shipping_agent.reject"},
		{"wildcards replaced", "a*b>", "reject", "agentmesh.auth.a_b_.reject"},
		{"empty agent", "", "reject", "agentmesh.auth.unknown.reject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildAuthSubject(tt.agent, tt.decision)
			if got != tt.want {
				t.Errorf("BuildAuthSubject(%q, %q) = %q, want %q", tt.agent, tt.decision, got, tt.want)
			}
		})
	}
}
