package quota

import (
	"testing"

	"marzhelp/internal/shared/utils/setutil"
)

func TestNewTrafficOverageRule(t *testing.T) {
	caps := map[uint]int64{3: 1073741824, 7: 0}
	rule := NewTrafficOverageRule(caps)

	if rule.Kind != PolicyTrafficOverage {
		t.Errorf("Kind = %q, want %q", rule.Kind, PolicyTrafficOverage)
	}
	if !rule.Members.Equal(setutil.NewUintSet(3, 7)) {
		t.Errorf("Members = %v, want [3 7]", rule.Members.Sorted())
	}
	if rule.Empty() {
		t.Error("Empty() = true for populated rule")
	}
}

func TestPolicyRuleEmpty(t *testing.T) {
	tests := []struct {
		name string
		rule PolicyRule
		want bool
	}{
		{"nil members", NewHardBlockRule(nil), true},
		{"zero members", NewUserOverageRule(setutil.NewUintSet()), true},
		{"one member", NewHardBlockRule(setutil.NewUintSet(1)), false},
		{"empty cap table", NewTrafficOverageRule(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
