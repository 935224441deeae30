package quota

import "marzhelp/internal/shared/utils/setutil"

// PolicyKind identifies one family of enforcement rules installed in
// the panel database.
type PolicyKind string

const (
	// PolicyHardBlock refuses user creation and updates outright for
	// tenants the control surface has flagged as disabled. Membership
	// is projected from the stored users flag, never computed here.
	PolicyHardBlock PolicyKind = "hard_block"
	// PolicyTrafficOverage caps the per-user data limit a created-mode
	// tenant can allocate once their allocation budget is spent.
	PolicyTrafficOverage PolicyKind = "traffic_overage"
	// PolicyUserOverage refuses new users for tenants at their user
	// limit. Membership is additive across rebuilds; tenants leave the
	// set only when their limit clears.
	PolicyUserOverage PolicyKind = "user_overage"
)

// PolicyRule is the desired state of one rule family for the current
// pass. An empty rule means the family should be absent.
type PolicyRule struct {
	Kind    PolicyKind
	Members *setutil.UintSet
	// Caps holds the per-tenant byte budget for PolicyTrafficOverage;
	// nil for the other kinds.
	Caps map[uint]int64
}

// NewHardBlockRule builds the hard block rule for the given tenants.
func NewHardBlockRule(members *setutil.UintSet) PolicyRule {
	return PolicyRule{Kind: PolicyHardBlock, Members: members}
}

// NewTrafficOverageRule builds the allocation cap rule. Membership is
// derived from the cap table keys.
func NewTrafficOverageRule(caps map[uint]int64) PolicyRule {
	members := setutil.NewUintSet()
	for id := range caps {
		members.Add(id)
	}
	return PolicyRule{Kind: PolicyTrafficOverage, Members: members, Caps: caps}
}

// NewUserOverageRule builds the user limit rule for the given tenants.
func NewUserOverageRule(members *setutil.UintSet) PolicyRule {
	return PolicyRule{Kind: PolicyUserOverage, Members: members}
}

// Empty reports whether the rule has no members.
func (r PolicyRule) Empty() bool {
	return r.Members == nil || r.Members.Len() == 0
}
