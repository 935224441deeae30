package quota

import "encoding/json"

// Dimension identifies one axis of a tenant's quota status.
type Dimension string

const (
	DimensionTime Dimension = "time"
	DimensionData Dimension = "data"
)

// State is the value of one status dimension.
type State string

const (
	StateActive    State = "active"
	StateExpired   State = "expired"
	StateExhausted State = "exhausted"
	StateDisabled  State = "disabled"
)

// Status tracks a tenant's standing on the three quota axes. It is
// persisted as a single JSON document and must always be written back
// as one unit, never field by field. The users axis is owned by the
// control surface: reconciliation reads it for enforcement and carries
// it through writes untouched.
type Status struct {
	Time  State `json:"time"`
	Data  State `json:"data"`
	Users State `json:"users"`
}

// UsersBlocked reports whether the control surface has flagged the
// tenant for a hard block. Any value other than active counts.
func (s Status) UsersBlocked() bool {
	return s.Users != StateActive
}

// DefaultStatus is the standing assumed for a tenant with no recorded
// status, and the fallback when the stored document cannot be parsed.
func DefaultStatus() Status {
	return Status{Time: StateActive, Data: StateActive, Users: StateActive}
}

// ParseStatus decodes a stored status document. Malformed or empty input
// yields the default all-active status rather than an error; a corrupt
// blob must not wedge the tenant.
func ParseStatus(raw []byte) Status {
	if len(raw) == 0 {
		return DefaultStatus()
	}
	var s Status
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultStatus()
	}
	if s.Time == "" {
		s.Time = StateActive
	}
	if s.Data == "" {
		s.Data = StateActive
	}
	if s.Users == "" {
		s.Users = StateActive
	}
	return s
}

// Marshal encodes the status for storage.
func (s Status) Marshal() []byte {
	out, _ := json.Marshal(s)
	return out
}

// Transition records a single dimension changing state during
// reconciliation. Each transition triggers exactly one notification.
type Transition struct {
	Dimension Dimension
	From      State
	To        State
}

// ApplyTime moves the time dimension toward the observed condition and
// returns the transition if the state actually changed.
func (s *Status) ApplyTime(expired bool) *Transition {
	return s.apply(DimensionTime, &s.Time, expired, StateExpired)
}

// ApplyData moves the data dimension toward the observed condition and
// returns the transition if the state actually changed.
func (s *Status) ApplyData(exhausted bool) *Transition {
	return s.apply(DimensionData, &s.Data, exhausted, StateExhausted)
}

func (s *Status) apply(dim Dimension, field *State, breached bool, breachedState State) *Transition {
	target := StateActive
	if breached {
		target = breachedState
	}
	if *field == target {
		return nil
	}
	tr := &Transition{Dimension: dim, From: *field, To: target}
	*field = target
	return tr
}
