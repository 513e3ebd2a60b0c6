package model

// Params are the four logical inputs of a polling session. All are optional
// and independent; validation is left to the merge policy.
type Params struct {
	EventID        string `json:"event,omitempty"`
	RoundID        string `json:"round,omitempty"`
	EagleOverride  *int   `json:"ea,omitempty"`
	BirdieOverride *int   `json:"bi,omitempty"`
}

// HasEventRound reports whether both feed identifiers are set.
func (p Params) HasEventRound() bool {
	return p.EventID != "" && p.RoundID != ""
}

// HasOverrides reports whether both override values are present.
func (p Params) HasOverrides() bool {
	return p.EagleOverride != nil && p.BirdieOverride != nil
}

// Baseline returns the overrides as a Score, absent values counting as zero.
func (p Params) Baseline() Score {
	return NewScore(deref(p.BirdieOverride), deref(p.EagleOverride))
}

// Equal compares all four inputs, including override presence.
func (p Params) Equal(o Params) bool {
	return p.EventID == o.EventID &&
		p.RoundID == o.RoundID &&
		sameInt(p.EagleOverride, o.EagleOverride) &&
		sameInt(p.BirdieOverride, o.BirdieOverride)
}

// IntPtr is a helper for building Params literals.
func IntPtr(v int) *int { return &v }

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
