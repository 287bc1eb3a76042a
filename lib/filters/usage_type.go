package filters

type UsageType int

const (
	DontCare UsageType = iota
	Include
	Exclude // Exclude has preference over Include
)

// DecideFor resolves DontCare using the kind of patterns configured: when
// there are include patterns, anything not included is left out.
func (u UsageType) DecideFor(usage UsageType) bool {
	switch {
	case u == Include:
		return true
	case u == Exclude:
		return false
	case usage == Include:
		return false
	default:
		return true
	}
}
