package monitor

// DefaultTimeoutMinutes applies to guilds without an inactivity policy row.
const DefaultTimeoutMinutes = 15

// ResolveTimeout returns the timeout for a guild's policy, or the default
// when no policy exists. A stored value is honored verbatim: the [5,120]
// bound is enforced by the operator command that writes it, not here.
func ResolveTimeout(policy *InactivityPolicy) int {
	if policy == nil {
		return DefaultTimeoutMinutes
	}
	return policy.TimeoutMinutes
}
