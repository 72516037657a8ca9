package monitor

import "testing"

func TestResolveTimeout(t *testing.T) {
	if got := ResolveTimeout(nil); got != DefaultTimeoutMinutes {
		t.Fatalf("expected default %d, got %d", DefaultTimeoutMinutes, got)
	}
	if got := ResolveTimeout(&InactivityPolicy{GuildID: "g1", TimeoutMinutes: 30}); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	// Out-of-range values are honored verbatim; validation happens at write time.
	if got := ResolveTimeout(&InactivityPolicy{GuildID: "g1", TimeoutMinutes: 3}); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}
