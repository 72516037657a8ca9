package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeLedger struct {
	mu       sync.Mutex
	channels map[string]*MonitoredChannel
	policies map[string]*InactivityPolicy
	listErr  error
	touchErr error
	resetErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		channels: make(map[string]*MonitoredChannel),
		policies: make(map[string]*InactivityPolicy),
	}
}

func (l *fakeLedger) add(id, guildID, channelID string, lastActive time.Time) {
	l.channels[id] = &MonitoredChannel{ID: id, GuildID: guildID, ChannelID: channelID, Active: true, LastActive: lastActive}
}

func (l *fakeLedger) ListActiveChannels(ctx context.Context) ([]MonitoredChannel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listErr != nil {
		return nil, l.listErr
	}
	var out []MonitoredChannel
	for _, ch := range l.channels {
		if ch.Active {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (l *fakeLedger) GetPolicy(ctx context.Context, guildID string) (*InactivityPolicy, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.policies[guildID], nil
}

func (l *fakeLedger) TouchActivity(ctx context.Context, guildID, channelID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.touchErr != nil {
		return l.touchErr
	}
	for _, ch := range l.channels {
		if ch.Active && ch.GuildID == guildID && ch.ChannelID == channelID {
			ch.LastActive = time.Now()
		}
	}
	return nil
}

func (l *fakeLedger) touchAt(guildID, channelID string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.channels {
		if ch.Active && ch.GuildID == guildID && ch.ChannelID == channelID {
			ch.LastActive = at
		}
	}
}

func (l *fakeLedger) RecordNotificationSent(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resetErr != nil {
		return l.resetErr
	}
	ch, ok := l.channels[id]
	if !ok {
		return nil
	}
	ch.LastActive = time.Now()
	return nil
}

func (l *fakeLedger) lastActive(id string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.channels[id].LastActive
}

type fakeGateway struct {
	mu            sync.Mutex
	missingGuilds map[string]bool
	missingChans  map[string]bool
	sendErr       error
	sent          []string
	prompts       []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		missingGuilds: make(map[string]bool),
		missingChans:  make(map[string]bool),
	}
}

func (g *fakeGateway) ResolveGuild(guildID string) bool {
	return !g.missingGuilds[guildID]
}

func (g *fakeGateway) ResolveChannel(guildID, channelID string) bool {
	return !g.missingChans[channelID]
}

func (g *fakeGateway) SendPrompt(channelID, prompt string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, channelID)
	g.prompts = append(g.prompts, prompt)
	return nil
}

func (g *fakeGateway) sentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func newTestEvaluator(ledger Ledger, gateway Gateway) *Evaluator {
	e := NewEvaluator(ledger, gateway, zap.NewNop())
	return e
}

// Ticks evaluated strictly inside the timeout window never send anything,
// and a fresh message pushes the window forward.
func TestDebounce(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now()
	ledger.add("m1", "g1", "c1", t0)
	ledger.policies["g1"] = &InactivityPolicy{GuildID: "g1", TimeoutMinutes: 15}

	// Messages every 10 minutes, ticks every minute in between.
	for minute := 1; minute <= 40; minute++ {
		if minute%10 == 0 {
			ledger.touchAt("g1", "c1", t0.Add(time.Duration(minute)*time.Minute))
		}
		eval.now = func() time.Time { return t0.Add(time.Duration(minute) * time.Minute) }
		eval.EvaluateOnce(context.Background())
	}

	if gateway.sentCount() != 0 {
		t.Fatalf("expected no prompts, got %d", gateway.sentCount())
	}
}

func TestTriggerAtTimeout(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now()
	ledger.add("m1", "g1", "c1", t0)
	ledger.policies["g1"] = &InactivityPolicy{GuildID: "g1", TimeoutMinutes: 15}

	for _, offset := range []int{5, 10, 14} {
		eval.now = func() time.Time { return t0.Add(time.Duration(offset) * time.Minute) }
		eval.EvaluateOnce(context.Background())
	}
	if gateway.sentCount() != 0 {
		t.Fatalf("expected no prompts before timeout, got %d", gateway.sentCount())
	}

	eval.now = func() time.Time { return t0.Add(15 * time.Minute) }
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 1 {
		t.Fatalf("expected exactly one prompt at timeout, got %d", gateway.sentCount())
	}
	if ledger.lastActive("m1").Equal(t0) {
		t.Fatalf("expected last_active reset after notification")
	}
}

// The reset performed after a notification must stop the very next tick from
// re-firing.
func TestIdempotentReset(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now().Add(-15 * time.Minute)
	ledger.add("m1", "g1", "c1", t0)

	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 1 {
		t.Fatalf("expected one prompt, got %d", gateway.sentCount())
	}

	eval.now = func() time.Time { return time.Now().Add(time.Minute) }
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 1 {
		t.Fatalf("expected no re-fire one minute after reset, got %d", gateway.sentCount())
	}
}

func TestChannelIsolation(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now()
	ledger.add("m1", "g1", "c1", t0)
	ledger.add("m2", "g1", "c2", t0)

	before := ledger.lastActive("m2")
	ledger.touchAt("g1", "c1", t0.Add(5*time.Minute))
	if !ledger.lastActive("m2").Equal(before) {
		t.Fatalf("activity on c1 must not move c2's clock")
	}

	// c2 stays quiet and fires; c1 was touched and does not.
	eval.now = func() time.Time { return t0.Add(16 * time.Minute) }
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 1 {
		t.Fatalf("expected one prompt, got %d", gateway.sentCount())
	}
	if gateway.sent[0] != "c2" {
		t.Fatalf("expected prompt in c2, got %s", gateway.sent[0])
	}
}

// A guild with no policy row behaves exactly like timeout_minutes = 15.
func TestDefaultPolicy(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now()
	ledger.add("m1", "g1", "c1", t0)

	eval.now = func() time.Time { return t0.Add(14 * time.Minute) }
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 0 {
		t.Fatalf("expected no prompt at 14m under default policy")
	}

	eval.now = func() time.Time { return t0.Add(15 * time.Minute) }
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 1 {
		t.Fatalf("expected prompt at 15m under default policy, got %d", gateway.sentCount())
	}
}

// One message at T0+10 pushes the trigger from T0+15 to T0+25.
func TestActivityPushesTrigger(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now()
	ledger.add("m1", "g1", "c1", t0)
	ledger.policies["g1"] = &InactivityPolicy{GuildID: "g1", TimeoutMinutes: 15}

	ledger.touchAt("g1", "c1", t0.Add(10*time.Minute))

	eval.now = func() time.Time { return t0.Add(15 * time.Minute) }
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 0 {
		t.Fatalf("expected no prompt at T0+15 after activity at T0+10")
	}

	eval.now = func() time.Time { return t0.Add(25 * time.Minute) }
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 1 {
		t.Fatalf("expected one prompt at T0+25, got %d", gateway.sentCount())
	}
}

// A guild or channel that no longer resolves is skipped without touching the
// ledger, and other rows still get their prompts.
func TestVanishedTargetSkipped(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now().Add(-20 * time.Minute)
	ledger.add("m1", "g1", "c1", t0)
	ledger.add("m2", "g2", "c2", t0)
	ledger.add("m3", "g3", "c3", t0)
	gateway.missingGuilds["g1"] = true
	gateway.missingChans["c2"] = true

	eval.EvaluateOnce(context.Background())

	if gateway.sentCount() != 1 {
		t.Fatalf("expected one prompt for the surviving row, got %d", gateway.sentCount())
	}
	if gateway.sent[0] != "c3" {
		t.Fatalf("expected prompt in c3, got %s", gateway.sent[0])
	}
	if !ledger.lastActive("m1").Equal(t0) {
		t.Fatalf("skipped row must keep its last_active")
	}
}

// A delivery failure abandons the row for this tick; the next tick retries.
func TestDeliveryFailureRetriesNextTick(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	t0 := time.Now().Add(-20 * time.Minute)
	ledger.add("m1", "g1", "c1", t0)

	gateway.sendErr = errors.New("gateway down")
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 0 {
		t.Fatalf("expected no recorded send on failure")
	}
	if !ledger.lastActive("m1").Equal(t0) {
		t.Fatalf("failed delivery must not reset last_active")
	}

	gateway.sendErr = nil
	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 1 {
		t.Fatalf("expected retry on next tick, got %d sends", gateway.sentCount())
	}
}

func TestListFailureEndsTick(t *testing.T) {
	ledger := newFakeLedger()
	gateway := newFakeGateway()
	eval := newTestEvaluator(ledger, gateway)

	ledger.add("m1", "g1", "c1", time.Now().Add(-time.Hour))
	ledger.listErr = errors.New("store unavailable")

	eval.EvaluateOnce(context.Background())
	if gateway.sentCount() != 0 {
		t.Fatalf("expected no sends when the snapshot fails")
	}
}

func TestRecorderSwallowsFailures(t *testing.T) {
	ledger := newFakeLedger()
	ledger.touchErr = errors.New("store unavailable")
	recorder := NewRecorder(ledger, zap.NewNop())

	// Must not panic or propagate.
	recorder.Record(context.Background(), "g1", "c1")
}

func TestRecorderUnmonitoredChannelNoop(t *testing.T) {
	ledger := newFakeLedger()
	recorder := NewRecorder(ledger, zap.NewNop())

	recorder.Record(context.Background(), "g1", "unwatched")
}

func TestPromptSelectionCoversAll(t *testing.T) {
	prompts := []string{"a", "b", "c"}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		seen[pickPrompt(prompts)] = true
	}
	for _, p := range prompts {
		if !seen[p] {
			t.Fatalf("prompt %q never selected", p)
		}
	}
}

func TestPromptSelectionEmptySet(t *testing.T) {
	if got := pickPrompt(nil); got != "" {
		t.Fatalf("expected empty prompt, got %q", got)
	}
}
