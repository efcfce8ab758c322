package main

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recConn records every envelope the game sends to one connection
type recConn struct {
	mu     sync.Mutex
	msgs   []Envelope
	closed bool
}

func (c *recConn) Send(env Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, env)
}

func (c *recConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recConn) Events(t string) []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Envelope
	for _, m := range c.msgs {
		if m.T == t {
			out = append(out, m)
		}
	}
	return out
}

func (c *recConn) Count(t string) int { return len(c.Events(t)) }

func (c *recConn) Last(t string) (Envelope, bool) {
	evs := c.Events(t)
	if len(evs) == 0 {
		return Envelope{}, false
	}
	return evs[len(evs)-1], true
}

func (c *recConn) Types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.T
	}
	return out
}

func (c *recConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

// fakeTicker never fires on its own; tests call the handlers directly
type fakeTicker struct {
	d       time.Duration
	ch      chan time.Time
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped = true }

// recRecorder captures what the game reports for persistence
type recRecorder struct {
	events []string
	rounds []RoundSummary
}

func (r *recRecorder) Track(evtType, _ string, _ map[string]interface{}) {
	r.events = append(r.events, evtType)
}

func (r *recRecorder) RecordRound(s RoundSummary) { r.rounds = append(r.rounds, s) }

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	g       *Game
	now     time.Time
	tickers []*fakeTicker
	rec     *recRecorder
}

// newHarness builds a Game whose handlers are driven directly from the test
// goroutine, with a fixed clock, seeded rng and fake tickers
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{now: testEpoch, rec: &recRecorder{}}
	h.g = NewGame(
		WithClock(func() time.Time { return h.now }),
		WithRand(rand.New(rand.NewSource(42))),
		WithTickers(func(d time.Duration) Ticker {
			ft := &fakeTicker{d: d, ch: make(chan time.Time, 1)}
			h.tickers = append(h.tickers, ft)
			return ft
		}),
		WithRecorder(h.rec),
	)
	return h
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

func (h *harness) connect(t *testing.T) (string, *recConn) {
	t.Helper()
	c := &recConn{}
	id, err := h.g.connect(c)
	require.NoError(t, err)
	return id, c
}

func (h *harness) join(t *testing.T, name string) (string, *recConn) {
	t.Helper()
	id, c := h.connect(t)
	require.NoError(t, h.g.requestJoin(id, name))
	return id, c
}

// hordeTicker returns the most recently created horde ticker
func (h *harness) hordeTicker(t *testing.T) *fakeTicker {
	t.Helper()
	for i := len(h.tickers) - 1; i >= 0; i-- {
		if h.tickers[i].d == HordeInterval {
			return h.tickers[i]
		}
	}
	t.Fatal("no horde ticker created")
	return nil
}

func (h *harness) player(t *testing.T, id string) *Player {
	t.Helper()
	p := h.g.players.Get(id)
	require.NotNil(t, p, "player %s", id)
	return p
}
