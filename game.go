package main

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	TickRate     = 20 // zombie simulation ticks per second
	TickDuration = time.Second / TickRate
	inboxSize    = 1024
)

// SessionPhase is the lobby/game state of the process-wide session
type SessionPhase int

const (
	PhaseLobby SessionPhase = iota
	PhaseActive
	PhaseEnding // victory teardown in progress
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseEnding:
		return "ending"
	default:
		return "lobby"
	}
}

// Ticker is the part of time.Ticker the game uses, so tests can drive time
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d
type TickerFunc func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker is the production TickerFunc
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Game owns all shared state: players, zombies, session phase and both
// timers. Every mutation runs on the Run goroutine; other goroutines only
// submit closures to the inbox.
type Game struct {
	inbox    chan func()
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	players *Registry
	zombies *ZombieSet
	gw      *Gateway

	phase      SessionPhase
	hostID     string
	difficulty Difficulty
	horde      hordeState
	roundStart time.Time

	now       func() time.Time
	rng       *rand.Rand
	newTicker TickerFunc
	rec       Recorder
}

// GameOption customises a Game, mostly for tests
type GameOption func(*Game)

// WithClock replaces time.Now
func WithClock(now func() time.Time) GameOption {
	return func(g *Game) { g.now = now }
}

// WithRand replaces the random source used for colors and spawn placement
func WithRand(rng *rand.Rand) GameOption {
	return func(g *Game) { g.rng = rng }
}

// WithTickers replaces the ticker factory for both timers
func WithTickers(f TickerFunc) GameOption {
	return func(g *Game) { g.newTicker = f }
}

// WithRecorder attaches a round/event recorder
func WithRecorder(r Recorder) GameOption {
	return func(g *Game) {
		if r != nil {
			g.rec = r
		}
	}
}

// NewGame creates a Game in the lobby phase
func NewGame(opts ...GameOption) *Game {
	g := &Game{
		inbox:      make(chan func(), inboxSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		players:    NewRegistry(),
		zombies:    NewZombieSet(),
		gw:         NewGateway(),
		phase:      PhaseLobby,
		difficulty: DifficultyMedium,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		newTicker:  NewRealTicker,
		rec:        nopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run starts the game loop. The simulation ticker runs for the life of the
// loop; the horde ticker exists only while a round is active.
func (g *Game) Run() {
	sim := g.newTicker(TickDuration)
	defer sim.Stop()
	defer close(g.done)

	for {
		// re-read every iteration: a stopped horde timer must never fire again
		var hordeC <-chan time.Time
		if g.horde.ticker != nil {
			hordeC = g.horde.ticker.C()
		}

		select {
		case fn := <-g.inbox:
			g.exec("command", fn)
		case <-sim.C():
			g.exec("sim", func() { g.simTick(g.now()) })
		case <-hordeC:
			g.exec("horde", func() { g.fireHorde(g.now()) })
		case <-g.stop:
			g.stopHorde()
			return
		}
	}
}

// Stop terminates the game loop and waits for it to exit
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
	<-g.done
}

// exec runs one handler, keeping a panic inside it from killing the loop
func (g *Game) exec(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("handler", name).Interface("panic", r).Msg("game handler panicked")
		}
	}()
	fn()
}

// Submit queues fn to run on the game goroutine. It returns false once the
// loop has exited.
func (g *Game) Submit(fn func()) bool {
	select {
	case <-g.done:
		return false
	default:
	}
	select {
	case g.inbox <- fn:
		return true
	case <-g.done:
		return false
	}
}

// call runs fn on the game goroutine and waits for it to finish
func (g *Game) call(fn func()) bool {
	finished := make(chan struct{})
	if !g.Submit(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-g.done:
		return false
	}
}

// Connect admits a new connection, returning its player id or ErrServerFull
func (g *Game) Connect(c Conn) (string, error) {
	var (
		id  string
		err error = ErrGameStopped
	)
	g.call(func() { id, err = g.connect(c) })
	return id, err
}

// Disconnect removes a player; safe to call for unknown ids
func (g *Game) Disconnect(id string) {
	g.Submit(func() { g.disconnect(id) })
}

// Status returns an operator snapshot taken on the game goroutine
func (g *Game) Status() StatusMsg {
	var st StatusMsg
	g.call(func() { st = g.status() })
	return st
}

// ForceReset performs the hard reset used when the registry empties
func (g *Game) ForceReset() bool {
	return g.call(func() { g.hardReset(OutcomeReset) })
}

func (g *Game) status() StatusMsg {
	joined := 0
	g.players.Each(func(p *Player) {
		if p.Joined() {
			joined++
		}
	})
	st := StatusMsg{
		Phase:         g.phase.String(),
		Difficulty:    g.difficulty.String(),
		Wave:          g.horde.wave,
		NextHordeTime: g.horde.nextHordeTime,
		GameEndTime:   g.horde.gameEndTime,
		Players:       g.players.Len(),
		Joined:        joined,
		Zombies:       g.zombies.Len(),
		HostID:        g.hostID,
	}
	if host := g.players.Host(); host != nil {
		st.HostName = host.Name
	}
	return st
}
