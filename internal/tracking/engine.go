// Package tracking implements the live-tracking alert lifecycle engine: it
// matches a moving observer's position stream against nearby road alerts,
// raises at most one time-boxed confirmation prompt at a time, and converges
// each prompted alert to a validated or invalidated state through the alert
// backend.
//
// The engine owns all of its mutable state (the asked set, the last-fetch
// position, the countdown) behind a single goroutine; callers interact with
// it only through Start, Stop, UpdatePosition, Keep, and Dismiss. Position
// updates are serialized through that goroutine, so overlapping updates can
// never race the confirmation state machine or the fetch throttle.
package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadmate/roadmate/internal/alert"
	"github.com/roadmate/roadmate/internal/geo"
)

// Engine errors.
var (
	ErrAlreadyStarted = errors.New("tracking engine already started")
	ErrNotStarted     = errors.New("tracking engine not started")
)

// Defaults for the engine configuration. The two 100m thresholds are tuned
// against the haversine distance in the geo package.
const (
	// DefaultProximityThresholdMeters is the distance under which an alert
	// qualifies for a confirmation prompt.
	DefaultProximityThresholdMeters = 100

	// DefaultRefetchThresholdMeters is how far the observer must move from
	// the last fetch position before the nearby set is refetched.
	DefaultRefetchThresholdMeters = 100

	// DefaultConfirmationWindowSeconds is the confirmation countdown length.
	DefaultConfirmationWindowSeconds = 20

	// DefaultResolveRefreshDelay is how long after a resolution the nearby
	// set is refreshed from the last known position.
	DefaultResolveRefreshDelay = 2 * time.Second
)

// State is the confirmation state machine's current state.
type State string

const (
	// StateIdle means no nearby unconfirmed alert is currently prompting.
	StateIdle State = "idle"
	// StatePrompting means a confirmation countdown is active.
	StatePrompting State = "prompting"
	// StateResolving means a backend call to persist the outcome is in flight.
	StateResolving State = "resolving"
)

// Outcome is how a confirmation session ended.
type Outcome string

const (
	// OutcomeKept means the user asserted the hazard is still present.
	OutcomeKept Outcome = "kept"
	// OutcomeDismissed means the user asserted the hazard is gone.
	OutcomeDismissed Outcome = "dismissed"
	// OutcomeTimedOut means the countdown expired with no answer. Timeouts
	// validate the alert: a silent driver must never erase a real hazard.
	OutcomeTimedOut Outcome = "timed_out"
)

// AlertSource is the backend the engine fetches from and votes against.
// *alert.Service satisfies it.
type AlertSource interface {
	Nearby(ctx context.Context, p geo.Point) ([]alert.Alert, error)
	Validate(ctx context.Context, id string) error
	Invalidate(ctx context.Context, id string) error
}

// Listener receives engine events. Implementations must not block; user
// answers come back through Keep and Dismiss, never through the listener.
type Listener interface {
	// AlertPrompted fires on entering the prompting state.
	AlertPrompted(a alert.Alert, remainingSeconds int)
	// CountdownTick fires once per countdown second.
	CountdownTick(alertID string, remainingSeconds int)
	// AlertResolved fires when a confirmation session settles. err is the
	// backend failure, if any; the session is over either way.
	AlertResolved(alertID string, outcome Outcome, err error)
	// AlertsRefreshed fires when the nearby working set is replaced.
	AlertsRefreshed(alerts []alert.Alert)
}

// NopListener is a Listener that ignores all events.
type NopListener struct{}

func (NopListener) AlertPrompted(alert.Alert, int)       {}
func (NopListener) CountdownTick(string, int)            {}
func (NopListener) AlertResolved(string, Outcome, error) {}
func (NopListener) AlertsRefreshed([]alert.Alert)        {}

// Config holds configuration for the tracking engine.
type Config struct {
	// Source is the alert backend (required).
	Source AlertSource

	// Listener receives engine events (optional).
	Listener Listener

	// Logger for engine operations.
	Logger zerolog.Logger

	// ProximityThresholdMeters qualifies an alert for prompting
	// (default: 100).
	ProximityThresholdMeters float64

	// RefetchThresholdMeters throttles nearby refetching by movement
	// (default: 100).
	RefetchThresholdMeters float64

	// ConfirmationWindowSeconds is the countdown length in ticks
	// (default: 20).
	ConfirmationWindowSeconds int

	// TickInterval is the countdown tick period (default: 1s). Tests use
	// short intervals.
	TickInterval time.Duration

	// ResolveRefreshDelay is the pause between a resolution and the
	// follow-up nearby refresh (default: 2s).
	ResolveRefreshDelay time.Duration
}

// Snapshot is a read-only view of the engine's state, answered by the engine
// goroutine itself.
type Snapshot struct {
	State            State
	Asked            map[string]bool
	PromptedAlertID  string
	RemainingSeconds int
	NearbyCount      int
}

type fetchResult struct {
	origin geo.Point
	alerts []alert.Alert
	err    error
}

type resolveResult struct {
	alertID string
	outcome Outcome
	err     error
}

// session is the ephemeral state of one in-progress confirmation. It holds a
// snapshot of the prompted alert, never the authoritative record.
type session struct {
	target    alert.Alert
	remaining int
}

// Engine is the live-tracking alert lifecycle engine for one tracking
// session. It is not restartable; create a new Engine per session.
type Engine struct {
	source   AlertSource
	listener Listener
	logger   zerolog.Logger

	proximityThreshold float64
	refetchThreshold   float64
	confirmationWindow int
	tickInterval       time.Duration
	resolveDelay       time.Duration

	positions      chan geo.Point
	answers        chan Outcome
	fetchResults   chan fetchResult
	resolveResults chan resolveResult
	snapshots      chan chan Snapshot
	stop           chan struct{}
	done           chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool

	// State below is owned exclusively by the run goroutine.
	state         State
	asked         map[string]bool
	current       *session
	ticker        *time.Ticker
	refreshTimer  *time.Timer
	nearby        []alert.Alert
	lastKnown     geo.Point
	hasPosition   bool
	lastFetchAt   geo.Point
	hasFetched    bool
	fetchInFlight bool
}

// NewEngine creates a tracking engine for one tracking session.
func NewEngine(cfg Config) *Engine {
	listener := cfg.Listener
	if listener == nil {
		listener = NopListener{}
	}

	proximity := cfg.ProximityThresholdMeters
	if proximity <= 0 {
		proximity = DefaultProximityThresholdMeters
	}

	refetch := cfg.RefetchThresholdMeters
	if refetch <= 0 {
		refetch = DefaultRefetchThresholdMeters
	}

	window := cfg.ConfirmationWindowSeconds
	if window <= 0 {
		window = DefaultConfirmationWindowSeconds
	}

	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}

	resolveDelay := cfg.ResolveRefreshDelay
	if resolveDelay <= 0 {
		resolveDelay = DefaultResolveRefreshDelay
	}

	return &Engine{
		source:             cfg.Source,
		listener:           listener,
		logger:             cfg.Logger,
		proximityThreshold: proximity,
		refetchThreshold:   refetch,
		confirmationWindow: window,
		tickInterval:       tick,
		resolveDelay:       resolveDelay,
		positions:          make(chan geo.Point, 1),
		answers:            make(chan Outcome, 1),
		fetchResults:       make(chan fetchResult, 1),
		resolveResults:     make(chan resolveResult, 1),
		snapshots:          make(chan chan Snapshot),
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
		state:              StateIdle,
		asked:              make(map[string]bool),
	}
}

// Start launches the engine goroutine. It returns ErrAlreadyStarted on a
// second call.
func (e *Engine) Start(ctx context.Context) error {
	var err error = ErrAlreadyStarted
	e.startOnce.Do(func() {
		e.started = true
		err = nil
		go e.run(ctx)
	})
	return err
}

// Stop tears down the engine: the countdown is cancelled, in-flight work is
// abandoned, and no state changes or listener events happen afterwards.
// Stop blocks until the engine goroutine has exited.
func (e *Engine) Stop() {
	if !e.started {
		return
	}
	e.stopOnce.Do(func() { close(e.stop) })
	<-e.done
}

// UpdatePosition feeds one observer position to the engine. Updates are
// processed in arrival order by the engine goroutine; if an update is still
// being processed, the newest pending one wins and older pending ones are
// dropped. Never blocks.
func (e *Engine) UpdatePosition(p geo.Point) {
	for {
		select {
		case e.positions <- p:
			return
		case <-e.done:
			return
		default:
		}
		// Buffer full: discard the stale pending update.
		select {
		case <-e.positions:
		default:
		}
	}
}

// Keep answers the active prompt asserting the hazard is still present.
// Ignored when no prompt is active.
func (e *Engine) Keep() {
	e.answer(OutcomeKept)
}

// Dismiss answers the active prompt asserting the hazard is gone. Ignored
// when no prompt is active.
func (e *Engine) Dismiss() {
	e.answer(OutcomeDismissed)
}

func (e *Engine) answer(o Outcome) {
	select {
	case e.answers <- o:
	case <-e.done:
	default:
		// An answer is already pending; the first one wins.
	}
}

// Snapshot returns a consistent view of the engine state. After Stop it
// returns the zero Snapshot.
func (e *Engine) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case e.snapshots <- reply:
		return <-reply
	case <-e.done:
		return Snapshot{}
	}
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	defer e.stopCountdown()
	defer e.stopRefreshTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case p := <-e.positions:
			e.handlePosition(ctx, p)
		case res := <-e.fetchResults:
			e.handleFetchResult(res)
		case <-e.tickC():
			e.handleTick(ctx)
		case o := <-e.answers:
			e.handleAnswer(ctx, o)
		case res := <-e.resolveResults:
			e.handleResolved(res)
		case <-e.refreshC():
			e.refreshTimer = nil
			e.maybeFetch(ctx, e.lastKnown, true)
		case reply := <-e.snapshots:
			reply <- e.snapshot()
		}
	}
}

// tickC returns the countdown channel, or nil when no countdown is active so
// the select arm stays disabled.
func (e *Engine) tickC() <-chan time.Time {
	if e.ticker == nil {
		return nil
	}
	return e.ticker.C
}

func (e *Engine) refreshC() <-chan time.Time {
	if e.refreshTimer == nil {
		return nil
	}
	return e.refreshTimer.C
}

// handlePosition runs the two decoupled policies on every position update:
// the movement-throttled nearby refetch, and (only when idle) the proximity
// scan for a new confirmation prompt.
func (e *Engine) handlePosition(ctx context.Context, p geo.Point) {
	e.lastKnown = p
	e.hasPosition = true

	e.maybeFetch(ctx, p, false)

	if e.state == StateIdle {
		e.scanForPrompt(p)
	}
}

// maybeFetch starts an asynchronous nearby fetch when forced, on the first
// position, or once the observer has moved beyond the refetch threshold.
// At most one fetch is in flight; the result comes back through the loop.
func (e *Engine) maybeFetch(ctx context.Context, p geo.Point, force bool) {
	if e.fetchInFlight {
		return
	}
	if !force && e.hasFetched && geo.Distance(p, e.lastFetchAt) <= e.refetchThreshold {
		return
	}

	e.fetchInFlight = true
	go func() {
		alerts, err := e.source.Nearby(ctx, p)
		select {
		case e.fetchResults <- fetchResult{origin: p, alerts: alerts, err: err}:
		case <-e.done:
		}
	}()
}

func (e *Engine) handleFetchResult(res fetchResult) {
	e.fetchInFlight = false

	if res.err != nil {
		// Keep serving the stale working set; the next movement retriggers.
		e.logger.Error().Err(res.err).
			Float64("lat", res.origin.Lat).
			Float64("lon", res.origin.Lon).
			Msg("nearby alert fetch failed")
		return
	}

	e.lastFetchAt = res.origin
	e.hasFetched = true
	e.nearby = res.alerts
	e.listener.AlertsRefreshed(res.alerts)

	e.logger.Debug().
		Int("alert_count", len(res.alerts)).
		Msg("nearby alerts refreshed")

	if e.state == StateIdle && e.hasPosition {
		e.scanForPrompt(e.lastKnown)
	}
}

// scanForPrompt finds the first not-yet-asked alert within the proximity
// threshold and opens a confirmation session for it. First match in
// iteration order wins; no nearest-first ranking is applied. The alert id
// joins the asked set immediately, so even an aborted session never
// re-prompts.
func (e *Engine) scanForPrompt(p geo.Point) {
	for _, a := range e.nearby {
		if e.asked[a.ID] {
			continue
		}
		d := geo.Distance(p, geo.Point{Lat: a.Latitude, Lon: a.Longitude})
		if d >= e.proximityThreshold {
			continue
		}

		e.asked[a.ID] = true
		e.current = &session{target: a, remaining: e.confirmationWindow}
		e.state = StatePrompting
		e.startCountdown()

		e.logger.Info().
			Str("alert_id", a.ID).
			Str("type", string(a.Type)).
			Float64("distance_m", d).
			Msg("prompting alert confirmation")

		e.listener.AlertPrompted(a, e.current.remaining)
		return
	}
}

func (e *Engine) startCountdown() {
	e.stopCountdown()
	e.ticker = time.NewTicker(e.tickInterval)
}

func (e *Engine) stopCountdown() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

func (e *Engine) stopRefreshTimer() {
	if e.refreshTimer != nil {
		e.refreshTimer.Stop()
		e.refreshTimer = nil
	}
}

func (e *Engine) handleTick(ctx context.Context) {
	if e.state != StatePrompting || e.current == nil {
		return
	}

	e.current.remaining--
	e.listener.CountdownTick(e.current.target.ID, e.current.remaining)

	if e.current.remaining <= 0 {
		// No answer inside the window: treat the hazard as confirmed present.
		e.beginResolve(ctx, OutcomeTimedOut)
	}
}

func (e *Engine) handleAnswer(ctx context.Context, o Outcome) {
	if e.state != StatePrompting || e.current == nil {
		e.logger.Debug().Str("outcome", string(o)).Msg("answer with no active prompt ignored")
		return
	}
	e.beginResolve(ctx, o)
}

// beginResolve moves the session to resolving and persists the outcome in the
// background. Dismissals invalidate; everything else, timeouts included,
// validates.
func (e *Engine) beginResolve(ctx context.Context, o Outcome) {
	e.state = StateResolving
	e.stopCountdown()

	target := e.current.target
	go func() {
		var err error
		if o == OutcomeDismissed {
			err = e.source.Invalidate(ctx, target.ID)
		} else {
			err = e.source.Validate(ctx, target.ID)
		}
		select {
		case e.resolveResults <- resolveResult{alertID: target.ID, outcome: o, err: err}:
		case <-e.done:
		}
	}()
}

// handleResolved returns the machine to idle whether or not the backend call
// succeeded. Failures are logged, never retried; the asked set already
// guarantees the alert is not re-prompted this session.
func (e *Engine) handleResolved(res resolveResult) {
	if res.err != nil {
		e.logger.Error().Err(res.err).
			Str("alert_id", res.alertID).
			Str("outcome", string(res.outcome)).
			Msg("alert resolution failed")
	} else {
		e.logger.Info().
			Str("alert_id", res.alertID).
			Str("outcome", string(res.outcome)).
			Msg("alert confirmation resolved")
	}

	e.listener.AlertResolved(res.alertID, res.outcome, res.err)
	e.current = nil
	e.state = StateIdle

	if e.hasPosition {
		e.stopRefreshTimer()
		e.refreshTimer = time.NewTimer(e.resolveDelay)
	}
}

func (e *Engine) snapshot() Snapshot {
	asked := make(map[string]bool, len(e.asked))
	for id := range e.asked {
		asked[id] = true
	}

	s := Snapshot{
		State:       e.state,
		Asked:       asked,
		NearbyCount: len(e.nearby),
	}
	if e.current != nil {
		s.PromptedAlertID = e.current.target.ID
		s.RemainingSeconds = e.current.remaining
	}
	return s
}
