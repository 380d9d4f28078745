package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
	"github.com/shoukanhq/shoukan-server-go/internal/game/locks"
	"github.com/shoukanhq/shoukan-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const maxEquipments = 3

// MatchStatus tracks whether a match still accepts actions.
type MatchStatus int

const (
	StatusActive MatchStatus = iota
	StatusFinished
)

// MatchConfig carries the tunable match parameters.
type MatchConfig struct {
	Columns         int
	HandCapacity    int
	OpeningHand     int
	BaseHP          int
	DeckMin         int
	Revivals        int
	RevivalCooldown int
	TurnTimeout     time.Duration
	Seed            int64 // 0 = time-seeded
}

func (c MatchConfig) withDefaults() MatchConfig {
	if c.Columns <= 0 {
		c.Columns = 5
	}
	if c.HandCapacity <= 0 {
		c.HandCapacity = 5
	}
	if c.OpeningHand <= 0 {
		c.OpeningHand = 5
	}
	if c.BaseHP <= 0 {
		c.BaseHP = 5000
	}
	if c.DeckMin <= 0 {
		c.DeckMin = 30
	}
	if c.Revivals < 0 {
		c.Revivals = 0
	}
	if c.RevivalCooldown <= 0 {
		c.RevivalCooldown = 3
	}
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = 5 * time.Minute
	}
	return c
}

// Seat describes one player joining a match.
type Seat struct {
	UserID string
	Name   string
	Deck   []card.Template
}

// SubmitResult is the outcome of one submitted action. Hand is a snapshot of
// the acting side's private hand, captured inside the match loop whenever the
// action changed the hand's contents.
type SubmitResult struct {
	ResendHand bool
	Hand       *HandView
	Err        error
}

type command struct {
	action Action
	reply  chan SubmitResult
}

// readRequest runs a closure on the loop goroutine so external readers see a
// consistent state without locking.
type readRequest struct {
	fn   func()
	done chan struct{}
}

// Match owns one game's entire mutable state. It is logically single-writer:
// a dedicated loop applies one action at a time in arrival order, bounded by
// the per-turn wall-clock timeout.
type Match struct {
	id     string
	logger *zap.Logger
	ports  Ports
	cfg    MatchConfig

	hands      map[rules.Side]*Hand
	arena      *Arena
	turns      *rules.TurnManager
	bus        *rules.EventBus
	transcript *Transcript
	actions    map[ActionKind]actionHandler
	rng        *rand.Rand

	startedAt time.Time

	finMu  sync.RWMutex
	status MatchStatus
	report *Report

	commands  chan command
	reads     chan readRequest
	done      chan struct{}
	closeOnce sync.Once
	renderGen atomic.Uint64

	// onFinish is invoked once with the final report; the engine uses it to
	// release the players' active-match locks.
	onFinish func(*Report)
}

// NewMatch builds a match from two seats. A deck that fails validation
// aborts creation before any turn begins; the caller surfaces that as an
// initialization error, not a forfeit.
func NewMatch(id string, top, bottom Seat, ports Ports, cfg MatchConfig, logger *zap.Logger) (*Match, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	single := top.UserID == bottom.UserID

	m := &Match{
		id:         id,
		logger:     logger,
		ports:      ports.withDefaults(),
		cfg:        cfg,
		hands:      make(map[rules.Side]*Hand, 2),
		arena:      NewArena(cfg.Columns),
		turns:      rules.NewTurnManager(rules.SideTop, single),
		bus:        rules.NewEventBus(),
		transcript: NewTranscript(),
		actions:    buildActionTable(),
		rng:        rng,
		startedAt:  time.Now(),
		commands:   make(chan command),
		reads:      make(chan readRequest),
		done:       make(chan struct{}),
	}

	seats := map[rules.Side]Seat{rules.SideTop: top, rules.SideBottom: bottom}
	for _, side := range rules.Sides {
		seat := seats[side]
		h, err := NewHand(side, seat.UserID, seat.Name, seat.Deck, cfg.BaseHP, cfg.DeckMin, cfg.Revivals, rng)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", side, err)
		}
		m.hands[side] = h
	}

	for _, side := range rules.Sides {
		m.hands[side].OpeningDraw(cfg.OpeningHand)
	}
	m.hands[m.turns.ActiveSide()].StartTurn(1)

	m.publish(rules.Event{Type: rules.EventMatchStarted})
	return m, nil
}

// ID returns the match identifier.
func (m *Match) ID() string { return m.id }

// Bus returns the match event bus for spectator subscriptions.
func (m *Match) Bus() *rules.EventBus { return m.bus }

// Transcript returns the match transcript.
func (m *Match) Transcript() *Transcript { return m.transcript }

// Status returns whether the match still accepts actions.
func (m *Match) Status() MatchStatus {
	m.finMu.RLock()
	defer m.finMu.RUnlock()
	return m.status
}

// EndReport returns the final report, or nil while the match is active.
func (m *Match) EndReport() *Report {
	m.finMu.RLock()
	defer m.finMu.RUnlock()
	return m.report
}

// SideOf resolves a player identity to a seat. In single-player matches the
// active side is returned so self-matches stay playable.
func (m *Match) SideOf(userID string) (rules.Side, bool) {
	if m.turns.SinglePlayer() {
		if m.hands[rules.SideTop].UserID() == userID {
			return m.turns.ActiveSide(), true
		}
		return 0, false
	}
	for _, side := range rules.Sides {
		if m.hands[side].UserID() == userID {
			return side, true
		}
	}
	return 0, false
}

// SetOnFinish installs the finish hook. Must be called before Start.
func (m *Match) SetOnFinish(fn func(*Report)) { m.onFinish = fn }

// Start launches the match loop and issues the initial render.
func (m *Match) Start() {
	m.render()
	go m.run()
}

// Submit queues one action for serialized application and waits for the
// result. Rejections carry a locale key and guarantee no state change.
func (m *Match) Submit(ctx context.Context, act Action) SubmitResult {
	cmd := command{action: act, reply: make(chan SubmitResult, 1)}
	select {
	case m.commands <- cmd:
	case <-m.done:
		return SubmitResult{Err: reject(ErrMatchClosed)}
	case <-ctx.Done():
		return SubmitResult{Err: ctx.Err()}
	}
	select {
	case res := <-cmd.reply:
		return res
	case <-m.done:
		// The loop may have finished right after handling this command.
		select {
		case res := <-cmd.reply:
			return res
		default:
			return SubmitResult{Err: reject(ErrMatchClosed)}
		}
	case <-ctx.Done():
		return SubmitResult{Err: ctx.Err()}
	}
}

// run is the single-writer loop: one action at a time, with the per-turn
// timeout resolving the match as a loss for whoever's turn it is.
func (m *Match) run() {
	timer := time.NewTimer(m.cfg.TurnTimeout)
	defer timer.Stop()

	for {
		select {
		case cmd := <-m.commands:
			res := m.handle(cmd.action)
			cmd.reply <- res
			if m.Status() == StatusFinished {
				return
			}
			if res.Err == nil {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(m.cfg.TurnTimeout)
			}
		case req := <-m.reads:
			req.fn()
			close(req.done)
		case <-timer.C:
			side := m.turns.ActiveSide()
			m.logger.Info("turn timed out",
				zap.String("match_id", m.id),
				zap.String("side", side.String()),
			)
			m.say("event/timeout", m.hands[side].Name())
			m.finishLoss(side, OutcomeTimeout)
			return
		case <-m.done:
			return
		}
	}
}

// handle validates and applies one action. Any panic during application is
// contained here and reported as a generic failure.
func (m *Match) handle(act Action) (res SubmitResult) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("action application panicked",
				zap.String("match_id", m.id),
				zap.String("action", act.Kind.String()),
				zap.Any("panic", r),
			)
			res = SubmitResult{Err: reject(ErrFatal)}
		}
	}()

	if m.Status() != StatusActive {
		return SubmitResult{Err: reject(ErrMatchClosed)}
	}
	if !m.turns.SinglePlayer() && act.Side != m.turns.ActiveSide() {
		return SubmitResult{Err: reject(ErrNotYourTurn)}
	}
	handler, ok := m.actions[act.Kind]
	if !ok {
		return SubmitResult{Err: reject(ErrFatal)}
	}
	if !handler.allowed(m.turns.CurrentPhase()) {
		return SubmitResult{Err: reject(ErrWrongPhase, m.turns.CurrentPhase().String())}
	}

	resend, err := handler.apply(m, act)
	if err != nil {
		return SubmitResult{Err: err}
	}

	m.checkWinCondition()
	if m.Status() == StatusActive {
		m.render()
	}
	res = SubmitResult{ResendHand: resend}
	if resend {
		hv := m.HandViewFor(act.Side)
		res.Hand = &hv
	}
	return res
}

// ViewSnapshot returns the public projection, serialized against the match
// loop so a concurrent action never tears the view.
func (m *Match) ViewSnapshot(ctx context.Context) (MatchView, error) {
	var view MatchView
	if err := m.inspect(ctx, func() { view = m.View() }); err != nil {
		return MatchView{}, err
	}
	return view, nil
}

// HandSnapshot returns one side's private hand projection, serialized against
// the match loop.
func (m *Match) HandSnapshot(ctx context.Context, side rules.Side) (HandView, error) {
	var hv HandView
	if err := m.inspect(ctx, func() { hv = m.HandViewFor(side) }); err != nil {
		return HandView{}, err
	}
	return hv, nil
}

// inspect runs fn on the loop goroutine. Once the loop has exited the state
// is frozen, so fn runs inline.
func (m *Match) inspect(ctx context.Context, fn func()) error {
	req := readRequest{fn: fn, done: make(chan struct{})}
	select {
	case m.reads <- req:
	case <-m.done:
		fn()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// endTurn performs the full turn-end sequence in order: prune the hand,
// flush the discard buffer, rotate the side, and start the new turn.
func (m *Match) endTurn() {
	side := m.turns.ActiveSide()
	h := m.hands[side]
	h.PruneHand(m.cfg.HandCapacity)
	h.FlushDiscard()
	m.publish(rules.Event{Type: rules.EventTurnEnded, Side: side})

	m.turns.EndTurn()
	next := m.turns.ActiveSide()
	nh := m.hands[next]
	nh.StartTurn(m.turns.TurnNumber())
	m.arena.TickLocks(next)

	for _, col := range m.arena.Columns(next) {
		for _, c := range []*card.Card{col.Top(), col.Bottom()} {
			if c == nil {
				continue
			}
			c.Flags.Available = true
			c.Flags.Summoned = false
		}
	}
	for _, c := range m.arena.FrontCards(next) {
		if !c.Flags.FaceDown {
			m.fireEffect(next, c, card.TriggerOnTurnStart)
		}
	}

	m.publish(rules.Event{Type: rules.EventTurnStarted, Side: next, Amount: m.turns.TurnNumber()})
	m.say("event/turn_started", nh.Name(), m.turns.TurnNumber())
}

// checkWinCondition evaluates both sides in fixed order after every resolved
// action. The revival exception is applied atomically with the death check.
func (m *Match) checkWinCondition() {
	var dead []rules.Side
	for _, side := range rules.Sides {
		h := m.hands[side]
		if h.HP() > 0 {
			continue
		}
		if h.TryRevival(m.cfg.RevivalCooldown) {
			m.publish(rules.Event{Type: rules.EventRevival, Side: side})
			m.say("event/revival", h.Name())
			continue
		}
		dead = append(dead, side)
	}
	if len(dead) == 0 {
		return
	}
	// On a simultaneous kill, the side evaluated first loses.
	loser := dead[0]
	m.say("event/defeated", m.hands[loser].Name())
	m.finishLoss(loser, OutcomeSuccess)
}

// finishLoss ends the match as a loss for the given side.
func (m *Match) finishLoss(loser rules.Side, outcome OutcomeCode) {
	m.finish(outcome, loser.Other(), loser)
}

func (m *Match) finish(outcome OutcomeCode, winner, loser rules.Side) {
	m.finMu.Lock()
	if m.status == StatusFinished {
		m.finMu.Unlock()
		return
	}
	m.status = StatusFinished
	report := &Report{
		MatchID:    m.id,
		Outcome:    outcome,
		WinnerID:   m.hands[winner].UserID(),
		LoserID:    m.hands[loser].UserID(),
		Turns:      m.turns.TurnNumber(),
		Duration:   time.Since(m.startedAt),
		Transcript: m.transcript.Lines(),
		FinishedAt: time.Now(),
	}
	m.report = report
	m.finMu.Unlock()

	m.publish(rules.Event{Type: rules.EventMatchEnded, Side: winner, Description: outcome.String()})
	m.logger.Info("match finished",
		zap.String("match_id", m.id),
		zap.String("outcome", outcome.String()),
		zap.String("winner", report.WinnerID),
		zap.String("loser", report.LoserID),
		zap.Int("turns", report.Turns),
	)

	// Persistence and channel cleanup are fire-and-forget side effects.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.ports.Reports.SaveReport(ctx, *report); err != nil {
			m.logger.Warn("failed to persist match report", zap.String("match_id", m.id), zap.Error(err))
		}
		if err := m.ports.Channel.DeleteMatch(m.id); err != nil {
			m.logger.Warn("failed to clean up match message", zap.String("match_id", m.id), zap.Error(err))
		}
	}()

	if m.onFinish != nil {
		m.onFinish(report)
	}
	m.closeOnce.Do(func() { close(m.done) })
}

// render re-publishes the public view. It never blocks action acceptance:
// the artifact is produced on a separate goroutine and a render superseded
// by a newer state is dropped rather than shown.
func (m *Match) render() {
	gen := m.renderGen.Add(1)
	view := m.View()
	go func() {
		img, err := m.ports.Renderer.Render(view)
		if err != nil {
			m.logger.Warn("render failed", zap.String("match_id", m.id), zap.Error(err))
		}
		if gen != m.renderGen.Load() {
			return
		}
		if err := m.ports.Channel.SendMatch(m.id, view, img); err != nil {
			m.logger.Warn("failed to send match view", zap.String("match_id", m.id), zap.Error(err))
		}
	}()
}

// destroy moves a defeated card (and its equipment) to its owner's
// graveyard, firing the on-defeat hook first.
func (m *Match) destroy(owner rules.Side, c *card.Card) {
	m.fireEffect(owner, c, card.TriggerOnDefeat)
	m.arena.Remove(c)
	h := m.hands[owner]
	for _, eq := range c.Equipments {
		h.ToGraveyard(eq)
	}
	h.ToGraveyard(c)
	m.publish(rules.Event{Type: rules.EventCardDestroyed, Side: owner, CardID: c.InstanceID})
}

// fireEffect runs a card's scripted hook. Effects are best-effort: failures
// and panics are logged and skipped, the structural action stands.
func (m *Match) fireEffect(owner rules.Side, c *card.Card, trig card.Trigger) {
	if c.EffectID == "" {
		return
	}
	if m.hands[owner].Locks().Active(locks.KindEffect) {
		return
	}
	fn, ok := card.LookupEffect(c.EffectID)
	if !ok {
		m.logger.Warn("unknown card effect",
			zap.String("match_id", m.id),
			zap.String("effect", c.EffectID),
			zap.String("card", c.Name),
		)
		return
	}

	ctx := &card.EffectContext{
		Trigger: trig,
		Self:    c,
		OwnerHP: func(delta int) { m.hands[owner].ModHP(delta) },
		OwnerMP: func(delta int) { m.hands[owner].ModMP(delta) },
		EnemyHP: func(delta int) { m.hands[owner.Other()].ModHP(delta) },
		Draw:    func(n int) { m.hands[owner].Draw(n) },
		Report:  func(format string, args ...any) { m.transcript.Append(fmt.Sprintf(format, args...)) },
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("card effect panicked",
				zap.String("match_id", m.id),
				zap.String("effect", c.EffectID),
				zap.String("card", c.Name),
				zap.Any("panic", r),
			)
		}
	}()
	if err := fn(ctx); err != nil {
		m.logger.Warn("card effect failed",
			zap.String("match_id", m.id),
			zap.String("effect", c.EffectID),
			zap.String("card", c.Name),
			zap.Error(err),
		)
	}
}

// say localizes a message key and appends it to the transcript.
func (m *Match) say(key string, args ...any) {
	m.transcript.Append(m.ports.Locale.Localize(key, args...))
}

func (m *Match) publish(event rules.Event) {
	m.bus.Publish(event)
}
