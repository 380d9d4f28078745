package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatchRegistry guards the "one active match per player" invariant, possibly
// across server instances.
type MatchRegistry interface {
	Acquire(ctx context.Context, userID, matchID string) error
	Release(ctx context.Context, userID string)
}

// ShoukanEngine manages all running matches. It creates matches from the
// deck supplier, routes submitted actions, and releases player locks when a
// match ends.
type ShoukanEngine struct {
	logger   *zap.Logger
	ports    Ports
	registry MatchRegistry
	cfg      MatchConfig

	mu      sync.RWMutex
	matches map[string]*Match
}

// NewShoukanEngine creates the match manager.
func NewShoukanEngine(ports Ports, registry MatchRegistry, cfg MatchConfig, logger *zap.Logger) *ShoukanEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShoukanEngine{
		logger:   logger,
		ports:    ports.withDefaults(),
		registry: registry,
		cfg:      cfg.withDefaults(),
		matches:  make(map[string]*Match),
	}
}

// CreateMatch starts a new match between two players (or a single-player
// self-match when both identities are equal). A player already in a match is
// rejected, not queued. Deck problems abort creation with an init-error
// report before any turn begins.
func (e *ShoukanEngine) CreateMatch(ctx context.Context, topID, topName, bottomID, bottomName string) (*Match, error) {
	matchID := uuid.NewString()
	single := topID == bottomID

	if e.registry != nil {
		if err := e.registry.Acquire(ctx, topID, matchID); err != nil {
			return nil, fmt.Errorf("player %s: %w", topID, err)
		}
		if !single {
			if err := e.registry.Acquire(ctx, bottomID, matchID); err != nil {
				e.registry.Release(ctx, topID)
				return nil, fmt.Errorf("player %s: %w", bottomID, err)
			}
		}
	}

	topDeck, err := e.ports.Decks.Deck(ctx, topID)
	if err != nil {
		e.releaseSeats(ctx, topID, bottomID)
		return nil, e.initFailure(matchID, topID, bottomID, fmt.Errorf("load deck for %s: %w", topID, err))
	}
	bottomDeck := topDeck
	if !single {
		bottomDeck, err = e.ports.Decks.Deck(ctx, bottomID)
		if err != nil {
			e.releaseSeats(ctx, topID, bottomID)
			return nil, e.initFailure(matchID, topID, bottomID, fmt.Errorf("load deck for %s: %w", bottomID, err))
		}
	}

	m, err := NewMatch(matchID,
		Seat{UserID: topID, Name: topName, Deck: topDeck},
		Seat{UserID: bottomID, Name: bottomName, Deck: bottomDeck},
		e.ports, e.cfg, e.logger.With(zap.String("match_id", matchID)))
	if err != nil {
		e.releaseSeats(ctx, topID, bottomID)
		return nil, e.initFailure(matchID, topID, bottomID, err)
	}

	m.SetOnFinish(func(report *Report) {
		e.mu.Lock()
		delete(e.matches, matchID)
		e.mu.Unlock()
		e.releaseSeats(context.Background(), topID, bottomID)
	})

	e.mu.Lock()
	e.matches[matchID] = m
	e.mu.Unlock()

	m.Start()
	e.logger.Info("match created",
		zap.String("match_id", matchID),
		zap.String("top", topID),
		zap.String("bottom", bottomID),
		zap.Bool("single_player", single),
	)
	return m, nil
}

// Get returns an active match by ID.
func (e *ShoukanEngine) Get(matchID string) (*Match, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.matches[matchID]
	return m, ok
}

// MatchFor returns the active match a player is seated in, if any.
func (e *ShoukanEngine) MatchFor(userID string) (*Match, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, m := range e.matches {
		if _, ok := m.SideOf(userID); ok {
			return m, true
		}
	}
	return nil, false
}

// Submit routes one action into a match's serialized command queue.
func (e *ShoukanEngine) Submit(ctx context.Context, matchID string, userID string, act Action) SubmitResult {
	m, ok := e.Get(matchID)
	if !ok {
		return SubmitResult{Err: reject(ErrMatchClosed)}
	}
	side, ok := m.SideOf(userID)
	if !ok {
		return SubmitResult{Err: reject(ErrNotYourTurn)}
	}
	act.Side = side
	return m.Submit(ctx, act)
}

// ActiveMatches returns the number of running matches.
func (e *ShoukanEngine) ActiveMatches() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.matches)
}

func (e *ShoukanEngine) releaseSeats(ctx context.Context, topID, bottomID string) {
	if e.registry == nil {
		return
	}
	e.registry.Release(ctx, topID)
	if bottomID != topID {
		e.registry.Release(ctx, bottomID)
	}
}

// initFailure persists an initialization-error report so the caller can
// message the user without treating the failure as a forfeit or timeout.
func (e *ShoukanEngine) initFailure(matchID, topID, bottomID string, err error) error {
	report := Report{
		MatchID: matchID,
		Outcome: OutcomeInitError,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if saveErr := e.ports.Reports.SaveReport(ctx, report); saveErr != nil {
			e.logger.Warn("failed to persist init-error report", zap.String("match_id", matchID), zap.Error(saveErr))
		}
	}()
	e.logger.Warn("match initialization failed",
		zap.String("match_id", matchID),
		zap.String("top", topID),
		zap.String("bottom", bottomID),
		zap.Error(err),
	)
	return fmt.Errorf("match initialization: %w", err)
}
