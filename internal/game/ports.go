package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
)

// DeckSupplier returns a player's owned card templates, called once at match
// creation to seed the draw pile.
type DeckSupplier interface {
	Deck(ctx context.Context, userID string) ([]card.Template, error)
}

// Renderer turns the public match view into an opaque visual artifact.
// Render failures are never game errors.
type Renderer interface {
	Render(view MatchView) ([]byte, error)
}

// ChannelIO delivers the public match message and private hand views. The
// engine calls these as side effects and does not depend on their success.
// The view and hand arguments are snapshots captured inside the match loop;
// implementations must not reach back into live match state.
type ChannelIO interface {
	SendMatch(matchID string, view MatchView, image []byte) error
	SendHand(userID string, hand HandView) error
	DeleteMatch(matchID string) error
}

// Localizer resolves a stable message key plus positional arguments into
// display text. The engine never hardcodes display text beyond keys.
type Localizer interface {
	Localize(key string, args ...any) string
}

// ReportSink receives the structured match-end report for downstream
// reward/economy systems.
type ReportSink interface {
	SaveReport(ctx context.Context, report Report) error
}

// Ports bundles the engine's external collaborators.
type Ports struct {
	Decks    DeckSupplier
	Renderer Renderer
	Channel  ChannelIO
	Locale   Localizer
	Reports  ReportSink
}

// withDefaults fills any nil collaborator with a no-op implementation.
func (p Ports) withDefaults() Ports {
	if p.Renderer == nil {
		p.Renderer = NullRenderer{}
	}
	if p.Channel == nil {
		p.Channel = &NullChannel{}
	}
	if p.Locale == nil {
		p.Locale = KeyLocalizer{}
	}
	if p.Reports == nil {
		p.Reports = NullReportSink{}
	}
	return p
}

// NullRenderer produces no artifact.
type NullRenderer struct{}

func (NullRenderer) Render(MatchView) ([]byte, error) { return nil, nil }

// NullChannel swallows all channel traffic, recording counts for tests.
// Renders arrive from multiple goroutines, so the counters are guarded.
type NullChannel struct {
	mu         sync.Mutex
	matchSends int
	handSends  int
	deletes    int
}

func (n *NullChannel) SendMatch(string, MatchView, []byte) error {
	n.mu.Lock()
	n.matchSends++
	n.mu.Unlock()
	return nil
}

func (n *NullChannel) SendHand(string, HandView) error {
	n.mu.Lock()
	n.handSends++
	n.mu.Unlock()
	return nil
}

func (n *NullChannel) DeleteMatch(string) error {
	n.mu.Lock()
	n.deletes++
	n.mu.Unlock()
	return nil
}

// Counts returns the recorded traffic totals.
func (n *NullChannel) Counts() (matchSends, handSends, deletes int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.matchSends, n.handSends, n.deletes
}

// KeyLocalizer is the fallback localizer: it renders the bare key with its
// arguments, which keeps transcripts readable in tests.
type KeyLocalizer struct{}

func (KeyLocalizer) Localize(key string, args ...any) string {
	out := key
	for _, a := range args {
		out += " " + fmt.Sprint(a)
	}
	return out
}

// NullReportSink drops match-end reports.
type NullReportSink struct{}

func (NullReportSink) SaveReport(context.Context, Report) error { return nil }
