package game

import (
	"fmt"
	"time"
)

// OutcomeCode classifies how a match ended.
type OutcomeCode int

const (
	OutcomeSuccess OutcomeCode = iota
	OutcomeTimeout
	OutcomeForfeit
	OutcomeInitError
)

var outcomeNames = map[OutcomeCode]string{
	OutcomeSuccess:   "SUCCESS",
	OutcomeTimeout:   "TIMEOUT",
	OutcomeForfeit:   "FORFEIT",
	OutcomeInitError: "INIT_ERROR",
}

func (o OutcomeCode) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OUTCOME_%d", int(o))
}

// Report is the structured match-end summary handed to downstream
// reward/economy systems.
type Report struct {
	MatchID    string
	Outcome    OutcomeCode
	WinnerID   string
	LoserID    string
	Turns      int
	Duration   time.Duration
	Transcript []string
	FinishedAt time.Time
}
