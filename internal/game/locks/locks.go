// Package locks implements the timed restrictions used by hands and slot
// columns: a lock carries a number of owner turns remaining, or is permanent.
package locks

// Permanent marks a lock that never expires on its own.
const Permanent = -1

// Kind names a category of hand-level lock.
type Kind string

const (
	KindEffect Kind = "EFFECT" // scripted card effects are suppressed
	KindSummon Kind = "SUMMON" // no new cards may be placed
	KindAttack Kind = "ATTACK" // no attacks may be declared
)

// Lock is a single timed restriction.
type Lock struct {
	Turns int // owner turns remaining; Permanent never expires
}

// Active reports whether the lock is still in force.
func (l Lock) Active() bool {
	return l.Turns == Permanent || l.Turns > 0
}

// Tick advances the lock by one owner turn. Permanent locks are unchanged.
func (l Lock) Tick() Lock {
	if l.Turns == Permanent || l.Turns == 0 {
		return l
	}
	l.Turns--
	return l
}

// Set tracks the active hand-level locks for one side.
type Set struct {
	locks map[Kind]Lock
}

// NewSet creates an empty lock set.
func NewSet() *Set {
	return &Set{locks: make(map[Kind]Lock)}
}

// Apply installs or extends a lock. A longer remaining duration always wins;
// a permanent lock can never be shortened.
func (s *Set) Apply(kind Kind, turns int) {
	if turns == 0 {
		return
	}
	current, ok := s.locks[kind]
	if ok && (current.Turns == Permanent || (turns != Permanent && current.Turns >= turns)) {
		return
	}
	s.locks[kind] = Lock{Turns: turns}
}

// Active reports whether a lock of the given kind is in force.
func (s *Set) Active(kind Kind) bool {
	return s.locks[kind].Active()
}

// Remaining returns the turns left on a lock (0 when inactive, Permanent when permanent).
func (s *Set) Remaining(kind Kind) int {
	return s.locks[kind].Turns
}

// Tick advances every lock by one owner turn, dropping expired entries.
func (s *Set) Tick() {
	for kind, lock := range s.locks {
		next := lock.Tick()
		if !next.Active() {
			delete(s.locks, kind)
			continue
		}
		s.locks[kind] = next
	}
}

// Clear removes a lock outright.
func (s *Set) Clear(kind Kind) {
	delete(s.locks, kind)
}

// Snapshot returns a copy of the active locks for views and checksums.
func (s *Set) Snapshot() map[Kind]int {
	out := make(map[Kind]int, len(s.locks))
	for kind, lock := range s.locks {
		if lock.Active() {
			out[kind] = lock.Turns
		}
	}
	return out
}
