package period

import "time"

// Status enum for the payroll period lifecycle
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusLocked Status = "LOCKED"
	StatusPosted Status = "POSTED"
)

// transitions is the single authority for lifecycle legality. Every status
// change in the service layer must pass through CanTransition.
var transitions = map[Status][]Status{
	StatusOpen:   {StatusLocked},
	StatusLocked: {StatusOpen, StatusPosted},
	// Reversal returns a posted period to LOCKED so it can be unlocked or
	// re-posted afterwards.
	StatusPosted: {StatusLocked},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusLocked, StatusPosted:
		return true
	}
	return false
}

// Period - payroll period, mutated only through the state machine
type Period struct {
	ID        string
	Ref       string
	Month     int
	Year      int
	Status    Status
	LockedAt  *time.Time
	PostedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
