package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"open to locked", StatusOpen, StatusLocked, true},
		{"locked to open", StatusLocked, StatusOpen, true},
		{"locked to posted", StatusLocked, StatusPosted, true},
		{"posted to locked via reversal", StatusPosted, StatusLocked, true},
		{"open to posted skips lock", StatusOpen, StatusPosted, false},
		{"posted to open skips lock", StatusPosted, StatusOpen, false},
		{"open to open", StatusOpen, StatusOpen, false},
		{"locked to locked", StatusLocked, StatusLocked, false},
		{"posted to posted", StatusPosted, StatusPosted, false},
		{"unknown status", Status("DRAFT"), StatusLocked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestReversedPeriodCanBeCorrectedAndReposted(t *testing.T) {
	// A posted period that was reversed lands on LOCKED. From there both
	// reopening for corrections and posting again must be legal.
	assert.True(t, CanTransition(StatusPosted, StatusLocked))
	assert.True(t, CanTransition(StatusLocked, StatusOpen))
	assert.True(t, CanTransition(StatusLocked, StatusPosted))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusOpen.Valid())
	assert.True(t, StatusLocked.Valid())
	assert.True(t, StatusPosted.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("ARCHIVED").Valid())
}
