package puzzle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContribution(t *testing.T) {
	tests := []struct {
		name            string
		collected       int
		totalPieces     int
		creditsPerPiece int
		expected        int
	}{
		{"no pieces", 0, 35, 50, 0},
		{"single piece", 1, 35, 50, 50},
		{"partial collection", 10, 35, 50, 500},
		{"one short of complete", 34, 35, 50, 1700},
		{"complete set earns bonus", 35, 35, 50, 1750 + CompletionBonus},
		{"complete small set", 10, 10, 25, 250 + CompletionBonus},
		{"different credit value", 5, 35, 10, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Contribution(tt.collected, tt.totalPieces, tt.creditsPerPiece))
		})
	}
}

func TestContributionBonusOnlyAtExactCompletion(t *testing.T) {
	// The bonus flips on only at the full set, never before.
	for collected := 0; collected < DefaultTotalPieces; collected++ {
		got := Contribution(collected, DefaultTotalPieces, DefaultCreditsPerPiece)
		assert.Equal(t, collected*DefaultCreditsPerPiece, got, "collected=%d", collected)
	}

	full := Contribution(DefaultTotalPieces, DefaultTotalPieces, DefaultCreditsPerPiece)
	assert.Equal(t, DefaultTotalPieces*DefaultCreditsPerPiece+CompletionBonus, full)
}

func TestDay(t *testing.T) {
	ts := time.Date(2026, time.March, 7, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2026-03-07", Day(ts))

	// Day boundaries follow the calendar date, not a rolling 24h window.
	next := ts.Add(time.Second)
	assert.Equal(t, "2026-03-08", Day(next))
}
