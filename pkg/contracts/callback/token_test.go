package callback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIBetRoundTrip(t *testing.T) {
	s := IBet("arbitrage", "3f2c", 750.50, 51.40)
	tok, err := Parse(s)
	require.NoError(t, err)

	assert.Equal(t, KindIBet, tok.Kind)
	assert.Equal(t, "arbitrage", tok.Class)
	assert.Equal(t, "3f2c", tok.ID)
	assert.Equal(t, 750.50, tok.Stake)
	assert.Equal(t, 51.40, tok.Profit)
}

// só respostas do questionário atravessam o gate; ibet/undo ficam retidos
func TestIsConfirmationFlowMembership(t *testing.T) {
	cases := map[string]bool{
		Outcome("arbitrage", "bet-1", "won"): true,
		MatchDay("bet-1", "yes"):             true,
		SetDate("bet-1", time.Time{}):        true,
		Noop():                               true,
		IBet("arbitrage", "al-1", 100, 5):    false,
		Undo("bet-1"):                        false,
	}
	for s, want := range cases {
		tok, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, want, tok.IsConfirmationFlow(), s)
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	tok, err := Parse(Outcome("middle", "bet-1", "jackpot"))
	require.NoError(t, err)
	assert.Equal(t, KindOutcome, tok.Kind)
	assert.Equal(t, "middle", tok.Class)
	assert.Equal(t, "bet-1", tok.ID)
	assert.Equal(t, "jackpot", tok.Answer)
}

func TestMatchDayRoundTrip(t *testing.T) {
	tok, err := Parse(MatchDay("bet-1", "idk"))
	require.NoError(t, err)
	assert.Equal(t, KindMatchDay, tok.Kind)
	assert.Equal(t, "idk", tok.Answer)
}

func TestSetDateRoundTrip(t *testing.T) {
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	tok, err := Parse(SetDate("bet-1", day))
	require.NoError(t, err)
	assert.Equal(t, day, tok.Date)

	tok, err = Parse(SetDate("bet-1", time.Time{}))
	require.NoError(t, err)
	assert.True(t, tok.Date.IsZero(), "unknown vira data zero")
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{
		"",
		"v1",
		"v1:ibet:arbitrage:id:notanumber:1.0",
		"v1:outcome:middle:bet-1",
		"v1:something:else",
	} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrBadToken, "token %q", s)
	}
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	_, err := Parse("v2:ibet:arbitrage:id:1.00:1.00")
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
