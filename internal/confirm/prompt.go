package confirm

import (
	"fmt"
	"time"

	"github.com/radieske/arb-alert-core/internal/alert"
	"github.com/radieske/arb-alert-core/internal/ledger"
	"github.com/radieske/arb-alert-core/pkg/contracts/callback"
	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// Renderização do questionário de confirmação. Uma pergunta por mensagem;
// o transporte devolve a resposta como callback token.

func matchDayPrompt(b *ledger.UserBet) messages.Message {
	return messages.Message{
		Headline: "📋 Bet check",
		Lines: []messages.Line{
			{Icon: "⚽", Label: "Match", Value: b.MatchName},
			{Icon: "🏆", Label: "League", Value: b.League},
			{Icon: "💵", Label: "Stake", Value: money(b.TotalStake)},
			{Icon: "📅", Label: "Placed", Value: b.BetDate.Format("Jan 2")},
		},
		Footer: "Has this match already been played?",
		Actions: []messages.Action{
			{Kind: messages.ActionCallback, Label: "✅ Yes", Token: callback.MatchDay(b.ID, "yes")},
			{Kind: messages.ActionCallback, Label: "❌ No", Token: callback.MatchDay(b.ID, "no")},
			{Kind: messages.ActionCallback, Label: "🤷 Not sure", Token: callback.MatchDay(b.ID, "idk")},
		},
	}
}

// setDatePrompt oferece os próximos cinco dias como nova match date.
func setDatePrompt(b *ledger.UserBet, today time.Time) messages.Message {
	actions := make([]messages.Action, 0, 6)
	for i := 1; i <= 5; i++ {
		day := today.AddDate(0, 0, i)
		actions = append(actions, messages.Action{
			Kind:  messages.ActionCallback,
			Label: day.Format("Mon Jan 2"),
			Token: callback.SetDate(b.ID, day),
		})
	}
	actions = append(actions, messages.Action{
		Kind:  messages.ActionCallback,
		Label: "🤷 I don't know",
		Token: callback.SetDate(b.ID, time.Time{}),
	})
	return messages.Message{
		Headline: "📅 When does it play?",
		Lines: []messages.Line{
			{Icon: "⚽", Label: "Match", Value: b.MatchName},
		},
		Footer:  "I'll ask again the day after.",
		Actions: actions,
	}
}

func outcomePrompt(b *ledger.UserBet) messages.Message {
	m := messages.Message{
		Headline: "🎯 How did it go?",
		Lines: []messages.Line{
			{Icon: "⚽", Label: "Match", Value: b.MatchName},
			{Icon: "💵", Label: "Stake", Value: money(b.TotalStake)},
			{Icon: "📈", Label: "Expected", Value: money(b.ExpectedProfit)},
		},
	}
	cls := string(b.Class)
	switch b.Class {
	case alert.ClassArbitrage:
		m.Actions = []messages.Action{
			{Kind: messages.ActionCallback, Label: "✅ All good", Token: callback.Outcome(cls, b.ID, AnswerWon)},
			{Kind: messages.ActionCallback, Label: "⚠️ Had a problem", Token: callback.Outcome(cls, b.ID, AnswerProblem)},
		}
	case alert.ClassMiddle:
		m.Actions = []messages.Action{
			{Kind: messages.ActionCallback, Label: "🎰 Jackpot (middle hit)", Token: callback.Outcome(cls, b.ID, AnswerJackpot)},
			{Kind: messages.ActionCallback, Label: "✅ One side won", Token: callback.Outcome(cls, b.ID, AnswerArb)},
			{Kind: messages.ActionCallback, Label: "❌ Lost", Token: callback.Outcome(cls, b.ID, AnswerLost)},
		}
	case alert.ClassGoodEV:
		m.Actions = []messages.Action{
			{Kind: messages.ActionCallback, Label: "✅ Won", Token: callback.Outcome(cls, b.ID, AnswerWon)},
			{Kind: messages.ActionCallback, Label: "➖ Push", Token: callback.Outcome(cls, b.ID, AnswerPush)},
			{Kind: messages.ActionCallback, Label: "❌ Lost", Token: callback.Outcome(cls, b.ID, AnswerLost)},
		}
	}
	return m
}

func resolvedAck(b *ledger.UserBet, res Resolution) messages.Message {
	icon := "✅"
	if res.Profit < 0 {
		icon = "❌"
	}
	return messages.Message{
		Headline: icon + " Recorded",
		Lines: []messages.Line{
			{Icon: "⚽", Label: "Match", Value: b.MatchName},
			{Icon: "💰", Label: "Result", Value: money(res.Profit)},
		},
	}
}

func dayClosedAck(stats *ledger.DailyStats) messages.Message {
	icon := "📊"
	if stats.TotalProfit >= 0 {
		icon = "🏆"
	}
	return messages.Message{
		Headline: icon + " Day closed: " + stats.Date.Format("Jan 2"),
		Lines: []messages.Line{
			{Icon: "🎫", Label: "Bets", Value: fmt.Sprintf("%d", stats.TotalBets)},
			{Icon: "💵", Label: "Staked", Value: money(stats.TotalStaked)},
			{Icon: "💰", Label: "P/L", Value: money(stats.TotalProfit)},
		},
	}
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}
