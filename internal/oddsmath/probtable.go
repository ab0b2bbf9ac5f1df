package oddsmath

import "strings"

// Tabela de probabilidade de middle por família de mercado e gap entre as
// linhas. Heurística: os coeficientes são configuração, não código — o
// default replica os valores calibrados em produção.

type MarketFamily string

const (
	FamilyPlayerProp  MarketFamily = "player-prop"
	FamilyPointSpread MarketFamily = "point-spread"
	FamilyTotal       MarketFamily = "total"
	FamilyOther       MarketFamily = "other"
)

// GapBucket cobre gaps até MaxGap (inclusive). As listas devem estar em
// ordem crescente de MaxGap, com probabilidades monótonas decrescentes.
type GapBucket struct {
	MaxGap float64
	Prob   float64
}

type ProbTable struct {
	Buckets  map[MarketFamily][]GapBucket
	Fallback float64 // usada quando o gap excede todos os buckets
}

// DefaultProbTable retorna os coeficientes padrão.
func DefaultProbTable() ProbTable {
	return ProbTable{
		Buckets: map[MarketFamily][]GapBucket{
			FamilyPlayerProp: {
				{0.5, 0.25}, {1.0, 0.20}, {1.5, 0.15}, {2.0, 0.10},
			},
			FamilyPointSpread: {
				{1.0, 0.15}, {2.0, 0.10}, {3.0, 0.08},
			},
			FamilyTotal: {
				{2.0, 0.15}, {3.0, 0.12}, {5.0, 0.10},
			},
			FamilyOther: {
				{5.0, 0.10},
			},
		},
		Fallback: 0.05,
	}
}

// Estimate devolve a probabilidade de middle para o mercado e gap dados.
func (t ProbTable) Estimate(market string, gap float64) float64 {
	buckets, ok := t.Buckets[ClassifyMarket(market)]
	if !ok {
		buckets = t.Buckets[FamilyOther]
	}
	for _, b := range buckets {
		if gap <= b.MaxGap {
			return b.Prob
		}
	}
	return t.Fallback
}

// ClassifyMarket mapeia o nome livre do mercado para uma família.
func ClassifyMarket(market string) MarketFamily {
	m := strings.ToLower(market)
	switch {
	case strings.Contains(m, "player") || strings.Contains(m, "reception") ||
		strings.Contains(m, "rebound") || strings.Contains(m, "assist"):
		return FamilyPlayerProp
	case strings.Contains(m, "spread"):
		return FamilyPointSpread
	case strings.Contains(m, "total") || strings.Contains(m, "over") || strings.Contains(m, "under"):
		return FamilyTotal
	}
	return FamilyOther
}
