package alert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/radieske/arb-alert-core/internal/oddsmath"
)

// Fingerprint estável de um alerta para dedup:
// hash(classe, event-id OU match+market normalizados, conjunto de outcomes
// com odds normalizadas, ordenado canonicamente). Dois alertas com o mesmo
// fingerprint dentro da janela de TTL são tratados como um só.

var spaceRe = regexp.MustCompile(`\s+`)

func normText(s string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Fingerprint calcula o hash canônico do alerta.
func Fingerprint(a *Alert) string {
	key := a.EventID
	if key == "" {
		key = normText(a.Match) + "|" + normText(a.Market)
	}

	outs := make([]string, 0, len(a.Outcomes)+2)
	for _, o := range a.Outcomes {
		outs = append(outs, fmt.Sprintf("%s|%s|%+d|%.2f",
			normText(o.Casino), normText(o.Selection), o.Odds, o.Stake))
	}
	// middles carregam os lados em vez de outcomes
	for _, s := range []*oddsmath.MiddleSide{a.SideA, a.SideB} {
		if s != nil {
			outs = append(outs, fmt.Sprintf("%s|%s|%.2f|%+d",
				normText(s.Bookmaker), normText(s.Selection), s.Line, s.Odds))
		}
	}
	sort.Strings(outs)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s", a.Class, key, strings.Join(outs, "\x00"))
	return hex.EncodeToString(h.Sum(nil))[:32]
}
