package alert

import (
	"fmt"
	"strings"
)

// Nomes canônicos de bookmakers e o mapa fixo de aliases (variações de
// grafia que os produtores mandam). Nome desconhecido rejeita o payload.

var canonical = map[string]string{
	"888sport":          "888sport",
	"bet365":            "bet365",
	"bet99":             "BET99",
	"betvictor":         "BetVictor",
	"bwin":              "bwin",
	"coolbet":           "Coolbet",
	"jackpotbet":        "Jackpot.bet",
	"miseojeu":          "Mise-o-jeu",
	"proline":           "Proline",
	"sportsinteraction": "Sports Interaction",
	"stake":             "Stake",
	"tonybet":           "TonyBet",
	"betsson":           "Betsson",
	"betway":            "Betway",
	"casumo":            "Casumo",
	"ibet":              "iBet",
	"leovegas":          "LeoVegas",
	"pinnacle":          "Pinnacle",
}

var aliases = map[string]string{
	"888":                "888sport",
	"888 sport":          "888sport",
	"365":                "bet365",
	"bet 365":            "bet365",
	"b365":               "bet365",
	"bet 99":             "bet99",
	"b99":                "bet99",
	"bet victor":         "betvictor",
	"b win":              "bwin",
	"cool bet":           "coolbet",
	"jackpot.bet":        "jackpotbet",
	"jackpot bet":        "jackpotbet",
	"mise-o-jeu":         "miseojeu",
	"mise o jeu":         "miseojeu",
	"sports interaction": "sportsinteraction",
	"sia":                "sportsinteraction",
	"leo vegas":          "leovegas",
	"tony bet":           "tonybet",
	"pin":                "pinnacle",
}

// Metadados de apresentação por bookmaker (emoji e deep-link).
type BookmakerInfo struct {
	Emoji string
	URL   string
}

var bookmakerInfo = map[string]BookmakerInfo{
	"888sport":           {"🏛️", "https://www.888sport.com"},
	"bet365":             {"📗", "https://www.bet365.com"},
	"BET99":              {"💯", "https://www.bet99.com"},
	"BetVictor":          {"🎯", "https://www.betvictor.com"},
	"bwin":               {"⚫", "https://www.bwin.com"},
	"Coolbet":            {"❄️", "https://www.coolbet.com"},
	"Jackpot.bet":        {"💎", "https://jackpot.bet"},
	"Mise-o-jeu":         {"🎟️", "https://miseojeu.lotoquebec.com"},
	"Proline":            {"✨", "https://www.proline.ca"},
	"Sports Interaction": {"🏒", "https://www.sportsinteraction.com"},
	"Stake":              {"🟣", "https://stake.com"},
	"TonyBet":            {"🏦", "https://www.tonybet.com"},
	"Betsson":            {"🔶", "https://www.betsson.com"},
	"Betway":             {"⚡", "https://www.betway.com"},
	"Casumo":             {"💜", "https://www.casumo.com"},
	"iBet":               {"🧱", "https://www.ibet.com"},
	"LeoVegas":           {"🦁", "https://www.leovegas.com"},
	"Pinnacle":           {"📈", "https://www.pinnacle.com"},
}

// LookupBookmaker devolve os metadados do nome canônico, com fallback
// genérico para não quebrar a renderização.
func LookupBookmaker(canonicalName string) BookmakerInfo {
	if info, ok := bookmakerInfo[canonicalName]; ok {
		return info
	}
	return BookmakerInfo{Emoji: "🎰"}
}

// NormalizeBookmaker resolve o nome recebido para a forma canônica.
func NormalizeBookmaker(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", fmt.Errorf("empty bookmaker name")
	}
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	if c, ok := canonical[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown bookmaker %q", name)
}
