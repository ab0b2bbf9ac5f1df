package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tokens de callback trocados com o transporte de chat. Curtos, URL-safe,
// com prefixo de versão; parsers rejeitam versões desconhecidas.
//
// Formato: v1:<kind>:<campos...>, ex:
//
//	v1:ibet:arbitrage:3f2c...:750.00:51.40
//	v1:outcome:middle:26e1...:jackpot
//	v1:matchday:26e1...:no
//	v1:setdate:26e1...:2025-11-03

const Version = "v1"

const sep = ":"

type Kind string

const (
	KindIBet     Kind = "ibet"     // clique "I BET" num alerta
	KindUndo     Kind = "undo"     // "Oops, mistake" logo após o clique
	KindOutcome  Kind = "outcome"  // resposta do questionário de resultado
	KindMatchDay Kind = "matchday" // "o match já aconteceu?" yes/no/idk
	KindSetDate  Kind = "setdate"  // adiamento: data futura ou "unknown"
	KindNoop     Kind = "noop"
)

var (
	ErrBadToken       = errors.New("malformed callback token")
	ErrUnknownVersion = errors.New("unknown callback token version")
)

// Token é a variante decodificada de um callback.
type Token struct {
	Kind  Kind
	Class string // arbitrage | middle | good_ev (ibet, outcome)
	ID    string // alert id (ibet) ou bet id (demais)

	Stake  float64 // ibet
	Profit float64 // ibet

	Answer string    // outcome: won/lost/push/jackpot/arb; matchday: yes/no/idk
	Date   time.Time // setdate (zero => unknown)
}

func IBet(class, alertID string, stake, profit float64) string {
	return strings.Join([]string{Version, string(KindIBet), class, alertID,
		fmt.Sprintf("%.2f", stake), fmt.Sprintf("%.2f", profit)}, sep)
}

func Undo(betID string) string {
	return strings.Join([]string{Version, string(KindUndo), betID}, sep)
}

func Outcome(class, betID, answer string) string {
	return strings.Join([]string{Version, string(KindOutcome), class, betID, answer}, sep)
}

func MatchDay(betID, answer string) string {
	return strings.Join([]string{Version, string(KindMatchDay), betID, answer}, sep)
}

// SetDate gera o token de adiamento; dia zero representa "não sei".
func SetDate(betID string, day time.Time) string {
	d := "unknown"
	if !day.IsZero() {
		d = day.Format("2006-01-02")
	}
	return strings.Join([]string{Version, string(KindSetDate), betID, d}, sep)
}

func Noop() string {
	return Version + sep + string(KindNoop)
}

// Parse decodifica um token. Versões desconhecidas e formatos inválidos
// retornam erro; o handler responde com toast benigno sem mudar estado.
func Parse(s string) (Token, error) {
	parts := strings.Split(s, sep)
	if len(parts) < 2 {
		return Token{}, ErrBadToken
	}
	if parts[0] != Version {
		return Token{}, ErrUnknownVersion
	}

	switch Kind(parts[1]) {
	case KindIBet:
		if len(parts) != 6 {
			return Token{}, ErrBadToken
		}
		stake, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			return Token{}, ErrBadToken
		}
		profit, err := strconv.ParseFloat(parts[5], 64)
		if err != nil {
			return Token{}, ErrBadToken
		}
		return Token{Kind: KindIBet, Class: parts[2], ID: parts[3], Stake: stake, Profit: profit}, nil

	case KindUndo:
		if len(parts) != 3 {
			return Token{}, ErrBadToken
		}
		return Token{Kind: KindUndo, ID: parts[2]}, nil

	case KindOutcome:
		if len(parts) != 5 {
			return Token{}, ErrBadToken
		}
		return Token{Kind: KindOutcome, Class: parts[2], ID: parts[3], Answer: parts[4]}, nil

	case KindMatchDay:
		if len(parts) != 4 {
			return Token{}, ErrBadToken
		}
		return Token{Kind: KindMatchDay, ID: parts[2], Answer: parts[3]}, nil

	case KindSetDate:
		if len(parts) != 4 {
			return Token{}, ErrBadToken
		}
		t := Token{Kind: KindSetDate, ID: parts[2]}
		if parts[3] != "unknown" {
			day, err := time.Parse("2006-01-02", parts[3])
			if err != nil {
				return Token{}, ErrBadToken
			}
			t.Date = day
		}
		return t, nil

	case KindNoop:
		return Token{Kind: KindNoop}, nil
	}

	return Token{}, ErrBadToken
}

// IsConfirmationFlow diz se o token pertence ao fluxo de confirmação e deve
// atravessar o gate mesmo com confirmações pendentes. Registrar aposta nova
// (ibet/undo) NÃO passa: o usuário precisa responder o pendente primeiro.
func (t Token) IsConfirmationFlow() bool {
	switch t.Kind {
	case KindOutcome, KindMatchDay, KindSetDate, KindNoop:
		return true
	}
	return false
}
