package botport

import (
	"context"
	"errors"

	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// Porta de saída para o transporte de chat. O core não conhece a
// plataforma; só entrega descritores de mensagem e recebe eventos crus.

var (
	// ErrUserBlocked: o usuário bloqueou o bot; o chamador desativa o envio.
	ErrUserBlocked = errors.New("usuário bloqueou o transporte")
	// ErrRateLimited: o transporte pediu para segurar; retry com backoff.
	ErrRateLimited = errors.New("transporte aplicou rate limit")
)

type Sender interface {
	Send(ctx context.Context, userID string, m messages.Message) error
}

type EventType string

const (
	EventCallback EventType = "callback"
	EventText     EventType = "text"
	EventCommand  EventType = "command"
)

// InboundEvent é uma interação do usuário repassada pelo bridge.
type InboundEvent struct {
	UserID  string    `json:"user_id"`
	Type    EventType `json:"type"`
	Payload string    `json:"payload"` // token de callback, texto ou comando
}
