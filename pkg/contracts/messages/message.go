package messages

// Descritor de mensagem agnóstico de transporte. O bridge de chat é quem
// transforma isso em markup/teclado da plataforma.
type Message struct {
	Headline string   `json:"headline"`
	Lines    []Line   `json:"lines"`
	Footer   string   `json:"footer,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}

type Line struct {
	Icon  string `json:"icon,omitempty"`
	Label string `json:"label"`
	Value string `json:"value"`
}

const (
	ActionLink     = "link"
	ActionCallback = "callback"
)

// Action é um botão: deep-link para o bookmaker ou callback devolvido
// pelo transporte quando o usuário clica.
type Action struct {
	Kind  string `json:"kind"` // "link" | "callback"
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
	Token string `json:"token,omitempty"`
}
