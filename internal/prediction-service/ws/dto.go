package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Teams: "Casa vs Fora" para um confronto, ou "*" (padrão) para todas as previsões
type ClientMsg struct {
	Type  string `json:"type"`
	Teams string `json:"teams,omitempty"`
}

// AllTeams assina todas as previsões gravadas
const AllTeams = "*"
