package events

// PredictionRecorded é publicado depois que uma entrada entra no histórico
type PredictionRecorded struct {
	EventID    string `json:"event_id"`
	EntryID    int64  `json:"entry_id"` // id da entrada de histórico (unix ms)
	League     string `json:"league"`
	MatchDate  string `json:"match_date"`
	Teams      string `json:"teams"`       // "Casa vs Fora"
	HalfTime   string `json:"half_time"`   // placar do primeiro tempo informado
	Prediction string `json:"prediction"`  // texto retornado pelo modelo (markdown)
	RecordedAt string `json:"recorded_at"` // ISO-8601
	TsUnixMs   int64  `json:"ts_unix_ms"`
}
