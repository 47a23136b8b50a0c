package topics

const (
	// Predictions
	PredictionRecorded = "prediction_recorded"

	// DLQs
	PredictionRecordedDLQ = "prediction_recorded_dlq"

	// Redis Pub/Sub do feed ao vivo do histórico
	PredictionHistoryChannel = "prediction_history_broadcast"
)
