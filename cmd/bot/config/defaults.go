package config

// Default values for optional bot settings.
const (
	DefaultDatabasePath       = "data/scam_reports.db"
	DefaultBroadcastDelayMS   = 50
	DefaultHTTPTimeoutSeconds = 30

	DefaultCollageCellSize = 800
	DefaultCollageBorder   = 4
)
