package types

import "time"

// LogEntry represents a request log entry queued for persistence.
type LogEntry struct {
	ID             uint
	Method         string
	URL            string
	ActorUID       string
	RequestBody    string
	ResponseBody   string
	StatusCode     int
	DurationMillis int64
	CreatedAt      time.Time
}
