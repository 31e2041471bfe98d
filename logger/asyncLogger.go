package logger

import (
	"log"

	log_model "cargo-portal/models/log"
	"cargo-portal/types"

	"gorm.io/gorm"
)

type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100), // Buffered channel to hold log entries
	}
}

func (logger *AsyncLogger) ProcessLog() {
	log.Println("Starting asynchronous logger...")

	for logEntry := range logger.channel {
		dbLog := log_model.Log{
			Method:         logEntry.Method,
			URL:            logEntry.URL,
			ActorUID:       logEntry.ActorUID,
			RequestBody:    logEntry.RequestBody,
			ResponseBody:   logEntry.ResponseBody,
			StatusCode:     logEntry.StatusCode,
			DurationMillis: logEntry.DurationMillis,
			CreatedAt:      logEntry.CreatedAt,
		}

		if err := logger.db.Create(&dbLog).Error; err != nil {
			log.Printf("Failed to insert new log entry: %v", err)
		}
	}
}

// Log pushes a log entry into the channel without blocking the request path.
func (logger *AsyncLogger) Log(entry types.LogEntry) {
	select {
	case logger.channel <- entry:
	default:
		log.Printf("Log channel full, dropping entry for %s %s", entry.Method, entry.URL)
	}
}
