package models

import "time"

// Log levels.
const (
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
)

// Log is an append-only record of an error response.
type Log struct {
	ID        string
	Level     string
	Message   string
	Stack     string
	Meta      LogMeta
	CreatedAt time.Time
}

// LogMeta describes the request that produced a Log.
type LogMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Endpoint  string    `json:"endpoint"`
	Method    string    `json:"method"`
	IP        string    `json:"ip"`
	UserID    string    `json:"userId"`
}
