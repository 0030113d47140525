package domain

import "time"

// User represents an application user stored in the database.
type User struct {
	ID           int64
	TelegramID   int64
	FirstName    string
	Username     string
	Language     string
	Notify       bool
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// UserSettings holds per-user preferences surfaced through /settings.
type UserSettings struct {
	Language string
	Notify   bool
}
