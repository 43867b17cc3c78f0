package models

import "time"

// User represents one chat user of the bot. The Telegram user identifier is
// the stable join key for every other entity; it is never regenerated and is
// only removed on an explicit account reset.
type User struct {
	// UserID is the Telegram user identifier.
	// It is the primary key in the persistence layer.
	UserID int64 `json:"user_id"`

	// Username is the optional Telegram @username of the user.
	Username string `json:"username,omitempty"`

	// FirstName is the display first name reported by Telegram.
	FirstName string `json:"first_name,omitempty"`

	// LastName is the display last name reported by Telegram.
	LastName string `json:"last_name,omitempty"`

	// CreatedAt is the timestamp of first contact with the bot.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last profile refresh.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// SheetRef associates a user with the spreadsheet that receives their
// finalized transactions. A user has at most one active sheet at a time.
type SheetRef struct {
	// UserID is the owning Telegram user identifier.
	UserID int64 `json:"user_id"`

	// SpreadsheetID is the provider-side identifier of the spreadsheet.
	SpreadsheetID string `json:"spreadsheet_id"`

	// Title is the human-readable spreadsheet title captured at selection
	// time. Display only; the provider remains the source of truth.
	Title string `json:"title,omitempty"`

	// UpdatedAt is the timestamp of the last selection change.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the SheetRef model.
func (s SheetRef) TableName() string {
	return "user_sheets"
}
