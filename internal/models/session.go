package models

import "time"

// Session is one server-tracked authenticated device/browser instance.
// The client persists only its own session id; the full list is fetched
// on demand. Exactly one entry in a fetched list carries the locally
// held id.
type Session struct {
	ID         string    `json:"sessionId"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	LastSeenAt time.Time `json:"lastSeenAt"`

	// Current is derived locally, never sent by the backend.
	Current bool `json:"-"`
}

// Credentials are the two durable client-side entries. They are always
// written and cleared together: an absent token means logged out.
type Credentials struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}
