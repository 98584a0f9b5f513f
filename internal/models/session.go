package models

import "time"

// BrowserSession identifies one browser holding a submission controller.
type BrowserSession struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// IsExpired reports whether the session has been idle longer than ttl.
func (s *BrowserSession) IsExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastActivity) > ttl
}

// UpdateActivity updates the last activity timestamp
func (s *BrowserSession) UpdateActivity() {
	s.LastActivity = time.Now()
}
