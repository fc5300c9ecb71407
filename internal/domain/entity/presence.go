package entity

import "time"

// Presence is the ephemeral per-swap, per-user "currently viewing" record.
// It only suppresses unread-counter churn and is never authoritative.
type Presence struct {
	UID        string    `json:"uid" firestore:"uid"`
	Active     bool      `json:"active" firestore:"active"`
	LastActive time.Time `json:"last_active" firestore:"lastActive"`
}

// ActiveWithin reports whether the record counts as live at the given instant.
func (p *Presence) ActiveWithin(window time.Duration, now time.Time) bool {
	return p.Active && now.Sub(p.LastActive) <= window
}
