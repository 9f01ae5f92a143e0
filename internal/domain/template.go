package domain

import "time"

// Template is a stored prompt override. File-scoped templates shadow the
// global one with the same Type and Role.
type Template struct {
	ID        int64     `json:"id"`
	Scope     string    `json:"scope"`
	RefID     *int64    `json:"ref_id,omitempty"`
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}
