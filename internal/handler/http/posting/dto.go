// Package posting provides HTTP handlers for browsing stored job postings
// and their aggregate statistics.
package posting

import "time"

type DTO struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	URL        string    `json:"url"`
	DatePosted time.Time `json:"date_posted"`
	RoleType   string    `json:"role_type"`
	Source     string    `json:"source"`
	Posted     bool      `json:"posted"`
	CreatedAt  time.Time `json:"created_at"`
}
