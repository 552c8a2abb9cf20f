package domain

import "time"

// Ticket is a transit booking owned by a user. Many tickets per user; no
// back-reference is kept on User.
type Ticket struct {
	ID         string
	Reference  string
	CustomerID string
	FromLoc    string
	ToLoc      string
	Persons    int
	Valid      bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
