package domain

import "time"

// Post is owned by exactly one user, referenced by username. Posts are
// immutable after creation and never deleted.
type Post struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
}
