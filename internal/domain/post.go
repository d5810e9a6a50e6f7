package domain

import (
	"time"
)

// DateLayout is the wire format for diary dates.
const DateLayout = "2006-01-02"

// Post is a single diary entry. Each author can have at most one post per
// calendar date.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
