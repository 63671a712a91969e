package articles

import "time"

// Article is a news article in one language. The author never changes
// after creation; ownership drives the mutation policy.
type Article struct {
	ID          int64
	Title       string
	Body        string
	Language    string
	CategoryID  int64
	NewspaperID int64
	AuthorID    int64
	Published   bool
	Views       int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter narrows article listings.
type ListFilter struct {
	Language   string
	CategoryID int64
	OnlyLive   bool
}
