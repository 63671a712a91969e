package categories

import "time"

// Category groups articles by topic.
type Category struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
