package newspapers

import "time"

// Newspaper is a publication edition the CMS serves articles for.
type Newspaper struct {
	ID          int64
	Title       string
	Language    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
