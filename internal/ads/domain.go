package ads

import "time"

// Ad is an advertisement placement with a delivery window. An ad only
// serves while Active is true and the window contains now.
type Ad struct {
	ID        int64
	Title     string
	ImageURL  string
	TargetURL string
	StartsAt  time.Time
	EndsAt    time.Time
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Live reports whether the ad should currently be served.
func (a *Ad) Live(now time.Time) bool {
	return a.Active && !now.Before(a.StartsAt) && now.Before(a.EndsAt)
}
