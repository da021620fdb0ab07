package content

import "time"

// Tour is the editorial description of a bookable tour, maintained through
// the admin console and rendered on the marketing site.
type Tour struct {
	UID             string     `json:"uid"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	Body            string     `json:"body" datastore:",noindex"`
	DurationMinutes int        `json:"durationMinutes"`
	MeetingPoint    string     `json:"meetingPoint"`
	Published       bool       `json:"published"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastModified    *time.Time `json:"lastModified,omitempty"`
}

type BlogPost struct {
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	Body         string     `json:"body" datastore:",noindex"`
	Published    bool       `json:"published"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}
