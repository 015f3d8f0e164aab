package models

import "time"

// Paper is a bibliography entry.
type Paper struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Authors   []string   `json:"authors"`
	Year      int        `json:"year"`
	Abstract  string     `json:"abstract,omitempty"`
	URL       string     `json:"url,omitempty"`
	IsRead    bool       `json:"isRead"`
	Notes     string     `json:"notes,omitempty"`
	Tags      []string   `json:"tags"`
	AddedBy   UserPublic `json:"addedBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type PaperPatch struct {
	Title    *string
	Authors  *[]string
	Year     *int
	Abstract *string
	URL      *string
	IsRead   *bool
	Notes    *string
	Tags     *[]string
}

// ListFilter narrows list queries. Zero value lists everything.
type ListFilter struct {
	Tag           string
	Query         string
	IncludeDrafts bool
}
