package models

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post is a blog-style log entry. Anonymous readers only list published posts.
type Post struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Caption   string     `json:"caption,omitempty"`
	Content   string     `json:"content"`
	Author    UserPublic `json:"author"`
	Tags      []string   `json:"tags"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PostPatch carries the fields of a partial update; nil means unchanged.
type PostPatch struct {
	Title   *string
	Caption *string
	Content *string
	Tags    *[]string
	Status  *string
}
