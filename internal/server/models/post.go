package models

import "time"

type Post struct {
	ID        string      `json:"_id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	AuthorID  string      `json:"-"`
	Author    *PostAuthor `json:"author"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PostAuthor is the author projection embedded in posts.
type PostAuthor struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

type PostPatch struct {
	Title   *string
	Content *string
}
