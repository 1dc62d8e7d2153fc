package models

import "time"

// The content models below back the articles/categories/comments tables.
// The schema ships with the service but no handlers operate on it yet.

type Article struct {
	ID          int64
	Title       string
	Body        string
	Image       []byte
	CategoryID  *int64
	AuthorID    *int64
	PublishedAt *time.Time
	CreatedAt   time.Time
}

type Category struct {
	ID   int64
	Name string
}

type Comment struct {
	ID        int64
	ArticleID int64
	UserID    *int64
	Body      string
	CreatedAt time.Time
}
