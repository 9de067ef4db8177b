package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Post is a social-feed entry created by a farmer.
type Post struct {
	ID          surrealmodels.RecordID `json:"id"`
	PostID      string                 `json:"post_id"`
	UserID      string                 `json:"user_id"`
	ContentURL  string                 `json:"content_url"`
	ContentDesc string                 `json:"content_desc"`
	Likes       int                    `json:"likes"`
	Reports     int                    `json:"reports"`
	Created     time.Time              `json:"created_at"`
}

// Comment is a reply to a post.
type Comment struct {
	ID        surrealmodels.RecordID `json:"id"`
	CommentID string                 `json:"comment_id"`
	PostID    string                 `json:"post_id"`
	UserID    string                 `json:"user_id"`
	Content   string                 `json:"content"`
	Created   time.Time              `json:"created_at"`
}
