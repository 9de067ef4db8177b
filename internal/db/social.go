package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/krishi-ai/krishi-go/internal/models"
)

// CreatePost inserts a social-feed post.
func (c *Client) CreatePost(ctx context.Context, userID, contentURL, contentDesc string) (*models.Post, error) {
	results, err := queryTimed[[]models.Post](ctx, c, `
		CREATE post CONTENT {
			post_id: $post_id,
			user_id: $user_id,
			content_url: $content_url,
			content_desc: $content_desc
		}
	`, map[string]any{
		"post_id":      uuid.NewString(),
		"user_id":      userID,
		"content_url":  contentURL,
		"content_desc": contentDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", wrapQueryError(err))
	}
	return firstRow(results)
}

// DeletePost removes a post if the caller owns it. Returns ErrNotFound
// for an unknown post and ErrNotOwner for someone else's.
func (c *Client) DeletePost(ctx context.Context, postID, userID string) error {
	results, err := queryTimed[[]models.Post](ctx, c, `
		SELECT * FROM post WHERE post_id = $post_id
	`, map[string]any{"post_id": postID})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	post, err := firstRow(results)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotOwner
	}

	_, err = queryTimed[any](ctx, c, `
		DELETE comment WHERE post_id = $post_id;
		DELETE post WHERE post_id = $post_id;
	`, map[string]any{"post_id": postID})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Feed lists posts newest first.
func (c *Client) Feed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	results, err := queryTimed[[]models.Post](ctx, c, `
		SELECT * FROM post ORDER BY created_at DESC LIMIT $limit START $offset
	`, map[string]any{"limit": limit, "offset": offset})
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return allRows(results), nil
}

// LikePost increments a post's like counter.
func (c *Client) LikePost(ctx context.Context, postID string) error {
	return c.adjustLikes(ctx, postID, "+=")
}

// DislikePost decrements a post's like counter.
func (c *Client) DislikePost(ctx context.Context, postID string) error {
	return c.adjustLikes(ctx, postID, "-=")
}

func (c *Client) adjustLikes(ctx context.Context, postID, op string) error {
	sql := fmt.Sprintf(`UPDATE post SET likes %s 1 WHERE post_id = $post_id`, op)
	results, err := queryTimed[[]models.Post](ctx, c, sql, map[string]any{"post_id": postID})
	if err != nil {
		return fmt.Errorf("update likes: %w", err)
	}
	if _, err := firstRow(results); err != nil {
		return err
	}
	return nil
}

// CreateComment inserts a comment, verifying the post exists first.
func (c *Client) CreateComment(ctx context.Context, postID, userID, content string) (*models.Comment, error) {
	posts, err := queryTimed[[]models.Post](ctx, c, `
		SELECT * FROM post WHERE post_id = $post_id
	`, map[string]any{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if _, err := firstRow(posts); err != nil {
		return nil, err
	}

	results, err := queryTimed[[]models.Comment](ctx, c, `
		CREATE comment CONTENT {
			comment_id: $comment_id,
			post_id: $post_id,
			user_id: $user_id,
			content: $content
		}
	`, map[string]any{
		"comment_id": uuid.NewString(),
		"post_id":    postID,
		"user_id":    userID,
		"content":    content,
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", wrapQueryError(err))
	}
	return firstRow(results)
}

// DeleteComment removes a comment if the caller owns it.
func (c *Client) DeleteComment(ctx context.Context, commentID, userID string) error {
	results, err := queryTimed[[]models.Comment](ctx, c, `
		SELECT * FROM comment WHERE comment_id = $comment_id
	`, map[string]any{"comment_id": commentID})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	comment, err := firstRow(results)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}

	_, err = queryTimed[any](ctx, c, `
		DELETE comment WHERE comment_id = $comment_id
	`, map[string]any{"comment_id": commentID})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// CommentsForPost lists comments on a post, oldest first.
func (c *Client) CommentsForPost(ctx context.Context, postID string, limit, offset int) ([]models.Comment, error) {
	results, err := queryTimed[[]models.Comment](ctx, c, `
		SELECT * FROM comment WHERE post_id = $post_id
		ORDER BY created_at ASC LIMIT $limit START $offset
	`, map[string]any{"post_id": postID, "limit": limit, "offset": offset})
	if err != nil {
		return nil, fmt.Errorf("comments for post: %w", err)
	}
	return allRows(results), nil
}
