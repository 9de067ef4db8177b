package db

import (
	"context"
	"fmt"
	"time"

	"github.com/krishi-ai/krishi-go/internal/models"
)

// storedTurn is the chat_message row shape.
type storedTurn struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

func (s storedTurn) turn() models.Turn {
	return models.Turn{Role: s.Role, Content: s.Content, CreatedAt: s.CreatedAt}
}

// HistoryStore owns the durable per-user ordered log of chat turns.
type HistoryStore struct {
	c *Client
}

// NewHistoryStore creates a history store over an existing client.
func NewHistoryStore(c *Client) *HistoryStore {
	return &HistoryStore{c: c}
}

// Append persists one or more turns for a user, preserving their relative
// order. Timestamps are assigned here, strictly non-decreasing within the
// batch, so a user turn and its assistant reply commit as one unit with
// their ordering intact.
func (h *HistoryStore) Append(ctx context.Context, userID string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]storedTurn, len(turns))
	for i, t := range turns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("append turn %d: %w", i, err)
		}
		rows[i] = storedTurn{
			UserID:    userID,
			Role:      t.Role,
			Content:   t.Content,
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
	}

	// A single INSERT statement commits the whole batch atomically.
	_, err := queryTimed[any](ctx, h.c, `
		INSERT INTO chat_message $rows
	`, map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("append history: %w", wrapQueryError(err))
	}
	return nil
}

// Recent returns the most recent limit turns for a user in chronological
// order, oldest first, so consumers can replay them as a conversation.
func (h *HistoryStore) Recent(ctx context.Context, userID string, limit int) ([]models.Turn, error) {
	results, err := queryTimed[[]storedTurn](ctx, h.c, `
		SELECT user_id, role, content, created_at FROM chat_message
		WHERE user_id = $user
		ORDER BY created_at DESC
		LIMIT $limit
	`, map[string]any{"user": userID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Turn{}, nil
	}
	rows := (*results)[0].Result

	// Query is newest-first; flip to oldest-first.
	turns := make([]models.Turn, len(rows))
	for i, r := range rows {
		turns[len(rows)-1-i] = r.turn()
	}
	return turns, nil
}

// All returns the full turn history for a user, oldest first.
func (h *HistoryStore) All(ctx context.Context, userID string) ([]models.Turn, error) {
	results, err := queryTimed[[]storedTurn](ctx, h.c, `
		SELECT user_id, role, content, created_at FROM chat_message
		WHERE user_id = $user
		ORDER BY created_at ASC
	`, map[string]any{"user": userID})
	if err != nil {
		return nil, fmt.Errorf("all history: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Turn{}, nil
	}
	rows := (*results)[0].Result

	turns := make([]models.Turn, len(rows))
	for i, r := range rows {
		turns[i] = r.turn()
	}
	return turns, nil
}

// Clear drops all turns for a user. Clearing an empty or absent session
// is not an error.
func (h *HistoryStore) Clear(ctx context.Context, userID string) error {
	_, err := queryTimed[any](ctx, h.c, `
		DELETE chat_message WHERE user_id = $user
	`, map[string]any{"user": userID})
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
