// Package models defines data structures for the Krishi advisory backend.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FileRefPrefix marks turn content that references an externally stored
// binary instead of literal text.
const FileRefPrefix = "file:"

// Turn is one exchange unit in a conversation. Content is either literal
// text or a "file:<id>" reference to a blob; never raw bytes. CreatedAt is
// assigned by the history store, not the caller.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn builds an unvalidated turn with literal text content.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}

// NewFileTurn builds a turn whose content references a stored binary.
func NewFileTurn(role Role, fileID string) Turn {
	return Turn{Role: role, Content: FileRef(fileID)}
}

// FileRef builds a file reference token for a blob ID.
func FileRef(id string) string {
	return FileRefPrefix + id
}

// FileID returns the referenced blob ID and true if the turn content is a
// file reference.
func (t Turn) FileID() (string, bool) {
	if strings.HasPrefix(t.Content, FileRefPrefix) {
		return strings.TrimPrefix(t.Content, FileRefPrefix), true
	}
	return "", false
}

// Validate checks the turn at the boundary before it enters the pipeline.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("invalid turn role: %q", t.Role)
	}
	if t.Content == "" {
		return fmt.Errorf("empty turn content")
	}
	if id, ok := t.FileID(); ok && id == "" {
		return fmt.Errorf("file reference without an id")
	}
	return nil
}
