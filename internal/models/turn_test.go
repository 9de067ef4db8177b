package models

import "testing"

func TestTurnValidate(t *testing.T) {
	tests := []struct {
		name    string
		turn    Turn
		wantErr bool
	}{
		{"user text", NewTurn(RoleUser, "How do I treat leaf curl?"), false},
		{"assistant text", NewTurn(RoleAssistant, "Use neem oil spray."), false},
		{"file reference", NewFileTurn(RoleUser, "img-123"), false},
		{"unknown role", Turn{Role: "system", Content: "hi"}, true},
		{"empty content", Turn{Role: RoleUser}, true},
		{"empty file id", Turn{Role: RoleUser, Content: "file:"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.turn.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTurnFileID(t *testing.T) {
	turn := NewFileTurn(RoleUser, "audio-42")
	id, ok := turn.FileID()
	if !ok || id != "audio-42" {
		t.Errorf("FileID() = %q, %v, want audio-42, true", id, ok)
	}

	text := NewTurn(RoleUser, "plain text")
	if _, ok := text.FileID(); ok {
		t.Error("text turn should not report a file reference")
	}
}
