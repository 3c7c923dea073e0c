package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestEmbeddingIDFor(t *testing.T) {
	id1 := EmbeddingIDFor(SourceTypeMessage, 42, "hello")
	id2 := EmbeddingIDFor(SourceTypeMessage, 42, "hello")
	if id1 != id2 {
		t.Errorf("EmbeddingIDFor() not deterministic: %d vs %d", id1, id2)
	}

	if EmbeddingIDFor(SourceTypeMessage, 42, "hello") == EmbeddingIDFor(SourceTypeMessage, 43, "hello") {
		t.Error("EmbeddingIDFor() produced same ID for different sources")
	}
	if EmbeddingIDFor(SourceTypeMessage, 42, "hello") == EmbeddingIDFor(SourceTypeMessage, 42, "world") {
		t.Error("EmbeddingIDFor() produced same ID for different content")
	}
}

func TestRole_String(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "user"},
		{RoleAssistant, "assistant"},
		{RoleSystem, "system"},
		{RoleTool, "tool"},
	}
	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleAssistant, RoleSystem, RoleTool} {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q) failed: %v", role.String(), err)
		}
		if parsed != role {
			t.Errorf("ParseRole(%q) = %d, want %d", role.String(), parsed, role)
		}
	}

	if _, err := ParseRole("wizard"); err == nil {
		t.Error("ParseRole accepted unknown role")
	}
}

func TestRecord_Linked(t *testing.T) {
	record := &Record{}
	if record.Linked() {
		t.Error("fresh record reports linked")
	}
	record.EmbeddingId = IDFromContent("some embedding")
	if !record.Linked() {
		t.Error("record with embedding id reports not linked")
	}
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"x", false},
		{"  x  ", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.text); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
