package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/quizgrid/backend/internal/models"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.Role
	}{
		{"TEACHER", models.RoleTeacher},
		{"teacher", models.RoleTeacher},
		{"Student", models.RoleStudent},
		{"", models.RoleUser},
		{"admin", models.RoleUser},
	}
	for _, tt := range tests {
		if got := models.ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoleEqualsIsCaseInsensitive(t *testing.T) {
	if !models.RoleTeacher.Equals(models.Role("teacher")) {
		t.Fatal("expected TEACHER to equal teacher")
	}
	if models.RoleTeacher.Equals(models.RoleStudent) {
		t.Fatal("expected TEACHER not to equal STUDENT")
	}
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	u := models.User{ID: 1, Username: "alice", Password: "hash", Role: models.RoleTeacher}

	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(raw), "hash") {
		t.Fatalf("password leaked into JSON: %s", raw)
	}

	pub := u.ToPublic()
	raw, err = json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal public failed: %v", err)
	}
	if strings.Contains(string(raw), "hash") {
		t.Fatalf("password leaked into public JSON: %s", raw)
	}
}
