package gateway_test

import (
	"testing"

	"github.com/quizgrid/backend/internal/gateway"
	"github.com/quizgrid/backend/internal/models"
)

func TestDefaultPolicyOpenPaths(t *testing.T) {
	policy := gateway.DefaultPolicy()

	tests := []struct {
		path string
		open bool
	}{
		{"/auth/register", true},
		{"/auth/login", true},
		{"/auth/validate", true},
		{"/health", true},
		{"/auth/role", false},
		{"/question/allQuestions", false},
		{"/quiz/create", false},
		{"/quiz/get/1", false},
	}
	for _, tt := range tests {
		if got := policy.IsOpen(tt.path); got != tt.open {
			t.Errorf("IsOpen(%q) = %v, want %v", tt.path, got, tt.open)
		}
	}
}

func TestDefaultPolicyRoleRules(t *testing.T) {
	policy := gateway.DefaultPolicy()

	tests := []struct {
		path string
		want []models.Role
	}{
		{"/question/add", []models.Role{models.RoleTeacher}},
		{"/question/allQuestions", []models.Role{models.RoleTeacher}},
		{"/quiz/create", []models.Role{models.RoleTeacher}},
		{"/quiz/teacher", []models.Role{models.RoleTeacher}},
		{"/quiz/analytics/7", []models.Role{models.RoleTeacher}},
		{"/quiz/live/7", []models.Role{models.RoleTeacher}},
		{"/quiz/submit/7", []models.Role{models.RoleStudent}},
		{"/quiz/student", []models.Role{models.RoleStudent}},
		{"/quiz/get/7", nil},
		{"/quiz/result/3", nil},
	}
	for _, tt := range tests {
		rules := policy.MatchingRules(tt.path)
		if len(rules) != len(tt.want) {
			t.Errorf("MatchingRules(%q) returned %d rules, want %d", tt.path, len(rules), len(tt.want))
			continue
		}
		for i, rule := range rules {
			if rule.Role != tt.want[i] {
				t.Errorf("MatchingRules(%q)[%d].Role = %q, want %q", tt.path, i, rule.Role, tt.want[i])
			}
		}
	}
}
