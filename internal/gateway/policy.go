package gateway

import (
	"strings"

	"github.com/quizgrid/backend/internal/models"
)

// RoleRule pairs a path prefix with the role required to pass it.
type RoleRule struct {
	Prefix string
	Role   models.Role
}

// RoutePolicy classifies request paths. It is plain data, injected into the
// filter, so deployments can carry their own policy and tests can build
// small ones inline.
type RoutePolicy struct {
	// OpenPrefixes are reachable without a token.
	OpenPrefixes []string
	// RoleRules are evaluated in order; every rule whose prefix matches the
	// path must pass.
	RoleRules []RoleRule
}

// DefaultPolicy returns the platform's route policy: question management and
// quiz authoring are teacher-only, quiz submission and history student-only.
func DefaultPolicy() RoutePolicy {
	return RoutePolicy{
		OpenPrefixes: []string{
			"/auth/register",
			"/auth/login",
			"/auth/validate",
			"/health",
		},
		RoleRules: []RoleRule{
			{Prefix: "/question/", Role: models.RoleTeacher},
			{Prefix: "/quiz/create", Role: models.RoleTeacher},
			{Prefix: "/quiz/teacher", Role: models.RoleTeacher},
			{Prefix: "/quiz/analytics", Role: models.RoleTeacher},
			{Prefix: "/quiz/live", Role: models.RoleTeacher},
			{Prefix: "/quiz/submit", Role: models.RoleStudent},
			{Prefix: "/quiz/student", Role: models.RoleStudent},
		},
	}
}

// IsOpen reports whether the path is reachable without a token.
func (p RoutePolicy) IsOpen(path string) bool {
	for _, prefix := range p.OpenPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// MatchingRules returns every role rule whose prefix matches the path,
// in declaration order.
func (p RoutePolicy) MatchingRules(path string) []RoleRule {
	var matched []RoleRule
	for _, rule := range p.RoleRules {
		if strings.HasPrefix(path, rule.Prefix) {
			matched = append(matched, rule)
		}
	}
	return matched
}
