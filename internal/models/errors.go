package models

import "errors"

var (
	// ErrUserNotFound is returned when a username does not resolve to an account.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned on registration with a taken username.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrQuestionNotFound is returned when a question id does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuizNotFound is returned when a quiz id does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSubmissionNotFound is returned when a submission id does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrCategoryExhausted is returned when a category has no questions at all
	// for a random quiz. A partial shortfall is not an error; it is reported
	// alongside the shorter selection.
	ErrCategoryExhausted = errors.New("no questions available in category")
	// ErrUpstreamUnavailable is returned when a remote collaborator call fails;
	// the orchestrator never partially persists after it.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
