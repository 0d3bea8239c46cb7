package models

import "time"

// Quiz is an ordered selection of question ids under a title and category.
// QuestionIDs is immutable after creation.
type Quiz struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"categoryName"`
	CreatedBy   string    `json:"createdBy"`
	UserID      int64     `json:"userId"`
	QuestionIDs []int64   `json:"questionIds"`
	CreatedAt   time.Time `json:"createdDate"`
}

// Submission is an append-only record of one quiz attempt. TotalQuestions is
// the number of answers actually submitted, which may be fewer than the
// quiz's question count (partial submissions are accepted).
type Submission struct {
	ID             int64     `json:"submissionId"`
	QuizID         int64     `json:"quizId"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	DateTaken      time.Time `json:"dateTaken"`
	Responses      []Answer  `json:"responses"`
}
