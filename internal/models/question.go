package models

import "time"

// Question is a bank entry owned by the question service. RightAnswer is
// never serialized on public paths; PublicQuestion is the answer-stripped view.
type Question struct {
	ID          int64     `json:"id"`
	Title       string    `json:"questionTitle"`
	Option1     string    `json:"option1"`
	Option2     string    `json:"option2"`
	Option3     string    `json:"option3"`
	Option4     string    `json:"option4"`
	RightAnswer string    `json:"rightAnswer"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicQuestion is the question view handed to students taking a quiz.
type PublicQuestion struct {
	ID      int64  `json:"id"`
	Title   string `json:"questionTitle"`
	Option1 string `json:"option1"`
	Option2 string `json:"option2"`
	Option3 string `json:"option3"`
	Option4 string `json:"option4"`
}

// ReviewQuestion is the post-submission review view; unlike PublicQuestion it
// includes the right answer.
type ReviewQuestion struct {
	ID          int64  `json:"id"`
	Title       string `json:"questionTitle"`
	Option1     string `json:"option1"`
	Option2     string `json:"option2"`
	Option3     string `json:"option3"`
	Option4     string `json:"option4"`
	RightAnswer string `json:"rightAnswer"`
}

// ToPublic strips the right answer and category.
func (q *Question) ToPublic() PublicQuestion {
	return PublicQuestion{
		ID:      q.ID,
		Title:   q.Title,
		Option1: q.Option1,
		Option2: q.Option2,
		Option3: q.Option3,
		Option4: q.Option4,
	}
}

// ToReview keeps the right answer for submission review.
func (q *Question) ToReview() ReviewQuestion {
	return ReviewQuestion{
		ID:          q.ID,
		Title:       q.Title,
		Option1:     q.Option1,
		Option2:     q.Option2,
		Option3:     q.Option3,
		Option4:     q.Option4,
		RightAnswer: q.RightAnswer,
	}
}

// Answer is one submitted response: a question id and the chosen option text.
type Answer struct {
	QuestionID int64  `json:"id"`
	Response   string `json:"response"`
}
