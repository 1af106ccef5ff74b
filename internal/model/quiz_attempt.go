package model

import "time"

// QuizAttempt is one scored, completed submission of a quiz. Rows are
// append-only: the count per (user, quiz) is the authoritative measure of
// attempts used, so attempts are never edited or deleted.
//
// swagger:model QuizAttempt
type QuizAttempt struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index:idx_attempt_user_quiz;not null" json:"userId"`
	QuizID    uint      `gorm:"index:idx_attempt_user_quiz;not null" json:"quizId"`
	Score     int       `gorm:"not null" json:"score"` // 0-100 percentage
	CreatedAt time.Time `json:"createdAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
