package repository

import (
	"coursehub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) CountByUserAndQuiz(userID, quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

// AttemptResultRow is one stored attempt joined with the student's name,
// as shown to the owning teacher.
type AttemptResultRow struct {
	ID          uint      `json:"id"`
	StudentName string    `json:"studentName"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r *QuizAttemptRepository) ListByQuiz(quizID uint) ([]AttemptResultRow, error) {
	var rows []AttemptResultRow
	err := r.DB.Model(&model.QuizAttempt{}).
		Select("quiz_attempts.id, u.name AS student_name, quiz_attempts.score, quiz_attempts.created_at").
		Joins("JOIN users u ON u.id = quiz_attempts.user_id").
		Where("quiz_attempts.quiz_id = ?", quizID).
		Order("quiz_attempts.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// StudentRow identifies a student that has at least one stored attempt.
type StudentRow struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (r *QuizAttemptRepository) ListStudentsWithAttempts() ([]StudentRow, error) {
	var rows []StudentRow
	err := r.DB.Model(&model.QuizAttempt{}).
		Select("DISTINCT u.id, u.name").
		Joins("JOIN users u ON u.id = quiz_attempts.user_id").
		Order("u.name ASC").
		Scan(&rows).Error
	return rows, err
}

// StudentResultRow is one attempt in a student's history, joined with the
// quiz title.
type StudentResultRow struct {
	QuizTitle string    `json:"quizTitle"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *QuizAttemptRepository) ListByUser(userID uint) ([]StudentResultRow, error) {
	var rows []StudentResultRow
	err := r.DB.Model(&model.QuizAttempt{}).
		Select("q.title AS quiz_title, quiz_attempts.score, quiz_attempts.created_at").
		Joins("JOIN quizzes q ON q.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.user_id = ?", userID).
		Order("quiz_attempts.created_at DESC").
		Scan(&rows).Error
	return rows, err
}
