package repository

import (
	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindByIDForTeacher treats another teacher's quiz the same as a missing
// one so ownership cannot be probed by id.
func (r *QuizRepository) FindByIDForTeacher(id, teacherID uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("id = ? AND teacher_id = ?", id, teacherID).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) QuestionsForQuiz(quizID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).Order("id").Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) ChoicesForQuiz(quizID uint) ([]model.Choice, error) {
	var choices []model.Choice
	err := r.DB.
		Joins("JOIN questions q ON q.id = choices.question_id").
		Where("q.quiz_id = ?", quizID).
		Order("choices.position, choices.id").
		Find(&choices).Error
	return choices, err
}

// TeacherQuizRow is a quiz as listed on the authoring side.
type TeacherQuizRow struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	RetryLimit    int    `json:"retryLimit"`
	TimeLimit     int    `json:"timeLimit"`
	QuestionCount int64  `json:"questionCount"`
}

func (r *QuizRepository) ListForTeacher(teacherID uint) ([]TeacherQuizRow, error) {
	var rows []TeacherQuizRow
	err := r.DB.Model(&model.Quiz{}).
		Select(`quizzes.id, quizzes.title, quizzes.retry_limit, quizzes.time_limit,
			(SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) AS question_count`).
		Where("quizzes.teacher_id = ?", teacherID).
		Scan(&rows).Error
	return rows, err
}

// StudentQuizRow annotates every quiz with the asking student's best score
// and remaining retry budget.
type StudentQuizRow struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	RetryLimit       int    `json:"retryLimit"`
	TimeLimit        int    `json:"timeLimit"`
	QuestionCount    int64  `json:"questionCount"`
	HighestScore     *int   `json:"highestScore"`
	RemainingRetries int    `json:"remainingRetries"`
}

func (r *QuizRepository) ListForStudent(userID uint) ([]StudentQuizRow, error) {
	var rows []StudentQuizRow
	err := r.DB.Model(&model.Quiz{}).
		Select(`quizzes.id, quizzes.title, quizzes.retry_limit, quizzes.time_limit,
			(SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) AS question_count,
			(SELECT MAX(score) FROM quiz_attempts WHERE quiz_attempts.quiz_id = quizzes.id AND quiz_attempts.user_id = ?) AS highest_score,
			quizzes.retry_limit - (SELECT COUNT(*) FROM quiz_attempts WHERE quiz_attempts.quiz_id = quizzes.id AND quiz_attempts.user_id = ?) AS remaining_retries`,
			userID, userID).
		Scan(&rows).Error
	return rows, err
}
