package service

import (
	"errors"
	"time"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"
	"coursehub_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizService owns the quiz lifecycle: authoring, serving a quiz to a
// taking user, and recording scored attempts without ever letting a user
// exceed the quiz's retry budget, even under concurrent submissions.
type QuizService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.QuizAttemptRepository
	DB          *gorm.DB
}

func NewQuizService(quizRepo *repository.QuizRepository, attemptRepo *repository.QuizAttemptRepository, db *gorm.DB) *QuizService {
	return &QuizService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
		DB:          db,
	}
}

type QuestionInput struct {
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
}

type CreateQuizRequest struct {
	Title      string          `json:"title"`
	RetryLimit int             `json:"retryLimit"`
	TimeLimit  int             `json:"timeLimit"` // minutes
	Questions  []QuestionInput `json:"questions"`
}

func validateQuiz(req CreateQuizRequest) error {
	if req.Title == "" {
		return util.Validationf("quiz title is required")
	}
	if req.RetryLimit < 1 || req.RetryLimit > 3 {
		return util.Validationf("retry limit must be between 1 and 3")
	}
	if req.TimeLimit < 1 {
		return util.Validationf("time limit must be at least 1 minute")
	}
	if len(req.Questions) == 0 {
		return util.Validationf("at least one question is required")
	}
	for i, q := range req.Questions {
		if q.Text == "" {
			return util.Validationf("question %d: text is required", i+1)
		}
		if len(q.Choices) < 2 {
			return util.Validationf("question %d: at least two choices are required", i+1)
		}
		for _, choice := range q.Choices {
			if choice == "" {
				return util.Validationf("question %d: all choices must be filled in", i+1)
			}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
			return util.Validationf("question %d: correct index out of range", i+1)
		}
	}
	return nil
}

// CreateQuiz persists the quiz with its questions and choices as one
// atomic unit; a validation failure writes nothing.
func (s *QuizService) CreateQuiz(teacherID uint, req CreateQuizRequest) (*model.Quiz, error) {
	if err := validateQuiz(req); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		TeacherID:  teacherID,
		Title:      req.Title,
		RetryLimit: req.RetryLimit,
		TimeLimit:  req.TimeLimit,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		for _, q := range req.Questions {
			question := &model.Question{
				QuizID:       quiz.ID,
				Text:         q.Text,
				CorrectIndex: q.CorrectIndex,
			}
			if err := tx.Create(question).Error; err != nil {
				return err
			}
			for pos, choice := range q.Choices {
				if err := tx.Create(&model.Choice{
					QuestionID: question.ID,
					Text:       choice,
					Position:   pos,
				}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("quiz created", zap.Uint("quizId", quiz.ID), zap.Uint("teacherId", teacherID))
	return quiz, nil
}

// TakingQuestion carries the correct index to the client, which uses it
// for immediate feedback and local scoring.
type TakingQuestion struct {
	ID           uint     `json:"id"`
	Text         string   `json:"text"`
	CorrectIndex int      `json:"correctIndex"`
	Choices      []string `json:"choices"`
}

type QuizForTaking struct {
	ID               uint             `json:"id"`
	Title            string           `json:"title"`
	RetryLimit       int              `json:"retryLimit"`
	TimeLimit        int              `json:"timeLimit"`
	RemainingRetries int              `json:"remainingRetries"`
	Questions        []TakingQuestion `json:"questions"`
}

// GetQuizForTaking loads a quiz for a taking session. Teachers only see
// their own quizzes; a miss is indistinguishable from a quiz that does
// not exist. RemainingRetries is a point-in-time snapshot, not a
// reservation; RecordAttempt re-checks under a lock.
func (s *QuizService) GetQuizForTaking(quizID, userID uint, role model.UserRole) (*QuizForTaking, error) {
	var quiz *model.Quiz
	var err error
	if role == model.Teacher {
		quiz, err = s.QuizRepo.FindByIDForTeacher(quizID, userID)
	} else {
		quiz, err = s.QuizRepo.FindByID(quizID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	remaining := quiz.RetryLimit
	if role != model.Teacher {
		used, err := s.AttemptRepo.CountByUserAndQuiz(userID, quizID)
		if err != nil {
			return nil, err
		}
		remaining = quiz.RetryLimit - int(used)
		if remaining < 0 {
			remaining = 0
		}
	}

	questions, err := s.QuizRepo.QuestionsForQuiz(quizID)
	if err != nil {
		return nil, err
	}
	choices, err := s.QuizRepo.ChoicesForQuiz(quizID)
	if err != nil {
		return nil, err
	}

	choicesByQuestion := make(map[uint][]string)
	for _, c := range choices {
		choicesByQuestion[c.QuestionID] = append(choicesByQuestion[c.QuestionID], c.Text)
	}

	out := &QuizForTaking{
		ID:               quiz.ID,
		Title:            quiz.Title,
		RetryLimit:       quiz.RetryLimit,
		TimeLimit:        quiz.TimeLimit,
		RemainingRetries: remaining,
		Questions:        make([]TakingQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		out.Questions = append(out.Questions, TakingQuestion{
			ID:           q.ID,
			Text:         q.Text,
			CorrectIndex: q.CorrectIndex,
			Choices:      choicesByQuestion[q.ID],
		})
	}
	return out, nil
}

// RecordAttempt stores one scored attempt. The check-and-insert runs in a
// transaction that first takes a write lock on the quiz row, so concurrent
// submissions for the same (user, quiz) serialize and the attempt count
// can never exceed the retry limit.
func (s *QuizService) RecordAttempt(userID, quizID uint, score int) (*model.QuizAttempt, error) {
	if score < 0 || score > 100 {
		return nil, util.Validationf("score must be between 0 and 100")
	}

	attempt := &model.QuizAttempt{
		UserID:    userID,
		QuizID:    quizID,
		Score:     score,
		CreatedAt: time.Now(),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Self-assignment update: a no-op write that acquires the row
		// lock on both MySQL and SQLite without changing anything.
		if err := tx.Model(&model.Quiz{}).
			Where("id = ?", quizID).
			Update("retry_limit", gorm.Expr("retry_limit")).Error; err != nil {
			return err
		}

		var quiz model.Quiz
		if err := tx.First(&quiz, quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrQuizNotFound
			}
			return err
		}

		var used int64
		if err := tx.Model(&model.QuizAttempt{}).
			Where("user_id = ? AND quiz_id = ?", userID, quizID).
			Count(&used).Error; err != nil {
			return err
		}
		if int(used) >= quiz.RetryLimit {
			return util.ErrRetryLimitReached
		}

		return tx.Create(attempt).Error
	})
	if err != nil {
		if errors.Is(err, util.ErrRetryLimitReached) {
			monitoring.QuizAttemptsRejected.Inc()
		}
		return nil, err
	}

	logger.Log.Info("quiz attempt recorded",
		zap.Uint("userId", userID),
		zap.Uint("quizId", quizID),
		zap.Int("score", score),
	)
	return attempt, nil
}

// ListQuizzesForUser returns the authoring view for teachers and the
// taking view (highest score, remaining retries) for everyone else.
func (s *QuizService) ListQuizzesForUser(userID uint, role model.UserRole) (interface{}, error) {
	if role == model.Teacher {
		return s.QuizRepo.ListForTeacher(userID)
	}
	return s.QuizRepo.ListForStudent(userID)
}

// ListQuizResults returns the stored attempts for a quiz the teacher owns.
func (s *QuizService) ListQuizResults(quizID, teacherID uint) ([]repository.AttemptResultRow, error) {
	if _, err := s.QuizRepo.FindByIDForTeacher(quizID, teacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return s.AttemptRepo.ListByQuiz(quizID)
}

func (s *QuizService) ListStudentsWithAttempts() ([]repository.StudentRow, error) {
	return s.AttemptRepo.ListStudentsWithAttempts()
}

func (s *QuizService) ListResultsForStudent(studentID uint) ([]repository.StudentResultRow, error) {
	return s.AttemptRepo.ListByUser(studentID)
}
