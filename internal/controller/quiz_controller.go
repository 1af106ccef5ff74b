package controller

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// CreateQuiz godoc
// @Summary Create a quiz with questions and choices
// @Tags quizzes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateQuizRequest true "Quiz payload"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "Bad Request"
// @Router /api/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(claims.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": quiz.ID})
}

// ListQuizzes godoc
// @Summary Quizzes for the authenticated user
// @Description Teachers see their own quizzes with question counts; students see every quiz with highest score and remaining retries
// @Tags quizzes
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "Success"
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	quizzes, err := c.QuizService.ListQuizzesForUser(claims.UserID, claims.Role)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// GetQuiz godoc
// @Summary Load a quiz for taking
// @Description Teachers can only load quizzes they own
// @Tags quizzes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response{data=service.QuizForTaking} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	quiz, err := c.QuizService.GetQuizForTaking(quizID, claims.UserID, claims.Role)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

type recordAttemptRequest struct {
	QuizID uint `json:"quizId" binding:"required"`
	Score  *int `json:"score" binding:"required"`
}

// RecordAttempt godoc
// @Summary Record a scored quiz attempt
// @Description Rejected once the quiz's retry budget is used up
// @Tags quizzes
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body recordAttemptRequest true "Attempt payload"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 404 {object} util.Response "Quiz not found"
// @Failure 429 {object} util.Response "Retry limit reached"
// @Router /api/quiz-results [post]
func (c *QuizController) RecordAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req recordAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.QuizService.RecordAttempt(claims.UserID, req.QuizID, *req.Score)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": attempt.ID, "score": attempt.Score})
}

// ListQuizResults godoc
// @Summary Attempts recorded for a quiz the teacher owns
// @Tags quizzes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Quiz ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/quizzes/{id}/results [get]
func (c *QuizController) ListQuizResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	quizID := util.MustParseUint(ctx.Param("id"))

	results, err := c.QuizService.ListQuizResults(quizID, claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// ListStudents godoc
// @Summary Students who have taken at least one quiz
// @Tags quizzes
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "Success"
// @Router /api/students/quiz [get]
func (c *QuizController) ListStudents(ctx *gin.Context) {
	students, err := c.QuizService.ListStudentsWithAttempts()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// ListStudentResults godoc
// @Summary All quiz results for one student
// @Tags quizzes
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Student ID"
// @Success 200 {object} util.Response "Success"
// @Router /api/students/{id}/results [get]
func (c *QuizController) ListStudentResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	studentID := util.MustParseUint(ctx.Param("id"))

	// Students may only read their own history.
	if claims.Role == model.Student && studentID != claims.UserID {
		util.Forbidden(ctx)
		return
	}

	results, err := c.QuizService.ListResultsForStudent(studentID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, results)
}
