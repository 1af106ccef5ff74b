package service

import (
	"errors"
	"sync"
	"testing"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
)

func quizFixture(questions int) CreateQuizRequest {
	req := CreateQuizRequest{
		Title:      "Go basics",
		RetryLimit: 2,
		TimeLimit:  15,
	}
	for i := 0; i < questions; i++ {
		req.Questions = append(req.Questions, QuestionInput{
			Text:         "what prints hello",
			Choices:      []string{"fmt.Println", "os.Exit"},
			CorrectIndex: 0,
		})
	}
	return req
}

func TestCreateQuizPersistsTree(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	teacher := createUser(t, db, "teacher", model.Teacher)

	quiz, err := svc.CreateQuiz(teacher.ID, quizFixture(3))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	var questionCount, choiceCount int64
	db.Model(&model.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount)
	db.Model(&model.Choice{}).
		Joins("JOIN questions q ON q.id = choices.question_id").
		Where("q.quiz_id = ?", quiz.ID).
		Count(&choiceCount)

	if questionCount != 3 {
		t.Errorf("question count = %d, want 3", questionCount)
	}
	if choiceCount != 6 {
		t.Errorf("choice count = %d, want 6", choiceCount)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	teacher := createUser(t, db, "teacher", model.Teacher)

	tests := []struct {
		name   string
		mutate func(*CreateQuizRequest)
	}{
		{"empty title", func(r *CreateQuizRequest) { r.Title = "" }},
		{"retry limit zero", func(r *CreateQuizRequest) { r.RetryLimit = 0 }},
		{"retry limit above three", func(r *CreateQuizRequest) { r.RetryLimit = 4 }},
		{"time limit zero", func(r *CreateQuizRequest) { r.TimeLimit = 0 }},
		{"no questions", func(r *CreateQuizRequest) { r.Questions = nil }},
		{"empty question text", func(r *CreateQuizRequest) { r.Questions[0].Text = "" }},
		{"single choice", func(r *CreateQuizRequest) { r.Questions[0].Choices = []string{"only"} }},
		{"blank choice", func(r *CreateQuizRequest) { r.Questions[0].Choices[1] = "" }},
		{"correct index negative", func(r *CreateQuizRequest) { r.Questions[0].CorrectIndex = -1 }},
		{"correct index out of range", func(r *CreateQuizRequest) { r.Questions[0].CorrectIndex = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := quizFixture(1)
			tt.mutate(&req)

			if _, err := svc.CreateQuiz(teacher.ID, req); !util.IsValidation(err) {
				t.Errorf("want validation error, got %v", err)
			}

			var count int64
			db.Model(&model.Quiz{}).Count(&count)
			if count != 0 {
				t.Errorf("quiz rows after rejected create = %d, want 0", count)
			}
		})
	}
}

func TestRecordAttemptEnforcesRetryLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	teacher := createUser(t, db, "teacher", model.Teacher)
	student := createUser(t, db, "student", model.Student)

	quiz, err := svc.CreateQuiz(teacher.ID, quizFixture(1))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.RecordAttempt(student.ID, quiz.ID, 50+i); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	if _, err := svc.RecordAttempt(student.ID, quiz.ID, 80); !errors.Is(err, util.ErrRetryLimitReached) {
		t.Fatalf("third attempt: want ErrRetryLimitReached, got %v", err)
	}

	var count int64
	db.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", student.ID, quiz.ID).
		Count(&count)
	if count != 2 {
		t.Errorf("stored attempts = %d, want 2", count)
	}
}

func TestRecordAttemptConcurrentNeverExceedsLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	teacher := createUser(t, db, "teacher", model.Teacher)
	student := createUser(t, db, "student", model.Student)

	quiz, err := svc.CreateQuiz(teacher.ID, quizFixture(1))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := svc.RecordAttempt(student.ID, quiz.ID, score)
			results <- err
		}(i * 10)
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, util.ErrRetryLimitReached):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 2 || rejected != 8 {
		t.Errorf("got %d accepted / %d rejected, want 2 / 8", ok, rejected)
	}

	var count int64
	db.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", student.ID, quiz.ID).
		Count(&count)
	if count != 2 {
		t.Errorf("stored attempts = %d, want 2", count)
	}
}

func TestRecordAttemptScoreBounds(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)

	for _, score := range []int{-1, 101} {
		if _, err := svc.RecordAttempt(1, 1, score); !util.IsValidation(err) {
			t.Errorf("score %d: want validation error, got %v", score, err)
		}
	}
}

func TestRecordAttemptMissingQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	student := createUser(t, db, "student", model.Student)

	if _, err := svc.RecordAttempt(student.ID, 999, 50); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("want ErrQuizNotFound, got %v", err)
	}
}

func TestGetQuizForTakingRemainingRetries(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	teacher := createUser(t, db, "teacher", model.Teacher)
	student := createUser(t, db, "student", model.Student)

	quiz, err := svc.CreateQuiz(teacher.ID, quizFixture(2))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	got, err := svc.GetQuizForTaking(quiz.ID, student.ID, model.Student)
	if err != nil {
		t.Fatalf("GetQuizForTaking: %v", err)
	}
	if got.RemainingRetries != 2 {
		t.Errorf("remaining = %d, want 2", got.RemainingRetries)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(got.Questions))
	}
	if len(got.Questions[0].Choices) != 2 {
		t.Errorf("choices = %d, want 2", len(got.Questions[0].Choices))
	}

	if _, err := svc.RecordAttempt(student.ID, quiz.ID, 90); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	got, err = svc.GetQuizForTaking(quiz.ID, student.ID, model.Student)
	if err != nil {
		t.Fatalf("GetQuizForTaking after attempt: %v", err)
	}
	if got.RemainingRetries != 1 {
		t.Errorf("remaining after attempt = %d, want 1", got.RemainingRetries)
	}
}

func TestGetQuizForTakingTeacherOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	owner := createUser(t, db, "owner", model.Teacher)
	other := createUser(t, db, "other", model.Teacher)

	quiz, err := svc.CreateQuiz(owner.ID, quizFixture(1))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	// Another teacher's quiz looks exactly like a missing one.
	if _, err := svc.GetQuizForTaking(quiz.ID, other.ID, model.Teacher); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("foreign quiz: want ErrQuizNotFound, got %v", err)
	}

	if _, err := svc.GetQuizForTaking(quiz.ID, owner.ID, model.Teacher); err != nil {
		t.Fatalf("own quiz: %v", err)
	}
}

func TestListQuizzesForStudentAnnotatesRows(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	teacher := createUser(t, db, "teacher", model.Teacher)
	student := createUser(t, db, "student", model.Student)

	taken, err := svc.CreateQuiz(teacher.ID, quizFixture(4))
	if err != nil {
		t.Fatalf("CreateQuiz taken: %v", err)
	}
	untakenReq := quizFixture(1)
	untakenReq.Title = "Interfaces"
	untaken, err := svc.CreateQuiz(teacher.ID, untakenReq)
	if err != nil {
		t.Fatalf("CreateQuiz untaken: %v", err)
	}

	if _, err := svc.RecordAttempt(student.ID, taken.ID, 60); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if _, err := svc.RecordAttempt(student.ID, taken.ID, 75); err != nil {
		t.Fatalf("second attempt: %v", err)
	}

	listing, err := svc.ListQuizzesForUser(student.ID, model.Student)
	if err != nil {
		t.Fatalf("ListQuizzesForUser: %v", err)
	}
	rows, ok := listing.([]repository.StudentQuizRow)
	if !ok {
		t.Fatalf("listing type = %T, want []repository.StudentQuizRow", listing)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	byID := make(map[uint]repository.StudentQuizRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	got := byID[taken.ID]
	if got.HighestScore == nil || *got.HighestScore != 75 {
		t.Errorf("taken highest score = %v, want 75", got.HighestScore)
	}
	if got.RemainingRetries != 0 {
		t.Errorf("taken remaining = %d, want 0", got.RemainingRetries)
	}
	if got.QuestionCount != 4 {
		t.Errorf("taken question count = %d, want 4", got.QuestionCount)
	}

	fresh := byID[untaken.ID]
	if fresh.HighestScore != nil {
		t.Errorf("untaken highest score = %v, want nil", *fresh.HighestScore)
	}
	if fresh.RemainingRetries != 2 {
		t.Errorf("untaken remaining = %d, want 2", fresh.RemainingRetries)
	}
	if fresh.QuestionCount != 1 {
		t.Errorf("untaken question count = %d, want 1", fresh.QuestionCount)
	}
}

func TestListQuizzesForTeacherOwnOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	owner := createUser(t, db, "owner", model.Teacher)
	other := createUser(t, db, "other", model.Teacher)

	quiz, err := svc.CreateQuiz(owner.ID, quizFixture(2))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if _, err := svc.CreateQuiz(other.ID, quizFixture(1)); err != nil {
		t.Fatalf("CreateQuiz other: %v", err)
	}

	listing, err := svc.ListQuizzesForUser(owner.ID, model.Teacher)
	if err != nil {
		t.Fatalf("ListQuizzesForUser: %v", err)
	}
	rows, ok := listing.([]repository.TeacherQuizRow)
	if !ok {
		t.Fatalf("listing type = %T, want []repository.TeacherQuizRow", listing)
	}
	if len(rows) != 1 || rows[0].ID != quiz.ID || rows[0].QuestionCount != 2 {
		t.Errorf("rows = %+v, want only the owned quiz with 2 questions", rows)
	}
}

func TestListQuizResultsOwnershipGate(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	owner := createUser(t, db, "owner", model.Teacher)
	other := createUser(t, db, "other", model.Teacher)
	student := createUser(t, db, "student", model.Student)

	quiz, err := svc.CreateQuiz(owner.ID, quizFixture(1))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if _, err := svc.RecordAttempt(student.ID, quiz.ID, 70); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	if _, err := svc.ListQuizResults(quiz.ID, other.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("foreign results: want ErrQuizNotFound, got %v", err)
	}

	results, err := svc.ListQuizResults(quiz.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListQuizResults: %v", err)
	}
	if len(results) != 1 || results[0].Score != 70 {
		t.Errorf("results = %+v, want one row with score 70", results)
	}
}
