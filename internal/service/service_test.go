package service

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/pkg/database"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newTestDB opens an isolated in-memory database. A single connection
// keeps every goroutine on the same database and serializes writes the
// way the production row locks do.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// fakeAssetStore records delete calls so tests can assert on asset
// cleanup without touching the filesystem.
type fakeAssetStore struct {
	mu      sync.Mutex
	deleted []string
	result  DeleteResult
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{result: DeleteOK}
}

func (f *fakeAssetStore) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return "/uploads/" + filename, nil
}

func (f *fakeAssetStore) DeleteIfExists(ctx context.Context, ref string) DeleteResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return f.result
}

func (f *fakeAssetStore) GetURL(filename string) string {
	return "/uploads/" + filename
}

func (f *fakeAssetStore) deletedRefs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deleted))
	copy(out, f.deleted)
	return out
}

func newCourseService(db *gorm.DB, store AssetStore) *CourseService {
	return NewCourseService(repository.NewCourseRepository(db), store, NewCourseCache(nil), db)
}

func newQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(repository.NewQuizRepository(db), repository.NewQuizAttemptRepository(db), db)
}

func newEnrollmentService(db *gorm.DB) *EnrollmentService {
	return NewEnrollmentService(repository.NewEnrollmentRepository(db), repository.NewCourseRepository(db), NewCourseCache(nil), db)
}
