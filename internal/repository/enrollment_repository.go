package repository

import (
	"coursehub_backend/internal/model"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// IsDuplicateKey reports whether err came from the (user_id, course_id)
// unique index. The message checks cover the MySQL and SQLite drivers,
// which predate gorm's translated ErrDuplicatedKey.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
