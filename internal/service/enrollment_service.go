package service

import (
	"context"
	"errors"

	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService enrolls users into courses. Uniqueness is enforced by
// the composite unique index on (user_id, course_id), not by a
// check-then-insert, so two racing requests cannot both succeed.
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	Cache          *CourseCache
	DB             *gorm.DB
}

func NewEnrollmentService(enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository, cache *CourseCache, db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		Cache:          cache,
		DB:             db,
	}
}

// Enroll creates the enrollment and bumps the course's student counter in
// one transaction. A duplicate-key error from the unique index maps to
// ErrAlreadyEnrolled; an unmatched counter update means the course is gone.
func (s *EnrollmentService) Enroll(userID, courseID uint) (*model.Course, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		enrollment := &model.Enrollment{UserID: userID, CourseID: courseID}
		if err := tx.Create(enrollment).Error; err != nil {
			if repository.IsDuplicateKey(err) {
				return util.ErrAlreadyEnrolled
			}
			return err
		}

		res := tx.Model(&model.Course{}).
			Where("id = ?", courseID).
			Update("students", gorm.Expr("students + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrCourseNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(context.Background())

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	logger.Log.Info("user enrolled", zap.Uint("userId", userID), zap.Uint("courseId", courseID))
	return course, nil
}

// IsEnrolled reports whether the user already has an enrollment for the
// course.
func (s *EnrollmentService) IsEnrolled(userID, courseID uint) (bool, error) {
	return s.EnrollmentRepo.Exists(userID, courseID)
}
