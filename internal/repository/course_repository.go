package repository

import (
	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListAll() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Order("created_at DESC").Find(&courses).Error
	return courses, err
}

// ListForTeacher returns a teacher's own courses plus the admin-authored
// ones (teacher_id IS NULL), which any teacher may extend.
func (r *CourseRepository) ListForTeacher(teacherID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("teacher_id = ? OR teacher_id IS NULL", teacherID).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListByTeacher(teacherID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("teacher_id = ?", teacherID).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListEnrolled(userID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Joins("JOIN enrollments e ON e.course_id = courses.id").
		Where("e.user_id = ?", userID).
		Order("courses.created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ModulesForCourse(courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("course_id = ?", courseID).Order("position, id").Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) AllModules() ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Order("course_id, position, id").Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) AllSubmaterials() ([]model.Submaterial, error) {
	var subs []model.Submaterial
	err := r.DB.Order("module_id, position, id").Find(&subs).Error
	return subs, err
}

func (r *CourseRepository) SubmaterialsForModules(moduleIDs []uint) ([]model.Submaterial, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	var subs []model.Submaterial
	err := r.DB.Where("module_id IN ?", moduleIDs).Order("position, id").Find(&subs).Error
	return subs, err
}
