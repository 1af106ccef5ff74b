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

// CourseService orchestrates create/update/delete of a course together
// with its full module/submaterial tree and the associated asset
// lifecycle. Every multi-row mutation runs in a single transaction; asset
// cleanup is best-effort and never rolls back committed row changes.
type CourseService struct {
	CourseRepo *repository.CourseRepository
	Storage    AssetStore
	Cache      *CourseCache
	DB         *gorm.DB
}

func NewCourseService(courseRepo *repository.CourseRepository, storage AssetStore, cache *CourseCache, db *gorm.DB) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		Storage:    storage,
		Cache:      cache,
		DB:         db,
	}
}

type SubmaterialInput struct {
	Title    string `json:"title"`
	FileURL  string `json:"file_url"`
	VideoURL string `json:"video_url"`
}

type ModuleInput struct {
	Title        string             `json:"title"`
	Submaterials []SubmaterialInput `json:"submaterials"`
}

type CreateCourseRequest struct {
	Title       string        `json:"title"`
	Date        string        `json:"date"`
	Description string        `json:"description"`
	ImageURL    string        `json:"image_url"`
	FileURL     string        `json:"file_url"`
	Modules     []ModuleInput `json:"modules"`
}

type UpdateCourseRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	FileURL     string `json:"file_url"`
	// Modules nil means "leave the tree alone"; non-nil replaces the whole
	// tree, which also renumbers module and submaterial ids.
	Modules *[]ModuleInput `json:"modules"`
}

func validateModules(modules []ModuleInput) error {
	for _, m := range modules {
		if m.Title == "" {
			return util.Validationf("module title is required")
		}
		for _, sub := range m.Submaterials {
			if sub.Title == "" {
				return util.Validationf("submaterial title is required in module %q", m.Title)
			}
			if sub.VideoURL != "" && !util.IsExternalVideoURL(sub.VideoURL) {
				return util.Validationf("invalid video URL for submaterial %q", sub.Title)
			}
		}
	}
	return nil
}

/// contentRef picks the stored reference for a submaterial: an uploaded
// asset path wins over an external video link.
func contentRef(sub SubmaterialInput) string {
	if sub.FileURL != "" {
		return sub.FileURL
	}
	return sub.VideoURL
}

func insertModuleTree(tx *gorm.DB, courseID uint, modules []ModuleInput, startPos int) error {
	for i, m := range modules {
		module := &model.Module{
			CourseID: courseID,
			Title:    m.Title,
			Position: startPos + i,
		}
		if err := tx.Create(module).Error; err != nil {
			return err
		}
		for j, sub := range m.Submaterials {
			submaterial := &model.Submaterial{
				ModuleID: module.ID,
				Title:    sub.Title,
				FileURL:  contentRef(sub),
				Position: j,
			}
			if err := tx.Create(submaterial).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// canEdit implements the ownership rule for update/delete: admins may edit
// anything, a teacher only their own course.
func canEdit(course *model.Course, requesterID uint, role model.UserRole) bool {
	if role == model.Admin {
		return true
	}
	if role != model.Teacher {
		return false
	}
	return course.TeacherID != nil && *course.TeacherID == requesterID
}

func (s *CourseService) CreateCourse(authorID uint, role model.UserRole, req CreateCourseRequest) (*model.Course, error) {
	if req.Title == "" || req.Date == "" {
		return nil, util.Validationf("title and date are required")
	}
	if err := validateModules(req.Modules); err != nil {
		return nil, err
	}

	var teacherID *uint
	if role != model.Admin {
		teacherID = &authorID
	}

	course := &model.Course{
		TeacherID:   teacherID,
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		FileURL:     req.FileURL,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return err
		}
		return insertModuleTree(tx, course.ID, req.Modules, 0)
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(context.Background())
	logger.Log.Info("course created", zap.Uint("courseId", course.ID))
	return course, nil
}

func (s *CourseService) UpdateCourse(courseID, requesterID uint, role model.UserRole, req UpdateCourseRequest) (*model.Course, error) {
	if req.Title == "" || req.Date == "" {
		return nil, util.Validationf("title and date are required")
	}
	if req.Modules != nil {
		if err := validateModules(*req.Modules); err != nil {
			return nil, err
		}
	}

	var updated model.Course
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		if !canEdit(&course, requesterID, role) {
			return util.ErrPermissionDenied
		}

		newImage := course.ImageURL
		if req.ImageURL != "" {
			newImage = req.ImageURL
		}
		newFile := course.FileURL
		if req.FileURL != "" {
			newFile = req.FileURL
		}

		// Replaced assets are removed best-effort: a missing file is fine
		// and an I/O failure only gets logged, it never aborts the update.
		if course.ImageURL != "" && newImage != course.ImageURL {
			s.Storage.DeleteIfExists(context.Background(), course.ImageURL)
		}
		if course.FileURL != "" && newFile != course.FileURL {
			s.Storage.DeleteIfExists(context.Background(), course.FileURL)
		}

		course.Title = req.Title
		course.Date = req.Date
		course.Description = req.Description
		course.ImageURL = newImage
		course.FileURL = newFile
		if err := tx.Save(&course).Error; err != nil {
			return err
		}

		if req.Modules != nil {
			if err := tx.Exec(
				"DELETE FROM submaterials WHERE module_id IN (SELECT id FROM modules WHERE course_id = ?)",
				courseID,
			).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", courseID).Delete(&model.Module{}).Error; err != nil {
				return err
			}
			if err := insertModuleTree(tx, courseID, *req.Modules, 0); err != nil {
				return err
			}
		}

		updated = course
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(context.Background())
	logger.Log.Info("course updated", zap.Uint("courseId", courseID))
	return &updated, nil
}

func (s *CourseService) DeleteCourse(courseID, requesterID uint, role model.UserRole) error {
	var orphanedRefs []string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		if !canEdit(&course, requesterID, role) {
			return util.ErrPermissionDenied
		}

		var subRefs []string
		if err := tx.Model(&model.Submaterial{}).
			Joins("JOIN modules m ON m.id = submaterials.module_id").
			Where("m.course_id = ?", courseID).
			Pluck("submaterials.file_url", &subRefs).Error; err != nil {
			return err
		}

		if err := tx.Exec(
			"DELETE FROM submaterials WHERE module_id IN (SELECT id FROM modules WHERE course_id = ?)",
			courseID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&model.Module{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Course{}, courseID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrCourseNotFound
		}

		// Only assets this system stored get cleaned up; external video
		// links and empty refs are not ours to delete.
		if course.ImageURL != "" {
			orphanedRefs = append(orphanedRefs, course.ImageURL)
		}
		if course.FileURL != "" {
			orphanedRefs = append(orphanedRefs, course.FileURL)
		}
		for _, ref := range subRefs {
			if ref != "" && !util.IsExternalVideoURL(ref) {
				orphanedRefs = append(orphanedRefs, ref)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The logical delete is committed and authoritative; file cleanup
	// failures are logged inside the store and otherwise ignored.
	for _, ref := range orphanedRefs {
		s.Storage.DeleteIfExists(context.Background(), ref)
	}

	s.Cache.Invalidate(context.Background())
	logger.Log.Info("course deleted", zap.Uint("courseId", courseID))
	return nil
}

// AddModules appends to the tree without touching existing modules. A
// teacher may extend their own courses and admin-authored ones.
func (s *CourseService) AddModules(courseID, requesterID uint, role model.UserRole, modules []ModuleInput) error {
	if len(modules) == 0 {
		return util.Validationf("modules data is required")
	}
	if err := validateModules(modules); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}

		if role != model.Admin {
			if role != model.Teacher {
				return util.ErrPermissionDenied
			}
			if course.TeacherID != nil && *course.TeacherID != requesterID {
				return util.ErrPermissionDenied
			}
		}

		var existing int64
		if err := tx.Model(&model.Module{}).Where("course_id = ?", courseID).Count(&existing).Error; err != nil {
			return err
		}

		return insertModuleTree(tx, courseID, modules, int(existing))
	})
	if err != nil {
		return err
	}

	s.Cache.Invalidate(context.Background())
	return nil
}

// ModuleTree is a module with its submaterials attached.
type ModuleTree struct {
	model.Module
	Submaterials []model.Submaterial `json:"submaterials"`
}

type CourseTree struct {
	Course  model.Course `json:"course"`
	Modules []ModuleTree `json:"modules"`
}

func (s *CourseService) GetCourseTree(courseID uint) (*CourseTree, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	modules, err := s.CourseRepo.ModulesForCourse(courseID)
	if err != nil {
		return nil, err
	}

	moduleIDs := make([]uint, len(modules))
	for i, m := range modules {
		moduleIDs[i] = m.ID
	}
	subs, err := s.CourseRepo.SubmaterialsForModules(moduleIDs)
	if err != nil {
		return nil, err
	}

	byModule := make(map[uint][]model.Submaterial)
	for _, sub := range subs {
		byModule[sub.ModuleID] = append(byModule[sub.ModuleID], sub)
	}

	tree := &CourseTree{Course: *course, Modules: make([]ModuleTree, 0, len(modules))}
	for _, m := range modules {
		tree.Modules = append(tree.Modules, ModuleTree{
			Module:       m,
			Submaterials: byModule[m.ID],
		})
	}
	return tree, nil
}

// ListAllTrees returns every course with its full module tree in one
// response, for the student browsing view. Three queries total, assembled
// in memory.
func (s *CourseService) ListAllTrees() ([]CourseTree, error) {
	courses, err := s.CourseRepo.ListAll()
	if err != nil {
		return nil, err
	}
	modules, err := s.CourseRepo.AllModules()
	if err != nil {
		return nil, err
	}
	subs, err := s.CourseRepo.AllSubmaterials()
	if err != nil {
		return nil, err
	}

	byModule := make(map[uint][]model.Submaterial)
	for _, sub := range subs {
		byModule[sub.ModuleID] = append(byModule[sub.ModuleID], sub)
	}
	byCourse := make(map[uint][]ModuleTree)
	for _, m := range modules {
		byCourse[m.CourseID] = append(byCourse[m.CourseID], ModuleTree{
			Module:       m,
			Submaterials: byModule[m.ID],
		})
	}

	trees := make([]CourseTree, 0, len(courses))
	for _, course := range courses {
		trees = append(trees, CourseTree{
			Course:  course,
			Modules: byCourse[course.ID],
		})
	}
	return trees, nil
}

// ListCatalog serves the public course list through the cache.
func (s *CourseService) ListCatalog(ctx context.Context) ([]model.Course, error) {
	if courses, ok := s.Cache.GetCatalog(ctx); ok {
		return courses, nil
	}

	courses, err := s.CourseRepo.ListAll()
	if err != nil {
		return nil, err
	}
	s.Cache.SetCatalog(ctx, courses)
	return courses, nil
}

func (s *CourseService) ListForTeacher(teacherID uint) ([]model.Course, error) {
	return s.CourseRepo.ListForTeacher(teacherID)
}

/// ListManaged returns the management view: everything for an admin, own
// courses for a teacher.
func (s *CourseService) ListManaged(requesterID uint, role model.UserRole) ([]model.Course, error) {
	switch role {
	case model.Admin:
		return s.CourseRepo.ListAll()
	case model.Teacher:
		return s.CourseRepo.ListByTeacher(requesterID)
	default:
		return nil, util.ErrPermissionDenied
	}
}

func (s *CourseService) ListEnrolled(userID uint) ([]model.Course, error) {
	return s.CourseRepo.ListEnrolled(userID)
}
