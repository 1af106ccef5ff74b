package controller

import (
	"encoding/json"
	"fmt"
	"io"

	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
	Storage       service.AssetStore
}

func NewCourseController(courseService *service.CourseService, storage service.AssetStore) *CourseController {
	return &CourseController{CourseService: courseService, Storage: storage}
}

// uploadFormFile stores one multipart file and returns its public URL.
// allowedMimes, when non-nil, is checked against the sniffed content, not
// just the filename.
func (c *CourseController) uploadFormFile(ctx *gin.Context, field string, allowedMimes []string) (string, error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		return "", nil // field absent, not an error
	}
	if !util.IsAllowedUploadExtension(fileHeader.Filename) {
		return "", util.Validationf("file type of %q is not allowed", fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if allowedMimes != nil {
		sniffed, err := util.ValidateMimeType(file, allowedMimes)
		if err != nil {
			return "", util.Validationf("%q: %v", fileHeader.Filename, err)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return "", err
		}
		contentType = sniffed
	}

	name := util.NewAssetName(fileHeader.Filename)
	return c.Storage.Upload(ctx.Request.Context(), name, file, fileHeader.Size, contentType)
}

var imageMimes = []string{"image/"}

// parseModules decodes the modules JSON field and attaches uploaded
// submaterial files. File fields are named module_file_<m>_<s> by module
// and submaterial index. Stored URLs are appended to uploaded so the
// caller can discard them if the request is later rejected.
func (c *CourseController) parseModules(ctx *gin.Context, raw string, uploaded *[]string) ([]service.ModuleInput, error) {
	if raw == "" {
		return nil, nil
	}

	var modules []service.ModuleInput
	if err := json.Unmarshal([]byte(raw), &modules); err != nil {
		return nil, util.Validationf("invalid modules payload: %v", err)
	}

	for mi := range modules {
		for si := range modules[mi].Submaterials {
			field := fmt.Sprintf("module_file_%d_%d", mi, si)
			url, err := c.uploadFormFile(ctx, field, nil)
			if err != nil {
				return nil, err
			}
			if url != "" {
				modules[mi].Submaterials[si].FileURL = url
				*uploaded = append(*uploaded, url)
			}
		}
	}
	return modules, nil
}

// discardUploads removes files stored earlier in the same request.
// Uploads land before the service runs its checks, so a rejected
// request has to clean up after itself or the files leak.
func (c *CourseController) discardUploads(ctx *gin.Context, refs []string) {
	for _, ref := range refs {
		c.Storage.DeleteIfExists(ctx.Request.Context(), ref)
	}
}

// ListCatalog godoc
// @Summary Public course catalog
// @Tags courses
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Course} "Success"
// @Router /api/courses/all [get]
func (c *CourseController) ListCatalog(ctx *gin.Context) {
	courses, err := c.CourseService.ListCatalog(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// ListWithModules godoc
// @Summary Every course with its full module tree
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.CourseTree} "Success"
// @Router /api/courses/student [get]
func (c *CourseController) ListWithModules(ctx *gin.Context) {
	trees, err := c.CourseService.ListAllTrees()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, trees)
}

// ListForTeacher godoc
// @Summary Courses visible to the teaching view
// @Description Own courses plus admin-authored ones
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "Success"
// @Router /api/courses [get]
func (c *CourseController) ListForTeacher(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.CourseService.ListForTeacher(claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// ListManaged godoc
// @Summary Courses the requester manages
// @Description All courses for admins, own courses for teachers
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /api/courses/manage [get]
func (c *CourseController) ListManaged(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.CourseService.ListManaged(claims.UserID, claims.Role)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourseTree godoc
// @Summary Course with its full module tree
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=service.CourseTree} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/courses/{id}/full [get]
func (c *CourseController) GetCourseTree(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	tree, err := c.CourseService.GetCourseTree(courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, tree)
}

// GetModules godoc
// @Summary Module tree of a course
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=[]service.ModuleTree} "Success"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/courses/{id}/modules [get]
func (c *CourseController) GetModules(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	tree, err := c.CourseService.GetCourseTree(courseID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, tree.Modules)
}

// CreateCourse godoc
// @Summary Create a course with its module tree
// @Description Multipart form: title, date, description, modules (JSON), image, file, module_file_<m>_<s>
// @Tags courses
// @Accept  mpfd
// @Produce  json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response{data=model.Course} "Created"
// @Failure 400 {object} util.Response "Bad Request"
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var uploaded []string
	imageURL, err := c.uploadFormFile(ctx, "image", imageMimes)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if imageURL != "" {
		uploaded = append(uploaded, imageURL)
	}
	fileURL, err := c.uploadFormFile(ctx, "file", nil)
	if err != nil {
		c.discardUploads(ctx, uploaded)
		util.HandleServiceError(ctx, err)
		return
	}
	if fileURL != "" {
		uploaded = append(uploaded, fileURL)
	}
	modules, err := c.parseModules(ctx, ctx.PostForm("modules"), &uploaded)
	if err != nil {
		c.discardUploads(ctx, uploaded)
		util.HandleServiceError(ctx, err)
		return
	}

	req := service.CreateCourseRequest{
		Title:       ctx.PostForm("title"),
		Date:        ctx.PostForm("date"),
		Description: ctx.PostForm("description"),
		ImageURL:    imageURL,
		FileURL:     fileURL,
		Modules:     modules,
	}

	course, err := c.CourseService.CreateCourse(claims.UserID, claims.Role, req)
	if err != nil {
		c.discardUploads(ctx, uploaded)
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary Update a course, optionally replacing its module tree
// @Description Omitting the modules field leaves the tree untouched
// @Tags courses
// @Accept  mpfd
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response{data=model.Course} "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := util.MustParseUint(ctx.Param("id"))

	var uploaded []string
	imageURL, err := c.uploadFormFile(ctx, "image", imageMimes)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if imageURL != "" {
		uploaded = append(uploaded, imageURL)
	}
	fileURL, err := c.uploadFormFile(ctx, "file", nil)
	if err != nil {
		c.discardUploads(ctx, uploaded)
		util.HandleServiceError(ctx, err)
		return
	}
	if fileURL != "" {
		uploaded = append(uploaded, fileURL)
	}

	req := service.UpdateCourseRequest{
		Title:       ctx.PostForm("title"),
		Date:        ctx.PostForm("date"),
		Description: ctx.PostForm("description"),
		ImageURL:    imageURL,
		FileURL:     fileURL,
	}

	if raw, ok := ctx.GetPostForm("modules"); ok {
		modules, err := c.parseModules(ctx, raw, &uploaded)
		if err != nil {
			c.discardUploads(ctx, uploaded)
			util.HandleServiceError(ctx, err)
			return
		}
		req.Modules = &modules
	}

	course, err := c.CourseService.UpdateCourse(courseID, claims.UserID, claims.Role, req)
	if err != nil {
		c.discardUploads(ctx, uploaded)
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary Delete a course, its module tree, and its stored assets
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 200 {object} util.Response "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := util.MustParseUint(ctx.Param("id"))

	if err := c.CourseService.DeleteCourse(courseID, claims.UserID, claims.Role); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": courseID})
}

// AddModules godoc
// @Summary Append modules to an existing course
// @Tags courses
// @Accept  mpfd
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Course ID"
// @Success 201 {object} util.Response "Created"
// @Failure 403 {object} util.Response "Forbidden"
// @Failure 404 {object} util.Response "Not Found"
// @Router /api/courses/{id}/modules [post]
func (c *CourseController) AddModules(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := util.MustParseUint(ctx.Param("id"))

	var uploaded []string
	modules, err := c.parseModules(ctx, ctx.PostForm("modules"), &uploaded)
	if err != nil {
		c.discardUploads(ctx, uploaded)
		util.HandleServiceError(ctx, err)
		return
	}

	if err := c.CourseService.AddModules(courseID, claims.UserID, claims.Role, modules); err != nil {
		c.discardUploads(ctx, uploaded)
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"courseId": courseID})
}
