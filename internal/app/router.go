package app

import (
	"coursehub_backend/docs"
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/middleware"
	"coursehub_backend/internal/model"
	"coursehub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/courses/all", c.course.ListCatalog)
	}

	authorized := router.Group("/api")
	authorized.Use(middleware.AuthMiddleware(cfg))
	{
		authorized.GET("/profile", c.auth.GetProfile)
		authorized.PUT("/users/:id", c.auth.UpdateProfile)

		authorized.GET("/courses/student", c.course.ListWithModules)
		authorized.GET("/courses/:id/full", c.course.GetCourseTree)
		authorized.GET("/courses/:id/modules", c.course.GetModules)

		authorized.POST("/enrollments", c.enrollment.Enroll)
		authorized.GET("/enrollments/check", c.enrollment.CheckEnrollment)
		authorized.GET("/enrolled-courses", c.enrollment.ListEnrolledCourses)

		authorized.GET("/quizzes", c.quiz.ListQuizzes)
		authorized.GET("/quizzes/:id", c.quiz.GetQuiz)
		authorized.POST("/quiz-results", c.quiz.RecordAttempt)
		authorized.GET("/students/:id/results", c.quiz.ListStudentResults)

		teacher := authorized.Group("")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.GET("/courses", c.course.ListForTeacher)
			teacher.GET("/courses/manage", c.course.ListManaged)
			teacher.POST("/courses", c.course.CreateCourse)
			teacher.PUT("/courses/:id", c.course.UpdateCourse)
			teacher.DELETE("/courses/:id", c.course.DeleteCourse)
			teacher.POST("/courses/:id/modules", c.course.AddModules)

			teacher.POST("/quizzes", c.quiz.CreateQuiz)
			teacher.GET("/quizzes/:id/results", c.quiz.ListQuizResults)
			teacher.GET("/students/quiz", c.quiz.ListStudents)
		}
	}
}
