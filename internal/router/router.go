package router

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/internal/handler"
	"github.com/noah-isme/internship-portal-api/internal/middleware"
	"github.com/noah-isme/internship-portal-api/internal/models"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth         *handler.AuthHandler
	Universities *handler.UniversityHandler
	Departments  *handler.DepartmentHandler
	Faculty      *handler.FacultyHandler
	Students     *handler.StudentHandler
	Internships  *handler.InternshipHandler
	Assignments  *handler.AssignmentHandler
	Tasks        *handler.TaskHandler
	Submissions  *handler.SubmissionHandler
	Files        *handler.FileHandler
	Ops          *handler.MetricsHandler
}

// Options carries the cross-cutting dependencies of the route table.
type Options struct {
	Prefix string
	Tokens middleware.TokenValidator
	Audit  middleware.AuditRecorder
}

// Register mounts ops endpoints at the root and the API under opts.Prefix.
// Routes attach JWT claims when a token is sent but do not require one.
func Register(r *gin.Engine, h Handlers, opts Options) {
	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)

	api := r.Group(opts.Prefix)
	api.Use(middleware.WithResponseMeta())
	if opts.Tokens != nil {
		api.Use(middleware.OptionalJWT(opts.Tokens))
	}
	audit := func(action, resource, idParam string) gin.HandlerFunc {
		return middleware.Audit(opts.Audit, action, resource, idParam)
	}

	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.POST("/forget-Password", h.Auth.ForgetPassword)
	api.POST("/resetPassword", h.Auth.ResetPassword)
	if opts.Tokens != nil {
		api.GET("/me", middleware.JWT(opts.Tokens), h.Auth.Me)
	}

	universities := api.Group("/universities")
	universities.GET("", h.Universities.List)
	universities.POST("", h.Universities.Create)
	universities.GET("/:id", h.Universities.Get)
	universities.PUT("/:id", h.Universities.Update)
	universities.DELETE("/:id", audit(models.AuditActionDelete, "university", "id"), h.Universities.Delete)

	departments := api.Group("/departments")
	departments.GET("", h.Departments.List)
	departments.POST("", h.Departments.Create)
	departments.GET("/:id", h.Departments.Get)
	departments.PUT("/:id", h.Departments.Update)
	departments.DELETE("/:id", audit(models.AuditActionDelete, "department", "id"), h.Departments.Delete)

	faculty := api.Group("/faculty")
	faculty.GET("", h.Faculty.List)
	faculty.POST("", h.Faculty.Create)
	faculty.GET("/:id", h.Faculty.Get)
	faculty.PUT("/:id", h.Faculty.Update)
	faculty.DELETE("/:id", audit(models.AuditActionDelete, "faculty", "id"), h.Faculty.Delete)

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", audit(models.AuditActionDelete, "student", "id"), h.Students.Delete)
	students.POST("/:id/cv", h.Students.UploadCV)
	api.POST("/upload-students", h.Students.Import)

	api.GET("/internships", h.Internships.List)
	api.POST("/internships", h.Internships.Create)
	api.PUT("/internships", audit(models.AuditActionApprove, "internship", ""), h.Assignments.Approve)
	api.DELETE("/internships", audit(models.AuditActionDelete, "internship", ""), h.Internships.Delete)
	api.POST("/internships/reconcile", audit(models.AuditActionReconcile, "internship", ""), h.Assignments.Reconcile)

	internship := api.Group("/internship/:internshipId")
	internship.GET("", h.Internships.Get)
	internship.PATCH("", h.Internships.Update)
	internship.PUT("", audit(models.AuditActionAssignStudent, "internship", "internshipId"), h.Assignments.AssignStudent)
	internship.DELETE("/students/:studentId", audit(models.AuditActionUnassignStudent, "internship", "internshipId"), h.Assignments.UnassignStudent)
	internship.PUT("/faculty", audit(models.AuditActionAssignFaculty, "internship", "internshipId"), h.Assignments.AssignFaculty)
	internship.GET("/roster", h.Assignments.Roster)

	api.PUT("/MarkasComplete/:internshipId", audit(models.AuditActionComplete, "internship", "internshipId"), h.Assignments.Complete)
	api.GET("/studentNoInternship/:universityId", h.Assignments.Unassigned)

	tasks := api.Group("/tasks")
	tasks.GET("", h.Tasks.List)
	tasks.POST("", h.Tasks.Create)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.PUT("/:id", h.Tasks.Update)
	tasks.DELETE("/:id", h.Tasks.Delete)

	submissions := api.Group("/submissions")
	submissions.GET("", h.Submissions.List)
	submissions.POST("", h.Submissions.Create)
	submissions.GET("/:id", h.Submissions.Get)
	submissions.PUT("/:id", h.Submissions.Update)
	submissions.DELETE("/:id", h.Submissions.Delete)

	api.GET("/files/download", h.Files.Download)
}
