package academyRoutes

import (
	controllers "academy/controllers/academy"
	"academy/middleware"
	validators "academy/validators/academy"

	"github.com/gofiber/fiber/v2"
)

// SetupAcademyRoutes wires course administration, the gradebook and the
// student surface.
func SetupAcademyRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	// Course CRUD and staff
	adminGroup.Post("/create", middleware.JWTMiddleware, validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Get("/list", middleware.JWTMiddleware, validators.Pagination(), controllers.CourseList)
	adminGroup.Get("/:courseId", middleware.JWTMiddleware, controllers.CourseDetail)
	adminGroup.Put("/:courseId", middleware.JWTMiddleware, validators.UpdateCourse(), controllers.UpdateCourse)
	adminGroup.Delete("/:courseId", middleware.JWTMiddleware, controllers.DeleteCourse)
	adminGroup.Post("/:courseId/staff", middleware.JWTMiddleware, validators.AssignStaff(), controllers.AssignStaff)
	adminGroup.Delete("/:courseId/staff/:userId", middleware.JWTMiddleware, controllers.RemoveStaff)

	// Hierarchy
	adminGroup.Post("/:courseId/subject", middleware.JWTMiddleware, validators.AttachSubject(), controllers.AttachSubject)
	adminGroup.Delete("/:courseId/subject/:subjectId", middleware.JWTMiddleware, controllers.DetachSubject)

	subjectGroup := app.Group("/admin/subject")
	subjectGroup.Put("/:subjectId/program", middleware.JWTMiddleware, validators.ReassignSubject(), controllers.ReassignSubject)

	// Content management
	adminGroup.Post("/:courseId/content", middleware.JWTMiddleware, validators.CreateContent(), controllers.CreateContentItem)
	adminGroup.Get("/:courseId/content", middleware.JWTMiddleware, controllers.ContentList)

	contentGroup := app.Group("/admin/content")
	contentGroup.Put("/:itemId", middleware.JWTMiddleware, validators.UpdateContent(), controllers.UpdateContentItem)
	contentGroup.Delete("/:itemId", middleware.JWTMiddleware, controllers.DeleteContentItem)

	// Publication lifecycle
	adminGroup.Post("/:courseId/submit", middleware.JWTMiddleware, controllers.SubmitForReview)
	adminGroup.Post("/:courseId/reject", middleware.JWTMiddleware, validators.Rejection(), controllers.RejectCourse)
	adminGroup.Post("/:courseId/remediate", middleware.JWTMiddleware, controllers.StartRemediation)
	adminGroup.Post("/:courseId/schedule", middleware.JWTMiddleware, validators.Schedule(), controllers.SchedulePublication)
	adminGroup.Post("/:courseId/publish", middleware.JWTMiddleware, controllers.PublishCourse)
	adminGroup.Post("/:courseId/finalize", middleware.JWTMiddleware, controllers.FinalizeProgram)

	// Enrollments and gradebook
	adminGroup.Post("/:courseId/enroll", middleware.JWTMiddleware, validators.Enrollment(), controllers.EnrollStudents)
	adminGroup.Post("/:courseId/unenroll", middleware.JWTMiddleware, validators.Enrollment(), controllers.UnenrollStudents)
	adminGroup.Get("/:courseId/enrollments", middleware.JWTMiddleware, validators.Pagination(), controllers.CourseEnrollmentList)
	adminGroup.Get("/:courseId/gradebook", middleware.JWTMiddleware, controllers.CourseGradebook)
	adminGroup.Get("/:courseId/credentials", middleware.JWTMiddleware, controllers.CourseCredentialList)

	progressGroup := app.Group("/admin/progress")
	progressGroup.Post("/:progressId/evaluate", middleware.JWTMiddleware, validators.Score(), controllers.EvaluateContent)
	progressGroup.Post("/:progressId/reopen", middleware.JWTMiddleware, controllers.ReopenContent)

	recordGroup := app.Group("/admin/record")
	recordGroup.Post("/:enrollmentId/close", middleware.JWTMiddleware, controllers.CloseRecord)
	recordGroup.Post("/:enrollmentId/certify", middleware.JWTMiddleware, controllers.RequestCertification)
	recordGroup.Post("/:enrollmentId/grade", middleware.JWTMiddleware, validators.Score(), controllers.SetManualGrade)
	recordGroup.Delete("/:enrollmentId/grade", middleware.JWTMiddleware, controllers.ClearManualOverride)
	recordGroup.Post("/:enrollmentId/credential/regenerate", middleware.JWTMiddleware, controllers.RegenerateCredential)

	// Batch triggers
	batchGroup := app.Group("/admin/batch")
	batchGroup.Post("/publications/run", middleware.JWTMiddleware, controllers.RunDuePublications)
	batchGroup.Post("/certifications/run", middleware.JWTMiddleware, controllers.RunCertifications)

	// Student surface
	studentGroup := app.Group("/student")
	studentGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.MyEnrollments)
	studentGroup.Get("/grades", middleware.JWTMiddleware, controllers.MyGrades)
	studentGroup.Get("/credentials", middleware.JWTMiddleware, controllers.MyCredentials)
	studentGroup.Post("/progress/:progressId/upload", middleware.JWTMiddleware, controllers.UploadDeliverable)
	studentGroup.Post("/progress/:progressId/exam", middleware.JWTMiddleware, validators.Score(), controllers.CompleteExam)
}
