package utils

import (
	"academy/academics"
	"academy/config"
	"academy/database"
	"academy/models"
	academyModels "academy/models/academy"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[ACADEMY-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// processDuePublications releases scheduled courses and content items
func processDuePublications() {
	result := academics.RunDuePublications(database.Database.Db)
	if result.Succeeded > 0 || len(result.Failures) > 0 {
		logScheduler("Due publications processed")
		log.Printf("[ACADEMY-SCHEDULER] published=%d failed=%d", result.Succeeded, len(result.Failures))
		for _, f := range result.Failures {
			log.Printf("[ACADEMY-SCHEDULER] publication %d failed: %s", f.ID, f.Reason)
		}
	}
}

// processPendingCertifications issues credentials for closed, passing records
func processPendingCertifications() {
	renderer := NewRenderClient()
	result := academics.RunPendingCertifications(database.Database.Db, config.AppConfig.CertificationBatch, renderer)
	if result.Succeeded > 0 || len(result.Failures) > 0 {
		log.Printf("[ACADEMY-SCHEDULER] credentials issued=%d failed=%d", result.Succeeded, len(result.Failures))
	}
	for _, id := range result.SucceededIDs {
		notifyCredentialIssued(id)
	}
}

func notifyCredentialIssued(enrollmentID uint) {
	db := database.Database.Db

	var enrollment academyModels.Enrollment
	if err := db.Where("id = ?", enrollmentID).First(&enrollment).Error; err != nil {
		return
	}
	var student models.User
	if err := db.Where("id = ?", enrollment.UserID).First(&student).Error; err != nil {
		return
	}
	var course academyModels.Course
	if err := db.Where("id = ?", enrollment.CourseID).First(&course).Error; err != nil {
		return
	}

	SendCredentialIssuedEmail(student.Email, student.Name, course.Title, enrollment.FinalGrade)
}

// StartPublicationScheduler runs every minute to release due publications
func StartPublicationScheduler(c *cron.Cron) {
	c.AddFunc("* * * * *", func() {
		processDuePublications()
	})
	logScheduler("Publication scheduler started - runs every minute")
}

// StartCertificationScheduler runs every 5 minutes to issue pending credentials
func StartCertificationScheduler(c *cron.Cron) {
	c.AddFunc("*/5 * * * *", func() {
		processPendingCertifications()
	})
	logScheduler("Certification scheduler started - runs every 5 minutes")
}

// InitializeAcademySchedulers initializes all academy schedulers
func InitializeAcademySchedulers() *cron.Cron {
	logScheduler("Initializing academy schedulers...")

	c := cron.New()

	StartPublicationScheduler(c)
	StartCertificationScheduler(c)

	c.Start()

	logScheduler("All academy schedulers initialized successfully")
	return c
}
