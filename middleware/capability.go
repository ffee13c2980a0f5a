package middleware

import (
	"academy/database"
	"academy/models"
	academyModels "academy/models/academy"
)

// Capabilities is the resolved capability set of an actor on one course. All
// state-machine transitions trust this result instead of re-deriving roles.
type Capabilities struct {
	IsAdmin    bool
	IsDirector bool
	IsTeacher  bool
}

// CanManage reports whether the actor may run staff operations on the course.
func (c Capabilities) CanManage() bool {
	return c.IsAdmin || c.IsDirector || c.IsTeacher
}

// ActorCapabilities resolves the actor's capabilities for a course from the
// platform role and the course staff assignments.
func ActorCapabilities(userID, courseID uint) Capabilities {
	caps := Capabilities{}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return caps
	}
	if user.Role == "ADMIN" {
		caps.IsAdmin = true
	}

	var assignments []academyModels.CourseStaff
	database.Database.Db.
		Where("course_id = ? AND user_id = ? AND is_deleted = ?", courseID, userID, false).
		Find(&assignments)
	for _, a := range assignments {
		switch a.Role {
		case academyModels.StaffDirector:
			caps.IsDirector = true
		case academyModels.StaffTeacher:
			caps.IsTeacher = true
		}
	}
	return caps
}
