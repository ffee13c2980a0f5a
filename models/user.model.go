package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage string    `gorm:"default:''"`
	Name         string    `gorm:"default:''"`
	Email        string    `gorm:"unique;not null"`
	Mobile       string    `gorm:"default:''"`
	Role         string    `gorm:"default:'STUDENT'"` // STUDENT, TEACHER, DIRECTOR, ADMIN
	Password     string    `gorm:"not null"`
	LastLogin    time.Time `gorm:"default:NULL"`
	IsDeleted    bool      `gorm:"default:false"`
}
