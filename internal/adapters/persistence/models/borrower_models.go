package models

import (
	"time"

	"gorm.io/gorm"
)

// Student represents students table
type Student struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SchoolName string         `gorm:"size:100;not null;index" json:"schoolName"`
	Name       string         `gorm:"size:150;not null" json:"name"`
	RollNumber string         `gorm:"size:30" json:"rollNumber"`
	ClassName  string         `gorm:"size:50" json:"className"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Student) TableName() string {
	return "students"
}

// Teacher represents teachers table
type Teacher struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SchoolName string         `gorm:"size:100;not null;index" json:"schoolName"`
	Name       string         `gorm:"size:150;not null" json:"name"`
	Email      string         `gorm:"size:100" json:"email"`
	Subject    string         `gorm:"size:100" json:"subject"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Teacher) TableName() string {
	return "teachers"
}

// BorrowerSummary is the student/teacher sub-object embedded in loan responses
type BorrowerSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber,omitempty"`
	ClassName  string `json:"className,omitempty"`
	Email      string `json:"email,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

func (s *Student) ToSummary() *BorrowerSummary {
	return &BorrowerSummary{
		ID:         s.ID,
		Name:       s.Name,
		RollNumber: s.RollNumber,
		ClassName:  s.ClassName,
	}
}

func (t *Teacher) ToSummary() *BorrowerSummary {
	return &BorrowerSummary{
		ID:      t.ID,
		Name:    t.Name,
		Email:   t.Email,
		Subject: t.Subject,
	}
}
