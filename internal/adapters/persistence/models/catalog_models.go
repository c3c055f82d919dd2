package models

import (
	"time"

	"gorm.io/gorm"
)

// Book represents books table (one row per title, per school)
type Book struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	SchoolName        string         `gorm:"size:100;not null;index:idx_books_school_category,priority:1" json:"schoolName"`
	Title             string         `gorm:"size:255;not null" json:"title"`
	Author            string         `gorm:"size:255;not null" json:"author"`
	ISBN              string         `gorm:"column:isbn;size:32;not null;index" json:"isbn"`
	Category          string         `gorm:"size:100;not null;index:idx_books_school_category,priority:2" json:"category"`
	Quantity          int            `gorm:"not null;default:0" json:"quantity"`
	AvailableQuantity int            `gorm:"not null;default:0" json:"availableQuantity"`
	Status            string         `gorm:"size:20;not null;default:'available'" json:"status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// BookResponse DTO
type BookResponse struct {
	ID                uint      `json:"id"`
	SchoolName        string    `json:"schoolName"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	ISBN              string    `json:"isbn"`
	Category          string    `json:"category"`
	Quantity          int       `json:"quantity"`
	AvailableQuantity int       `json:"availableQuantity"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:                b.ID,
		SchoolName:        b.SchoolName,
		Title:             b.Title,
		Author:            b.Author,
		ISBN:              b.ISBN,
		Category:          b.Category,
		Quantity:          b.Quantity,
		AvailableQuantity: b.AvailableQuantity,
		Status:            b.Status,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// BookSummary is the book sub-object embedded in loan responses
type BookSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
}

func (b *Book) ToSummary() *BookSummary {
	return &BookSummary{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		ISBN:     b.ISBN,
		Category: b.Category,
	}
}
