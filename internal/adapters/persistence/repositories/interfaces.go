package repositories

import (
	"context"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	ListBySchool(ctx context.Context, schoolName string, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// BorrowerRepository defines access to the student and teacher registries
type BorrowerRepository interface {
	WithTx(tx *gorm.DB) BorrowerRepository

	CreateStudent(ctx context.Context, student *models.Student) error
	CreateTeacher(ctx context.Context, teacher *models.Teacher) error
	GetStudent(ctx context.Context, id uint) (*models.Student, error)
	GetTeacher(ctx context.Context, id uint) (*models.Teacher, error)
	ListStudents(ctx context.Context, schoolName string) ([]*models.Student, error)
	ListTeachers(ctx context.Context, schoolName string) ([]*models.Teacher, error)
	DeleteStudent(ctx context.Context, id uint) error
	DeleteTeacher(ctx context.Context, id uint) error

	// Exists reports whether borrowerID resolves inside schoolName
	Exists(ctx context.Context, schoolName string, borrowerType domain.BorrowerType, borrowerID uint) (bool, error)
	// ExistingIDs returns the subset of ids that resolve inside schoolName
	ExistingIDs(ctx context.Context, schoolName string, borrowerType domain.BorrowerType, ids []uint) (map[uint]bool, error)
	StudentsByIDs(ctx context.Context, schoolName string, ids []uint) (map[uint]*models.Student, error)
	TeachersByIDs(ctx context.Context, schoolName string, ids []uint) (map[uint]*models.Teacher, error)
}
