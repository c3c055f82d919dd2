package repositories

import (
	"context"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"gorm.io/gorm"
)

// borrowerRepository implements BorrowerRepository interface
type borrowerRepository struct {
	db *gorm.DB
}

// NewBorrowerRepository creates a new borrower repository
func NewBorrowerRepository(db *gorm.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *borrowerRepository) WithTx(tx *gorm.DB) BorrowerRepository {
	return &borrowerRepository{db: tx}
}

func (r *borrowerRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *borrowerRepository) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *borrowerRepository) GetStudent(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *borrowerRepository) GetTeacher(ctx context.Context, id uint) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.WithContext(ctx).First(&teacher, id).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListStudents lists the students of a school by name
func (r *borrowerRepository) ListStudents(ctx context.Context, schoolName string) ([]*models.Student, error) {
	var students []*models.Student
	err := r.db.WithContext(ctx).
		Where("school_name = ?", schoolName).
		Order("name ASC").
		Find(&students).Error
	return students, err
}

// ListTeachers lists the teachers of a school by name
func (r *borrowerRepository) ListTeachers(ctx context.Context, schoolName string) ([]*models.Teacher, error) {
	var teachers []*models.Teacher
	err := r.db.WithContext(ctx).
		Where("school_name = ?", schoolName).
		Order("name ASC").
		Find(&teachers).Error
	return teachers, err
}

// DeleteStudent soft deletes a student; loans are left untouched
func (r *borrowerRepository) DeleteStudent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Student{}, id).Error
}

// DeleteTeacher soft deletes a teacher; loans are left untouched
func (r *borrowerRepository) DeleteTeacher(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Teacher{}, id).Error
}

func borrowerModel(t domain.BorrowerType) interface{} {
	if t == domain.BorrowerTeacher {
		return &models.Teacher{}
	}
	return &models.Student{}
}

// Exists checks whether a borrower resolves inside a school
func (r *borrowerRepository) Exists(ctx context.Context, schoolName string, borrowerType domain.BorrowerType, borrowerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(borrowerModel(borrowerType)).
		Where("school_name = ? AND id = ?", schoolName, borrowerID).
		Count(&count).Error
	return count > 0, err
}

// ExistingIDs returns the subset of ids that still resolve
func (r *borrowerRepository) ExistingIDs(ctx context.Context, schoolName string, borrowerType domain.BorrowerType, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var existing []uint
	err := r.db.WithContext(ctx).
		Model(borrowerModel(borrowerType)).
		Where("school_name = ? AND id IN ?", schoolName, ids).
		Pluck("id", &existing).Error
	if err != nil {
		return nil, err
	}

	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

// StudentsByIDs loads students for a read-side join
func (r *borrowerRepository) StudentsByIDs(ctx context.Context, schoolName string, ids []uint) (map[uint]*models.Student, error) {
	students := make(map[uint]*models.Student, len(ids))
	if len(ids) == 0 {
		return students, nil
	}

	var rows []*models.Student
	if err := r.db.WithContext(ctx).
		Where("school_name = ? AND id IN ?", schoolName, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, s := range rows {
		students[s.ID] = s
	}
	return students, nil
}

// TeachersByIDs loads teachers for a read-side join
func (r *borrowerRepository) TeachersByIDs(ctx context.Context, schoolName string, ids []uint) (map[uint]*models.Teacher, error) {
	teachers := make(map[uint]*models.Teacher, len(ids))
	if len(ids) == 0 {
		return teachers, nil
	}

	var rows []*models.Teacher
	if err := r.db.WithContext(ctx).
		Where("school_name = ? AND id IN ?", schoolName, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, t := range rows {
		teachers[t.ID] = t
	}
	return teachers, nil
}
