package services

import (
	"context"
	"log"
	"strings"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
)

// BorrowerService manages the student and teacher registries
type BorrowerService struct {
	repo repositories.BorrowerRepository
}

// NewBorrowerService creates a new borrower service
func NewBorrowerService(repo repositories.BorrowerRepository) *BorrowerService {
	return &BorrowerService{repo: repo}
}

// CreateStudentInput represents create student input
type CreateStudentInput struct {
	SchoolName string `json:"schoolName" validate:"required"`
	Name       string `json:"name" validate:"required,max=150"`
	RollNumber string `json:"rollNumber" validate:"max=30"`
	ClassName  string `json:"className" validate:"max=50"`
}

// CreateTeacherInput represents create teacher input
type CreateTeacherInput struct {
	SchoolName string `json:"schoolName" validate:"required"`
	Name       string `json:"name" validate:"required,max=150"`
	Email      string `json:"email" validate:"omitempty,email"`
	Subject    string `json:"subject" validate:"max=100"`
}

func (s *BorrowerService) CreateStudent(ctx context.Context, input *CreateStudentInput) (*models.Student, error) {
	student := &models.Student{
		SchoolName: strings.TrimSpace(input.SchoolName),
		Name:       strings.TrimSpace(input.Name),
		RollNumber: strings.TrimSpace(input.RollNumber),
		ClassName:  strings.TrimSpace(input.ClassName),
	}
	if student.SchoolName == "" {
		return nil, domain.ErrSchoolRequired
	}
	if student.Name == "" {
		return nil, domain.Invalidf("name is required")
	}

	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return nil, err
	}

	log.Printf("✅ Student registered: #%d %s (%s)", student.ID, student.Name, student.SchoolName)
	return student, nil
}

func (s *BorrowerService) CreateTeacher(ctx context.Context, input *CreateTeacherInput) (*models.Teacher, error) {
	teacher := &models.Teacher{
		SchoolName: strings.TrimSpace(input.SchoolName),
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Subject:    strings.TrimSpace(input.Subject),
	}
	if teacher.SchoolName == "" {
		return nil, domain.ErrSchoolRequired
	}
	if teacher.Name == "" {
		return nil, domain.Invalidf("name is required")
	}

	if err := s.repo.CreateTeacher(ctx, teacher); err != nil {
		return nil, err
	}

	log.Printf("✅ Teacher registered: #%d %s (%s)", teacher.ID, teacher.Name, teacher.SchoolName)
	return teacher, nil
}

func (s *BorrowerService) ListStudents(ctx context.Context, schoolName string) ([]*models.Student, error) {
	return s.repo.ListStudents(ctx, schoolName)
}

func (s *BorrowerService) ListTeachers(ctx context.Context, schoolName string) ([]*models.Teacher, error) {
	return s.repo.ListTeachers(ctx, schoolName)
}

// DeleteStudent removes a student. Their loans stay behind as orphans.
func (s *BorrowerService) DeleteStudent(ctx context.Context, schoolName string, id uint) error {
	student, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return notFoundAs(err, domain.ErrBorrowerNotFound)
	}
	if student.SchoolName != schoolName {
		return domain.ErrBorrowerNotFound
	}

	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Student deleted: #%d (%s)", id, schoolName)
	return nil
}

// DeleteTeacher removes a teacher. Their loans stay behind as orphans.
func (s *BorrowerService) DeleteTeacher(ctx context.Context, schoolName string, id uint) error {
	teacher, err := s.repo.GetTeacher(ctx, id)
	if err != nil {
		return notFoundAs(err, domain.ErrBorrowerNotFound)
	}
	if teacher.SchoolName != schoolName {
		return domain.ErrBorrowerNotFound
	}

	if err := s.repo.DeleteTeacher(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Teacher deleted: #%d (%s)", id, schoolName)
	return nil
}

// Resolve returns ErrBorrowerNotFound unless the borrower exists in schoolName
func (s *BorrowerService) Resolve(ctx context.Context, schoolName string, borrowerType domain.BorrowerType, borrowerID uint) error {
	ok, err := s.repo.Exists(ctx, schoolName, borrowerType, borrowerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBorrowerNotFound
	}
	return nil
}

// Summaries loads display summaries for a read-side join
func (s *BorrowerService) Summaries(ctx context.Context, schoolName string, borrowerType domain.BorrowerType, ids []uint) (map[uint]*models.BorrowerSummary, error) {
	out := make(map[uint]*models.BorrowerSummary, len(ids))

	switch borrowerType {
	case domain.BorrowerStudent:
		students, err := s.repo.StudentsByIDs(ctx, schoolName, ids)
		if err != nil {
			return nil, err
		}
		for id, st := range students {
			out[id] = st.ToSummary()
		}
	case domain.BorrowerTeacher:
		teachers, err := s.repo.TeachersByIDs(ctx, schoolName, ids)
		if err != nil {
			return nil, err
		}
		for id, t := range teachers {
			out[id] = t.ToSummary()
		}
	default:
		return nil, domain.ErrInvalidBorrowerType
	}

	return out, nil
}
