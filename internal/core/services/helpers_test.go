package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/password"
	"libraryhub/internal/testutil/dbtest"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	schoolA = "north-high"
	schoolB = "south-high"
)

// testClock is a settable clock shared by every service of a fixture
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	ctx         context.Context
	db          *gorm.DB
	cfg         *config.Config
	clock       *testClock
	catalog     *services.CatalogService
	borrowers   *services.BorrowerService
	circulation *services.CirculationService
	dashboard   *services.DashboardService
	auth        *services.AuthService
	users       *services.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = password.DefaultCost })

	db := dbtest.Open(t)
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Circulation: config.CirculationConfig{
			FinePolicy: domain.DefaultFinePolicy(),
		},
	}
	clock := &testClock{now: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)}

	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	borrowerRepo := repositories.NewBorrowerRepository(db)
	runRepo := repositories.NewReconciliationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)

	return &fixture{
		ctx:         context.Background(),
		db:          db,
		cfg:         cfg,
		clock:       clock,
		catalog:     services.NewCatalogService(db, bookRepo, loanRepo),
		borrowers:   services.NewBorrowerService(borrowerRepo),
		circulation: services.NewCirculationService(db, bookRepo, loanRepo, borrowerRepo, runRepo, cfg).WithClock(clock.Now),
		dashboard:   services.NewDashboardService(db, bookRepo, loanRepo, cfg).WithClock(clock.Now),
		auth:        services.NewAuthService(userRepo, tokenRepo, cfg),
		users:       services.NewUserService(userRepo),
	}
}

func (f *fixture) book(t *testing.T, school string, quantity int) uint {
	t.Helper()
	b, err := f.catalog.Create(f.ctx, &services.CreateBookInput{
		SchoolName: school,
		Title:      "Book",
		Author:     "Author",
		ISBN:       "978000000000",
		Category:   "Fiction",
		Quantity:   quantity,
	})
	require.NoError(t, err)
	return b.ID
}

func (f *fixture) student(t *testing.T, school string) uint {
	t.Helper()
	s, err := f.borrowers.CreateStudent(f.ctx, &services.CreateStudentInput{SchoolName: school, Name: "Student"})
	require.NoError(t, err)
	return s.ID
}

func (f *fixture) teacher(t *testing.T, school string) uint {
	t.Helper()
	tc, err := f.borrowers.CreateTeacher(f.ctx, &services.CreateTeacherInput{SchoolName: school, Name: "Teacher"})
	require.NoError(t, err)
	return tc.ID
}

func (f *fixture) issue(school string, bookID, studentID uint, due time.Time) (*models.BookLoanResponse, error) {
	return f.circulation.Issue(f.ctx, &services.IssueInput{
		SchoolName:   school,
		BookID:       bookID,
		BorrowerType: "student",
		BorrowerID:   studentID,
		DueDate:      due,
	})
}

func (f *fixture) loadBook(t *testing.T, id uint) *models.Book {
	t.Helper()
	var b models.Book
	require.NoError(t, f.db.Unscoped().First(&b, id).Error)
	return &b
}

func (f *fixture) activeLoans(t *testing.T, bookID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.BookLoan{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&n).Error)
	return n
}

func (f *fixture) tomorrow() time.Time {
	return f.clock.Now().Add(24 * time.Hour)
}
