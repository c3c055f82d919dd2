package client_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"libraryhub/internal/adapters/client"
	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/adapters/http/routes"
	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/jwt"
	"libraryhub/internal/testutil/dbtest"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const school = "north-high"

// serve starts the real router on a loopback port and returns its base URL
func serve(t *testing.T) (string, *config.Config) {
	t.Helper()

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

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.CustomErrorHandler,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		UnescapePath:          true,
	})
	routes.Setup(app, db, cfg, routes.NewServices(db, cfg))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String() + "/api/v1", cfg
}

func librarian(t *testing.T, baseURL string, cfg *config.Config) *client.Client {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(1, school, "libby", string(domain.RoleLibrarian), cfg.JWT.Secret, 15)
	require.NoError(t, err)
	return client.New(baseURL, client.WithToken(tok), client.WithTimeout(5*time.Second))
}

func dueIn(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func Test_Client_Circulation(t *testing.T) {
	baseURL, cfg := serve(t)
	c := librarian(t, baseURL, cfg)
	ctx := context.Background()

	book, err := c.CreateBook(ctx, services.CreateBookInput{
		Title:    "Dune",
		Author:   "Frank Herbert",
		ISBN:     "9780441013593",
		Category: "Fiction",
		Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, school, book.SchoolName)
	assert.Equal(t, 1, book.AvailableQuantity)

	student, err := c.CreateStudent(ctx, services.CreateStudentInput{Name: "Maya"})
	require.NoError(t, err)

	loan, err := c.Issue(ctx, client.IssueRequest{
		BookID:       book.ID,
		BorrowerType: "student",
		BorrowerID:   student.ID,
		DueDate:      dueIn(7),
	})
	require.NoError(t, err)
	assert.Equal(t, "borrowed", loan.Status)
	require.NotNil(t, loan.Student)
	assert.Equal(t, "Maya", loan.Student.Name)

	// the only copy is out
	_, err = c.Issue(ctx, client.IssueRequest{
		BookID:       book.ID,
		BorrowerType: "student",
		BorrowerID:   student.ID,
		DueDate:      dueIn(7),
	})
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusConflict))
	assert.Equal(t, domain.ErrBookUnavailable.Error(), err.Error())

	got, err := c.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)
	assert.Equal(t, "out_of_stock", got.Status)

	returned, err := c.Return(ctx, loan.ID, nil)
	require.NoError(t, err)
	assert.True(t, returned.Fine.IsZero())
	assert.Equal(t, "returned", returned.Loan.Status)

	loans, err := c.ListLoans(ctx, school, client.LoanQuery{BorrowerType: "student", Status: "returned"})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, loan.ID, loans[0].ID)

	deleted, err := c.DeleteLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.False(t, deleted.WasActive)
}

func Test_Client_ReturnKeepsCallersCalendarDay(t *testing.T) {
	baseURL, cfg := serve(t)
	c := librarian(t, baseURL, cfg)
	ctx := context.Background()

	book, err := c.CreateBook(ctx, services.CreateBookInput{
		Title: "Emma", Author: "Jane Austen", ISBN: "9780141439587", Category: "Fiction", Quantity: 1,
	})
	require.NoError(t, err)
	student, err := c.CreateStudent(ctx, services.CreateStudentInput{Name: "Ines"})
	require.NoError(t, err)
	loan, err := c.Issue(ctx, client.IssueRequest{
		BookID: book.ID, BorrowerType: "student", BorrowerID: student.ID, DueDate: dueIn(7),
	})
	require.NoError(t, err)

	// midnight today in a zone east of UTC is still yesterday in UTC
	today := time.Now().UTC()
	tokyoMidnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.FixedZone("JST", 9*60*60))

	res, err := c.Return(ctx, loan.ID, &tokyoMidnight)
	require.NoError(t, err)
	assert.Equal(t, today.Format("2006-01-02"), res.ReturnDate.UTC().Format("2006-01-02"))
}

func Test_Client_Repairs(t *testing.T) {
	baseURL, cfg := serve(t)
	c := librarian(t, baseURL, cfg)
	ctx := context.Background()

	book, err := c.CreateBook(ctx, services.CreateBookInput{
		Title: "Emma", Author: "Jane Austen", ISBN: "9780141439587", Category: "Classics", Quantity: 2,
	})
	require.NoError(t, err)
	teacher, err := c.CreateTeacher(ctx, services.CreateTeacherInput{Name: "Mr. Lee"})
	require.NoError(t, err)

	loan, err := c.Issue(ctx, client.IssueRequest{
		BookID: book.ID, BorrowerType: "teacher", BorrowerID: teacher.ID, DueDate: dueIn(3),
	})
	require.NoError(t, err)

	_, err = c.DeleteLoan(ctx, loan.ID)
	require.NoError(t, err)

	restored, err := c.RestoreAvailability(ctx, school)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.RestoredCount)
	require.Len(t, restored.Details, 1)
	assert.Equal(t, 2, restored.Details[0].AvailableQuantity)

	cleaned, err := c.CleanupOrphanedLoans(ctx, school)
	require.NoError(t, err)
	assert.Equal(t, 0, cleaned.CleanedCount)

	runs, err := c.ListRuns(ctx, school, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	dashboard, err := c.Dashboard(ctx, school)
	require.NoError(t, err)
	assert.NotNil(t, dashboard)
}

func Test_Client_ListBooks(t *testing.T) {
	baseURL, cfg := serve(t)
	c := librarian(t, baseURL, cfg)
	ctx := context.Background()

	for _, title := range []string{"Dune", "Emma", "Ulysses"} {
		_, err := c.CreateBook(ctx, services.CreateBookInput{
			Title: title, Author: "Someone", ISBN: "978000000000", Category: "Fiction", Quantity: 1,
		})
		require.NoError(t, err)
	}

	page, err := c.ListBooks(ctx, school, client.BookQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Books, 2)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.EqualValues(t, 3, page.Pagination.TotalBooks)

	page, err = c.ListBooks(ctx, school, client.BookQuery{Search: "emm"})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Emma", page.Books[0].Title)

	categories, err := c.Categories(ctx, school)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fiction"}, categories)
}

func Test_Client_Errors(t *testing.T) {
	baseURL, cfg := serve(t)
	ctx := context.Background()

	_, err := client.New(baseURL).ListLoans(ctx, school, client.LoanQuery{})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	c := librarian(t, baseURL, cfg)
	_, err = c.CreateBook(ctx, services.CreateBookInput{Title: "No author", Quantity: 1})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.Equal(t, "required", apiErr.Fields["author"])

	_, err = c.GetLoan(ctx, 404)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
	assert.Equal(t, domain.ErrLoanNotFound.Error(), err.Error())

	// nothing listens on a closed port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	dead := "http://" + ln.Addr().String() + "/api/v1"
	require.NoError(t, ln.Close())

	_, err = client.New(dead, client.WithTimeout(time.Second)).ListBooks(ctx, school, client.BookQuery{})
	assert.ErrorIs(t, err, client.ErrNetwork)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.ListBooks(cancelled, school, client.BookQuery{})
	assert.ErrorIs(t, err, client.ErrNetwork)
}
