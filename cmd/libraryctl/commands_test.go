package main

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"strings"
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

type harness struct {
	baseURL string
	token   string
}

func newHarness(t *testing.T) *harness {
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
	})
	routes.Setup(app, db, cfg, routes.NewServices(db, cfg))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	tok, err := jwt.GenerateAccessToken(1, school, "libby", string(domain.RoleLibrarian), cfg.JWT.Secret, 15)
	require.NoError(t, err)

	return &harness{baseURL: "http://" + ln.Addr().String() + "/api/v1", token: tok}
}

// run executes one libraryctl invocation and returns its output
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--base-url", h.baseURL, "--token", h.token, "--school", school}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) seed(t *testing.T) (bookID, studentID uint) {
	t.Helper()
	c := client.New(h.baseURL, client.WithToken(h.token))
	ctx := context.Background()

	book, err := c.CreateBook(ctx, services.CreateBookInput{
		Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", Category: "Fiction", Quantity: 1,
	})
	require.NoError(t, err)
	student, err := c.CreateStudent(ctx, services.CreateStudentInput{Name: "Maya"})
	require.NoError(t, err)
	return book.ID, student.ID
}

func Test_Libraryctl_Circulation(t *testing.T) {
	h := newHarness(t)
	bookID, studentID := h.seed(t)

	out, err := h.run(t, "books")
	require.NoError(t, err)
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "Page 1 of 1")

	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	out, err = h.run(t, "issue", "--book", itoa(bookID), "--student", itoa(studentID), "--due", due)
	require.NoError(t, err)
	assert.Contains(t, out, "Book 'Dune' issued to Maya")

	_, err = h.run(t, "issue", "--book", itoa(bookID), "--student", itoa(studentID), "--due", due)
	require.Error(t, err)
	assert.Equal(t, domain.ErrBookUnavailable.Error(), err.Error())

	out, err = h.run(t, "loans", "--status", "borrowed")
	require.NoError(t, err)
	assert.Contains(t, out, "Maya")
	assert.Contains(t, out, "Total 1: 1 borrowed, 0 overdue, 0 returned")

	out, err = h.run(t, "return", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "returned by Maya. Fine: 0.00")

	out, err = h.run(t, "restore")
	require.NoError(t, err)
	assert.Equal(t, "No issues found\n", out)

	out, err = h.run(t, "cleanup")
	require.NoError(t, err)
	assert.Equal(t, "No issues found\n", out)

	out, err = h.run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Returned loans:    1")
}

func Test_Libraryctl_DeleteActiveLoanWarns(t *testing.T) {
	h := newHarness(t)
	bookID, studentID := h.seed(t)

	due := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	_, err := h.run(t, "issue", "--book", itoa(bookID), "--student", itoa(studentID), "--due", due)
	require.NoError(t, err)

	out, err := h.run(t, "delete-loan", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Book loan #1 deleted")
	assert.Contains(t, out, "Warning:")

	out, err = h.run(t, "fix-availability")
	require.NoError(t, err)
	assert.Equal(t, "Restored availability of 1 book(s)\n", out)
}

func Test_Libraryctl_Usage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "issue", "--book", "1")
	assert.EqualError(t, err, "--student or --teacher is required")

	_, err = h.run(t, "return", "abc")
	assert.EqualError(t, err, "invalid ID: abc")

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--base-url", h.baseURL, "--school", "", "books"})
	assert.Error(t, cmd.Execute())
}

func Test_ReadPassword_FromPipe(t *testing.T) {
	var out bytes.Buffer
	password, err := readPassword(strings.NewReader("correct-horse\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "correct-horse", password)
	assert.Empty(t, out.String())
}

func Test_Truncate(t *testing.T) {
	assert.Equal(t, "Dune", truncate("Dune", 10))
	assert.Equal(t, "Ulys…", truncate("Ulysses", 5))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
