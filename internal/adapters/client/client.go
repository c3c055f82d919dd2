// Package client is a typed Go client for the LibraryHub HTTP API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNetwork is returned when the server could not be reached or its reply
// could not be read
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx reply. Message is the server's message verbatim.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client talks to one LibraryHub server. BaseURL includes the /api/v1 prefix.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *fiber.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds every request that has no earlier context deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 15 * time.Second,
		http: &fiber.Client{
			UserAgent:   "libraryhub-client",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, e.g. after Login
func (c *Client) SetToken(token string) {
	c.token = token
}

// ============================================================
// Wire types
// ============================================================

// BookQuery selects one page of a catalog
type BookQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// LoanQuery filters a loan listing. Empty fields match everything.
type LoanQuery struct {
	BorrowerType string
	Status       string
}

// IssueRequest is the canonical issue body
type IssueRequest struct {
	SchoolName   string `json:"schoolName,omitempty"`
	BookID       uint   `json:"bookId"`
	BorrowerType string `json:"borrowerType"`
	BorrowerID   uint   `json:"borrowerId"`
	DueDate      string `json:"dueDate"`
	Notes        string `json:"notes,omitempty"`
	LibrarianID  uint   `json:"librarianId,omitempty"`
}

type issueReply struct {
	Message  string                   `json:"message"`
	BookLoan *models.BookLoanResponse `json:"bookLoan"`
}

type returnReply struct {
	Message string `json:"message"`
	services.ReturnResult
}

type deleteReply struct {
	Message string `json:"message"`
	services.DeleteLoanResult
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
	Errors  map[string]string   `json:"errors"`
}

// ============================================================
// Auth
// ============================================================

// Login authenticates and keeps the access token for later calls
func (c *Client) Login(ctx context.Context, username, password string) (*services.AuthResponse, error) {
	var out services.AuthResponse
	err := c.call(ctx, fiber.MethodPost, "/auth/login", nil, services.LoginInput{
		Username: username,
		Password: password,
	}, dataOf(&out))
	if err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

// ============================================================
// Catalog
// ============================================================

// ListBooks returns one page of a school's catalog
func (c *Client) ListBooks(ctx context.Context, schoolName string, q BookQuery) (*services.BookPage, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}

	var out services.BookPage
	if err := c.call(ctx, fiber.MethodGet, "/Books/"+url.PathEscape(schoolName), query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lists the categories in use by a school
func (c *Client) Categories(ctx context.Context, schoolName string) ([]string, error) {
	var out []string
	err := c.call(ctx, fiber.MethodGet, "/Books/"+url.PathEscape(schoolName)+"/categories", nil, nil, dataOf(&out))
	return out, err
}

// GetBook fetches one book
func (c *Client) GetBook(ctx context.Context, id uint) (*models.BookResponse, error) {
	var out models.BookResponse
	if err := c.call(ctx, fiber.MethodGet, bookPath(id), nil, nil, dataOf(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBook adds a title
func (c *Client) CreateBook(ctx context.Context, input services.CreateBookInput) (*models.BookResponse, error) {
	var out models.BookResponse
	if err := c.call(ctx, fiber.MethodPost, "/Book", nil, input, dataOf(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBook applies a partial edit
func (c *Client) UpdateBook(ctx context.Context, id uint, input services.UpdateBookInput) (*models.BookResponse, error) {
	var out models.BookResponse
	if err := c.call(ctx, fiber.MethodPut, bookPath(id), nil, input, dataOf(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBook removes a title
func (c *Client) DeleteBook(ctx context.Context, id uint) error {
	return c.call(ctx, fiber.MethodDelete, bookPath(id), nil, nil, nil)
}

// ============================================================
// Borrowers
// ============================================================

// CreateStudent registers a student
func (c *Client) CreateStudent(ctx context.Context, input services.CreateStudentInput) (*models.Student, error) {
	var out models.Student
	if err := c.call(ctx, fiber.MethodPost, "/Student", nil, input, dataOf(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTeacher registers a teacher
func (c *Client) CreateTeacher(ctx context.Context, input services.CreateTeacherInput) (*models.Teacher, error) {
	var out models.Teacher
	if err := c.call(ctx, fiber.MethodPost, "/Teacher", nil, input, dataOf(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStudents lists the students of a school
func (c *Client) ListStudents(ctx context.Context, schoolName string) ([]*models.Student, error) {
	var out []*models.Student
	err := c.call(ctx, fiber.MethodGet, "/Students/"+url.PathEscape(schoolName), nil, nil, dataOf(&out))
	return out, err
}

// ListTeachers lists the teachers of a school
func (c *Client) ListTeachers(ctx context.Context, schoolName string) ([]*models.Teacher, error) {
	var out []*models.Teacher
	err := c.call(ctx, fiber.MethodGet, "/Teachers/"+url.PathEscape(schoolName), nil, nil, dataOf(&out))
	return out, err
}

// ============================================================
// Circulation
// ============================================================

// ListLoans lists the loans of a school, newest first
func (c *Client) ListLoans(ctx context.Context, schoolName string, q LoanQuery) ([]*models.BookLoanResponse, error) {
	path := loansPath(schoolName)
	switch q.BorrowerType {
	case "student":
		path += "/students"
	case "teacher":
		path += "/teachers"
	}

	query := url.Values{}
	if q.Status != "" {
		query.Set("status", q.Status)
	}

	var reply struct {
		Data []*models.BookLoanResponse `json:"data"`
	}
	if err := c.call(ctx, fiber.MethodGet, path, query, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Data, nil
}

// GetLoan fetches one loan
func (c *Client) GetLoan(ctx context.Context, id uint) (*models.BookLoanResponse, error) {
	var out models.BookLoanResponse
	if err := c.call(ctx, fiber.MethodGet, loanPath(id), nil, nil, dataOf(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Issue lends one copy of a book
func (c *Client) Issue(ctx context.Context, req IssueRequest) (*models.BookLoanResponse, error) {
	var reply issueReply
	if err := c.call(ctx, fiber.MethodPost, "/BookLoan/issue", nil, req, &reply); err != nil {
		return nil, err
	}
	return reply.BookLoan, nil
}

// Return closes a loan. A nil returnDate lets the server use now.
func (c *Client) Return(ctx context.Context, id uint, returnDate *time.Time) (*services.ReturnResult, error) {
	body := map[string]string{}
	if returnDate != nil {
		body["returnDate"] = returnDate.Format("2006-01-02")
	}

	var reply returnReply
	if err := c.call(ctx, fiber.MethodPut, loanPath(id)+"/return", nil, body, &reply); err != nil {
		return nil, err
	}
	return &reply.ReturnResult, nil
}

// DeleteLoan removes a loan record
func (c *Client) DeleteLoan(ctx context.Context, id uint) (*services.DeleteLoanResult, error) {
	var reply deleteReply
	if err := c.call(ctx, fiber.MethodDelete, loanPath(id), nil, nil, &reply); err != nil {
		return nil, err
	}
	return &reply.DeleteLoanResult, nil
}

// CleanupOrphanedLoans runs the orphan cleanup for a school
func (c *Client) CleanupOrphanedLoans(ctx context.Context, schoolName string) (*services.CleanupResult, error) {
	var out services.CleanupResult
	if err := c.call(ctx, fiber.MethodPost, loansPath(schoolName)+"/cleanup", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestoreAvailability recounts every book of a school
func (c *Client) RestoreAvailability(ctx context.Context, schoolName string) (*services.RestoreResult, error) {
	var out services.RestoreResult
	if err := c.call(ctx, fiber.MethodPost, loansPath(schoolName)+"/restore-availability", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshOverdue persists overdue status and fines now
func (c *Client) RefreshOverdue(ctx context.Context, schoolName string) (int, error) {
	var reply struct {
		UpdatedCount int `json:"updatedCount"`
	}
	if err := c.call(ctx, fiber.MethodPost, loansPath(schoolName)+"/refresh-overdue", nil, nil, &reply); err != nil {
		return 0, err
	}
	return reply.UpdatedCount, nil
}

// ListRuns returns the latest reconciliation runs of a school
func (c *Client) ListRuns(ctx context.Context, schoolName string, limit int) ([]*models.ReconciliationRun, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var reply struct {
		Data []*models.ReconciliationRun `json:"data"`
	}
	if err := c.call(ctx, fiber.MethodGet, loansPath(schoolName)+"/reconciliation-runs", query, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Data, nil
}

// Dashboard returns the circulation totals of a school
func (c *Client) Dashboard(ctx context.Context, schoolName string) (*services.DashboardData, error) {
	var out services.DashboardData
	if err := c.call(ctx, fiber.MethodGet, "/Dashboard/"+url.PathEscape(schoolName), nil, nil, dataOf(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================
// Transport
// ============================================================

// dataTarget marks a destination that lives under the "data" key
type dataTarget struct{ v interface{} }

func dataOf(v interface{}) dataTarget { return dataTarget{v: v} }

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	var agent *fiber.Agent
	switch method {
	case fiber.MethodGet:
		agent = c.http.Get(uri)
	case fiber.MethodPost:
		agent = c.http.Post(uri)
	case fiber.MethodPut:
		agent = c.http.Put(uri)
	case fiber.MethodDelete:
		agent = c.http.Delete(uri)
	default:
		return fmt.Errorf("unsupported method %s", method)
	}

	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		agent.JSON(body)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	code, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrNetwork, errs[0])
	}

	if code < 200 || code > 299 {
		apiErr := &APIError{StatusCode: code}
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil {
			apiErr.Message = env.Message
			apiErr.Fields = env.Errors
		}
		return apiErr
	}

	switch target := out.(type) {
	case nil:
		return nil
	case dataTarget:
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		if len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, target.v); err != nil {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	default:
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}
	return nil
}

func bookPath(id uint) string {
	return "/Book/" + strconv.FormatUint(uint64(id), 10)
}

func loanPath(id uint) string {
	return "/BookLoan/" + strconv.FormatUint(uint64(id), 10)
}

func loansPath(schoolName string) string {
	return "/BookLoans/" + url.PathEscape(schoolName)
}
