package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/response"
	"libraryhub/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// writeError maps a domain error class to its status code. The message of a
// classified error reaches the client verbatim.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, err.Error())
	}

	log.Printf("❌ %s %s [%v]: %v", c.Method(), c.Path(), c.Locals("requestID"), err)
	return response.InternalServerError(c, "Internal Server Error")
}

// parseBody decodes and validates a request body. It writes the error reply
// itself and returns false when the body is unusable.
func parseBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	return validBody(c, dst)
}

func validBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := validate.Struct(dst); err != nil {
		if fields, ok := validate.Fields(err); ok {
			return false, response.ValidationFailed(c, fields)
		}
		return false, response.BadRequest(c, err.Error())
	}
	return true, nil
}

// tenantOf resolves the school a body refers to: the caller's own when
// omitted, and a cross-tenant error when it names another one
func tenantOf(c *fiber.Ctx, bodySchool string) (string, error) {
	own := middleware.CurrentSchool(c)
	bodySchool = strings.TrimSpace(bodySchool)
	if bodySchool != "" && bodySchool != own {
		return "", domain.ErrCrossTenant
	}
	return own, nil
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts a calendar day or an RFC 3339 timestamp
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.Invalidf("date %q must be YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}
