package handler // handler defines the HTTP endpoints

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// defaultPerPage bounds listing sizes when the client does not ask for
// a specific page size.
const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// getUserNRP extracts the authenticated user's NRP from the request
// context, where JWTAuth stored it.
func getUserNRP(c echo.Context) (string, error) {
	nrp, ok := c.Get("user_nrp").(string)
	if !ok || nrp == "" {
		return "", errors.New("missing user_nrp in context")
	}
	return nrp, nil
}

// isAdmin reports whether the request carries the admin role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// pageParams parses ?page= and ?per_page= with 1-based pages and
// clamped sizes. Bad values fall back to defaults rather than erroring.
func pageParams(c echo.Context) (page, perPage int) {
	page = 1
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		page = n
	}
	perPage = defaultPerPage
	if n, err := strconv.Atoi(c.QueryParam("per_page")); err == nil && n > 0 {
		perPage = n
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// pathID parses a numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pageMeta is the pagination envelope attached to listing responses.
type pageMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}
