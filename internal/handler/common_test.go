package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(rawQuery string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestPageParamsDefaults(t *testing.T) {
	page, perPage := pageParams(contextWithQuery(""))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPerPage, perPage)
}

func TestPageParamsParsesValues(t *testing.T) {
	page, perPage := pageParams(contextWithQuery("page=3&per_page=50"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, perPage)
}

func TestPageParamsClampsPerPage(t *testing.T) {
	_, perPage := pageParams(contextWithQuery("per_page=10000"))
	assert.Equal(t, maxPerPage, perPage)
}

func TestPageParamsIgnoresBadValues(t *testing.T) {
	page, perPage := pageParams(contextWithQuery("page=abc&per_page=-4"))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPerPage, perPage)
}

func TestGetUserNRP(t *testing.T) {
	c := contextWithQuery("")
	_, err := getUserNRP(c)
	assert.Error(t, err)

	c.Set("user_nrp", "5025201000")
	nrp, err := getUserNRP(c)
	assert.NoError(t, err)
	assert.Equal(t, "5025201000", nrp)
}

func TestIsAdmin(t *testing.T) {
	c := contextWithQuery("")
	assert.False(t, isAdmin(c))

	c.Set("role", "user")
	assert.False(t, isAdmin(c))

	c.Set("role", "admin")
	assert.True(t, isAdmin(c))
}
