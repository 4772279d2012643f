package store

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/resource?"+query, nil)
	return c
}

func TestParsePagination_Defaults(t *testing.T) {
	p := ParsePagination(testContext(""))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestParsePagination_Explicit(t *testing.T) {
	p := ParsePagination(testContext("page=3&limit=50"))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 100, p.Offset())
}

func TestParsePagination_ClampsLimit(t *testing.T) {
	p := ParsePagination(testContext("limit=5000"))
	assert.Equal(t, 100, p.Limit)
}

func TestParsePagination_IgnoresGarbage(t *testing.T) {
	p := ParsePagination(testContext("page=-2&limit=abc"))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
}

func TestParseSort_Default(t *testing.T) {
	sort, errs := ParseSort(testContext(""), []string{"last_name", "created_at"}, Sort{Column: "last_name", Direction: "ASC"})
	assert.Empty(t, errs)
	assert.Equal(t, "last_name ASC", sort.OrderClause())
}

func TestParseSort_ValidOverrides(t *testing.T) {
	sort, errs := ParseSort(testContext("orderBy=created_at&sortDirection=desc"), []string{"last_name", "created_at"}, Sort{Column: "last_name", Direction: "ASC"})
	assert.Empty(t, errs)
	assert.Equal(t, "created_at DESC", sort.OrderClause())
}

func TestParseSort_RejectsUnknownColumn(t *testing.T) {
	_, errs := ParseSort(testContext("orderBy=password_hash"), []string{"last_name"}, Sort{Column: "last_name", Direction: "ASC"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "orderBy", errs[0].Path)
		assert.Contains(t, errs[0].Message, "last_name")
	}
}

func TestParseSort_RejectsBadDirection(t *testing.T) {
	_, errs := ParseSort(testContext("sortDirection=sideways"), []string{"last_name"}, Sort{Column: "last_name", Direction: "ASC"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "sortDirection", errs[0].Path)
	}
}

func TestParseSort_CollectsBothErrors(t *testing.T) {
	_, errs := ParseSort(testContext("orderBy=nope&sortDirection=sideways"), []string{"last_name"}, Sort{Column: "last_name", Direction: "ASC"})
	assert.Len(t, errs, 2)
}
