package main

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dugouthq/dugout/shared/middleware"
	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
)

// parseIDParam reads a uuid path parameter, replying 400 on garbage so
// handlers can return early.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser pulls the authenticated identity; RequireAuth guarantees it is
// present on every protected route.
func currentUser(c *gin.Context) (*models.UserInfo, bool) {
	info, err := middleware.GetUserInfoFromContext(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "Authorization token required")
		return nil, false
	}
	return info, true
}

// parseDate parses an ISO-8601 calendar date.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// copyName is the duplicate-naming rule shared by depth charts and schedule
// templates.
func copyName(name string) string {
	return name + " (Copy)"
}

// isDuplicateKey matches postgres unique-violation errors.
func isDuplicateKey(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "23505")
}
