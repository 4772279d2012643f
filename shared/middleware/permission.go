package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
)

// PermissionGate answers allow/deny per (user, team, permission) tuple. Each
// action requires its own explicit grant row; there is no hierarchy and no
// inheritance between resources.
type PermissionGate struct {
	db *gorm.DB
}

// NewPermissionGate creates the gate.
func NewPermissionGate(db *gorm.DB) *PermissionGate {
	return &PermissionGate{db: db}
}

// Require denies with a 403 naming the missing permission unless the caller
// holds an explicit grant. Resolved sets are cached in Redis for a few
// minutes; grant updates invalidate the cache.
func (pg *PermissionGate) Require(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := GetUserInfoFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, msgTokenRequired)
			c.Abort()
			return
		}

		set, err := pg.ResolvePermissions(info)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to resolve permissions")
			c.Abort()
			return
		}

		if !set.Has(perm) {
			utils.ForbiddenResponse(c, fmt.Sprintf("Missing required permission: %s", perm))
			c.Abort()
			return
		}

		c.Next()
	}
}

// ResolvePermissions returns the caller's granted set, from cache when warm.
func (pg *PermissionGate) ResolvePermissions(info *models.UserInfo) (models.PermissionSet, error) {
	if set, err := utils.GetCachedPermissionSet(info.TeamID, info.UserID); err == nil {
		return set, nil
	}

	var perms []models.Permission
	err := pg.db.Model(&models.PermissionGrant{}).
		Where("user_id = ? AND team_id = ? AND is_granted = ?", info.UserID, info.TeamID, true).
		Pluck("permission", &perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load permission grants: %w", err)
	}

	set := models.NewPermissionSet(perms)
	if err := utils.CachePermissionSet(info.TeamID, info.UserID, set.Slice()); err != nil {
		// Cache failures are not fatal; the next check just hits the database.
		return set, nil
	}
	return set, nil
}
