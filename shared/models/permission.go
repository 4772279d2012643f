package models

import (
	"time"

	"github.com/google/uuid"
)

// Permission names one grantable action. Every CRUD verb per resource has its
// own permission; there is no hierarchy or inheritance between them.
type Permission string

const (
	PermPlayerView   Permission = "player_view"
	PermPlayerCreate Permission = "player_create"
	PermPlayerEdit   Permission = "player_edit"
	PermPlayerDelete Permission = "player_delete"

	PermProspectView   Permission = "prospect_view"
	PermProspectCreate Permission = "prospect_create"
	PermProspectEdit   Permission = "prospect_edit"
	PermProspectDelete Permission = "prospect_delete"

	PermDepthChartView            Permission = "depth_chart_view"
	PermDepthChartCreate          Permission = "depth_chart_create"
	PermDepthChartEdit            Permission = "depth_chart_edit"
	PermDepthChartDelete          Permission = "depth_chart_delete"
	PermDepthChartManagePositions Permission = "depth_chart_manage_positions"

	PermScheduleView   Permission = "schedule_view"
	PermScheduleCreate Permission = "schedule_create"
	PermScheduleEdit   Permission = "schedule_edit"
	PermScheduleDelete Permission = "schedule_delete"

	PermGameView   Permission = "game_view"
	PermGameCreate Permission = "game_create"
	PermGameEdit   Permission = "game_edit"
	PermGameDelete Permission = "game_delete"

	PermScoutView   Permission = "scout_view"
	PermScoutCreate Permission = "scout_create"
	PermScoutEdit   Permission = "scout_edit"
	PermScoutDelete Permission = "scout_delete"

	PermReportView   Permission = "report_view"
	PermReportCreate Permission = "report_create"
	PermReportEdit   Permission = "report_edit"
	PermReportDelete Permission = "report_delete"

	PermTeamEdit          Permission = "team_edit"
	PermManagePermissions Permission = "manage_permissions"
)

// AllPermissions lists every known permission, used when seeding a head coach
// and when validating grant updates.
var AllPermissions = []Permission{
	PermPlayerView, PermPlayerCreate, PermPlayerEdit, PermPlayerDelete,
	PermProspectView, PermProspectCreate, PermProspectEdit, PermProspectDelete,
	PermDepthChartView, PermDepthChartCreate, PermDepthChartEdit, PermDepthChartDelete, PermDepthChartManagePositions,
	PermScheduleView, PermScheduleCreate, PermScheduleEdit, PermScheduleDelete,
	PermGameView, PermGameCreate, PermGameEdit, PermGameDelete,
	PermScoutView, PermScoutCreate, PermScoutEdit, PermScoutDelete,
	PermReportView, PermReportCreate, PermReportEdit, PermReportDelete,
	PermTeamEdit, PermManagePermissions,
}

// ValidPermission reports whether s names a known permission.
func ValidPermission(s string) bool {
	for _, p := range AllPermissions {
		if Permission(s) == p {
			return true
		}
	}
	return false
}

// PermissionGrant is one explicit allow/deny row for a (user, team, permission)
// tuple. A missing row and IsGranted=false both mean deny.
type PermissionGrant struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index:idx_grant_user_team"`
	TeamID     uuid.UUID  `json:"team_id" gorm:"type:uuid;not null;index:idx_grant_user_team"`
	Permission Permission `json:"permission" gorm:"type:varchar(64);not null"`
	IsGranted  bool       `json:"is_granted" gorm:"default:false"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (PermissionGrant) TableName() string {
	return "permission_grants"
}

// PermissionSet is the resolved set of granted permissions for one user on one
// team, as cached by the permission gate.
type PermissionSet map[Permission]bool

// Has reports whether the permission is granted.
func (ps PermissionSet) Has(p Permission) bool {
	return ps[p]
}

// Slice returns the granted permissions in an order suitable for JSON caching.
func (ps PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(ps))
	for _, p := range AllPermissions {
		if ps[p] {
			out = append(out, p)
		}
	}
	return out
}

// NewPermissionSet builds a set from a slice of granted permissions.
func NewPermissionSet(perms []Permission) PermissionSet {
	ps := make(PermissionSet, len(perms))
	for _, p := range perms {
		ps[p] = true
	}
	return ps
}
