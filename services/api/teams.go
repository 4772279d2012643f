package main

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
	"github.com/dugouthq/dugout/shared/validation"
)

type UpdateTeamRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=120"`
	City           *string `json:"city" validate:"omitempty,max=120"`
	Abbreviation   *string `json:"abbreviation" validate:"omitempty,min=2,max=8"`
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,hexcolor"`
}

type UpdatePermissionsRequest struct {
	Permissions map[string]bool `json:"permissions" validate:"required,min=1"`
}

// handleTeamDirectory lists every active team's branding. This is the one
// read that crosses team boundaries, so it selects the directory columns
// explicitly instead of returning Team rows.
func handleTeamDirectory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entries []models.TeamDirectoryEntry
		err := db.Model(&models.Team{}).
			Select("id", "name", "city", "abbreviation", "primary_color", "secondary_color").
			Where("is_active = ?", true).
			Order("name ASC").
			Find(&entries).Error
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch team directory")
			return
		}

		utils.OKResponse(c, "Team directory retrieved successfully", entries)
	}
}

func handleGetMyTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var team models.Team
		if err := db.First(&team, "id = ?", info.TeamID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Team not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch team")
			}
			return
		}

		utils.OKResponse(c, "Team retrieved successfully", team)
	}
}

func handleUpdateMyTeam(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var team models.Team
		if err := db.First(&team, "id = ?", info.TeamID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFoundResponse(c, "Team not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch team")
			}
			return
		}

		var req UpdateTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		if req.Name != nil {
			team.Name = *req.Name
		}
		if req.City != nil {
			team.City = *req.City
		}
		if req.Abbreviation != nil {
			team.Abbreviation = *req.Abbreviation
		}
		if req.PrimaryColor != nil {
			team.PrimaryColor = *req.PrimaryColor
		}
		if req.SecondaryColor != nil {
			team.SecondaryColor = *req.SecondaryColor
		}

		if err := db.Save(&team).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update team")
			return
		}

		recordAudit(c, audit, "update", "team", team.ID)
		utils.OKResponse(c, "Team updated successfully", team)
	}
}

const maxLogoSize = 5 << 20 // 5 MB

func handleUploadLogo(db *gorm.DB, logos *utils.LogoUploader, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		if logos == nil {
			utils.ServiceUnavailableResponse(c, "Logo storage is not configured")
			return
		}

		header, err := c.FormFile("logo")
		if err != nil {
			utils.BadRequestResponse(c, "Logo file is required")
			return
		}
		if header.Size > maxLogoSize {
			utils.BadRequestResponse(c, "Logo file exceeds the 5MB limit")
			return
		}

		contentType := header.Header.Get("Content-Type")
		switch contentType {
		case "image/png", "image/jpeg", "image/svg+xml":
		default:
			utils.BadRequestResponse(c, "Logo must be a PNG, JPEG, or SVG image")
			return
		}

		file, err := header.Open()
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to read logo file")
			return
		}
		defer file.Close()

		url, err := logos.Upload(info.TeamID, header.Filename, contentType, file)
		if err != nil {
			logrus.WithError(err).Error("logo upload failed")
			utils.ServiceUnavailableResponse(c, "Failed to store logo")
			return
		}

		if err := db.Model(&models.Team{}).Where("id = ?", info.TeamID).Update("logo_url", url).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update team logo")
			return
		}

		recordAudit(c, audit, "update", "team_logo", info.TeamID)
		utils.OKResponse(c, "Logo uploaded successfully", gin.H{"logo_url": url})
	}
}

func handleListTeamUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}

		var users []models.User
		err := db.Where("team_id = ? AND is_active = ?", info.TeamID, true).
			Order("last_name ASC, first_name ASC").
			Find(&users).Error
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch team users")
			return
		}

		utils.OKResponse(c, "Team users retrieved successfully", users)
	}
}

// findTeamUser loads a user, returning ErrRecordNotFound for users on other
// teams so cross-team probing looks like a missing row.
func findTeamUser(db *gorm.DB, info *models.UserInfo, c *gin.Context) (*models.User, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	var user models.User
	err := db.Where("id = ? AND team_id = ? AND is_active = ?", id, info.TeamID, true).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFoundResponse(c, "User not found")
		} else {
			utils.InternalServerErrorResponse(c, "Failed to fetch user")
		}
		return nil, false
	}
	return &user, true
}

func handleGetUserPermissions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		user, ok := findTeamUser(db, info, c)
		if !ok {
			return
		}

		var granted []models.Permission
		err := db.Model(&models.PermissionGrant{}).
			Where("user_id = ? AND team_id = ? AND is_granted = ?", user.ID, info.TeamID, true).
			Pluck("permission", &granted).Error
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch permissions")
			return
		}

		set := models.NewPermissionSet(granted)
		out := make(map[models.Permission]bool, len(models.AllPermissions))
		for _, p := range models.AllPermissions {
			out[p] = set.Has(p)
		}

		utils.OKResponse(c, "Permissions retrieved successfully", gin.H{
			"user_id":     user.ID,
			"permissions": out,
		})
	}
}

func handleUpdateUserPermissions(db *gorm.DB, audit *AuditProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := currentUser(c)
		if !ok {
			return
		}
		user, ok := findTeamUser(db, info, c)
		if !ok {
			return
		}

		var req UpdatePermissionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		errs := validation.Struct(&req)
		for name := range req.Permissions {
			if !models.ValidPermission(name) {
				errs = append(errs, validation.FieldError{
					Path:    "permissions." + name,
					Message: "unknown permission",
				})
			}
		}
		if len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for name, granted := range req.Permissions {
				perm := models.Permission(name)

				var grant models.PermissionGrant
				findErr := tx.Where("user_id = ? AND team_id = ? AND permission = ?", user.ID, info.TeamID, perm).
					First(&grant).Error
				switch {
				case findErr == gorm.ErrRecordNotFound:
					grant = models.PermissionGrant{
						UserID:     user.ID,
						TeamID:     info.TeamID,
						Permission: perm,
						IsGranted:  granted,
					}
					if err := tx.Create(&grant).Error; err != nil {
						return err
					}
				case findErr != nil:
					return findErr
				default:
					if err := tx.Model(&grant).Update("is_granted", granted).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update permissions")
			return
		}

		if err := utils.InvalidatePermissionSet(info.TeamID, user.ID); err != nil {
			logrus.WithError(err).Warn("failed to invalidate permission cache")
		}

		recordAudit(c, audit, "update", "user_permissions", user.ID)
		utils.OKResponse(c, "Permissions updated successfully", nil)
	}
}
