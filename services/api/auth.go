package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/middleware"
	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
	"github.com/dugouthq/dugout/shared/validation"
)

// RegisterRequest creates a user. Either team_id (join an existing team as
// staff) or team_name (found a new team as its head coach) must be set.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"required,max=80"`
	TeamID    string `json:"team_id" validate:"omitempty,uuid"`
	TeamName  string `json:"team_name" validate:"omitempty,min=2,max=120"`
	TeamCity  string `json:"team_city" validate:"omitempty,max=120"`
}

// LoginRequest authenticates by email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// handleRegister creates the user, and the team when founding one. A founding
// head coach receives every permission; a joining user starts with none. On
// success the new user is logged in: token, Redis session, and cookie are
// issued the same way handleLogin does it.
func handleRegister(db *gorm.DB, auth *middleware.AuthMiddleware, bcryptCost int, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		errs := validation.Struct(&req)
		if (req.TeamID == "") == (req.TeamName == "") {
			errs = append(errs, validation.FieldError{
				Path:    "team_id",
				Message: "exactly one of team_id or team_name must be provided",
			})
		}
		if len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		var existing models.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			utils.BadRequestResponse(c, "Email already registered")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to process registration")
			return
		}

		user := models.User{
			ID:           uuid.New(),
			Email:        req.Email,
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			IsActive:     true,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if req.TeamName != "" {
				team := models.Team{
					ID:       uuid.New(),
					Name:     req.TeamName,
					City:     req.TeamCity,
					IsActive: true,
				}
				if err := tx.Create(&team).Error; err != nil {
					return err
				}
				user.TeamID = team.ID
				user.Role = models.RoleHeadCoach
			} else {
				teamID, parseErr := uuid.Parse(req.TeamID)
				if parseErr != nil {
					return parseErr
				}
				var team models.Team
				if err := tx.Where("id = ? AND is_active = ?", teamID, true).First(&team).Error; err != nil {
					return err
				}
				user.TeamID = team.ID
				user.Role = models.RoleStaff
			}

			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			// A founding head coach gets every grant up front.
			if user.Role == models.RoleHeadCoach {
				grants := make([]models.PermissionGrant, 0, len(models.AllPermissions))
				for _, p := range models.AllPermissions {
					grants = append(grants, models.PermissionGrant{
						ID:         uuid.New(),
						UserID:     user.ID,
						TeamID:     user.TeamID,
						Permission: p,
						IsGranted:  true,
					})
				}
				if err := tx.Create(&grants).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err == gorm.ErrRecordNotFound {
			utils.BadRequestResponse(c, "Team not found")
			return
		}
		if err != nil {
			// The email pre-check races with the insert; a concurrent
			// duplicate lands here via the unique index.
			if isDuplicateKey(err) {
				utils.BadRequestResponse(c, "Email already registered")
				return
			}
			utils.InternalServerErrorResponse(c, "Failed to create user")
			return
		}

		token, err := auth.GenerateToken(&user)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to generate token")
			return
		}

		session, err := utils.CreateTokenSession(token, user.ID, user.TeamID, auth.Expiration())
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create session")
			return
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(middleware.SessionCookieName, token, int(auth.Expiration().Seconds()), "/", "", cookieSecure, true)

		utils.CreatedResponse(c, "Registration successful", gin.H{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int64(auth.Expiration().Seconds()),
			"session_id":   session.SessionID,
			"user": gin.H{
				"id":         user.ID,
				"team_id":    user.TeamID,
				"email":      user.Email,
				"first_name": user.FirstName,
				"last_name":  user.LastName,
				"role":       user.Role,
			},
		})
	}
}

// handleLogin verifies credentials, issues a session token, and sets the
// HttpOnly session cookie.
func handleLogin(db *gorm.DB, auth *middleware.AuthMiddleware, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if errs := validation.Struct(&req); len(errs) > 0 {
			utils.ValidationErrorResponse(c, errs)
			return
		}

		var user models.User
		if err := db.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
			utils.UnauthorizedResponse(c, "Invalid credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			utils.UnauthorizedResponse(c, "Invalid credentials")
			return
		}

		token, err := auth.GenerateToken(&user)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to generate token")
			return
		}

		session, err := utils.CreateTokenSession(token, user.ID, user.TeamID, auth.Expiration())
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create session")
			return
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(middleware.SessionCookieName, token, int(auth.Expiration().Seconds()), "/", "", cookieSecure, true)

		go func() {
			now := time.Now()
			if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
				logrus.WithError(err).Warn("failed to record last login")
			}
		}()

		utils.OKResponse(c, "Login successful", gin.H{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int64(auth.Expiration().Seconds()),
			"session_id":   session.SessionID,
			"user": gin.H{
				"id":         user.ID,
				"team_id":    user.TeamID,
				"email":      user.Email,
				"first_name": user.FirstName,
				"last_name":  user.LastName,
				"role":       user.Role,
			},
		})
	}
}

// handleLogout revokes the Redis session and clears the cookie.
func handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString("access_token")
		if token != "" {
			if err := utils.RevokeTokenSession(token); err != nil {
				logrus.WithError(err).Warn("failed to revoke session")
			}
		}

		c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
		utils.OKResponse(c, "Logout successful", nil)
	}
}

// handleMe returns the authenticated user's profile with its permission set.
func handleMe(db *gorm.DB, gate *middleware.PermissionGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := middleware.GetUserInfoFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "Authorization token required")
			return
		}

		var user models.User
		if err := db.Where("id = ? AND team_id = ?", info.UserID, info.TeamID).First(&user).Error; err != nil {
			utils.NotFoundResponse(c, "User not found")
			return
		}

		set, err := gate.ResolvePermissions(info)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to resolve permissions")
			return
		}

		utils.OKResponse(c, "Profile retrieved successfully", gin.H{
			"user":        user,
			"permissions": set.Slice(),
		})
	}
}

// handleCSRFToken issues a reusable double-submit token and its paired cookie.
func handleCSRFToken(csrf *middleware.CSRFGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, cookieValue, err := csrf.IssueToken()
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to issue CSRF token")
			return
		}

		csrf.SetCookie(c, cookieValue)
		utils.OKResponse(c, "CSRF token issued", gin.H{"token": token})
	}
}
