package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
)

// SessionCookieName is the HttpOnly cookie set at login. API clients may send
// the same token as a Bearer header instead.
const SessionCookieName = "dugout_token"

const (
	msgTokenRequired = "Authorization token required"
	msgInvalidToken  = "Invalid token"
)

// Claims are the JWT claims issued at login. Team affiliation is immutable
// for the session lifetime.
type Claims struct {
	UserID uuid.UUID       `json:"user_id"`
	TeamID uuid.UUID       `json:"team_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware issues and verifies HS256 session tokens. A token is valid
// only while its Redis session record exists, so logout revokes it before the
// JWT itself expires.
type AuthMiddleware struct {
	secret     []byte
	expiration time.Duration
}

// NewAuthMiddleware creates the session layer.
func NewAuthMiddleware(secret string, expiration time.Duration) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), expiration: expiration}
}

// Expiration returns the configured token lifetime.
func (am *AuthMiddleware) Expiration() time.Duration {
	return am.expiration
}

// GenerateToken signs a token for the user.
func (am *AuthMiddleware) GenerateToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		TeamID: user.TeamID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(am.expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(am.secret)
}

// ValidateToken parses and verifies a token string.
func (am *AuthMiddleware) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return am.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// RequireAuth rejects the request before any handler runs unless it carries a
// verifiable token with a live session. The 401 message distinguishes a
// missing token from an invalid one.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			utils.UnauthorizedResponse(c, msgTokenRequired)
			c.Abort()
			return
		}

		claims, err := am.ValidateToken(tokenString)
		if err != nil {
			utils.UnauthorizedResponse(c, msgInvalidToken)
			c.Abort()
			return
		}

		// A revoked session invalidates the token ahead of JWT expiry.
		if _, err := utils.GetTokenSession(tokenString); err != nil {
			utils.UnauthorizedResponse(c, msgInvalidToken)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID.String())
		c.Set("team_id", claims.TeamID.String())
		c.Set("email", claims.Email)
		c.Set("role", string(claims.Role))
		c.Set("access_token", tokenString)

		c.Next()
	}
}

// extractToken pulls the token from the Authorization header or, failing
// that, the session cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return authHeader
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// GetUserInfoFromContext rebuilds the authenticated identity from the gin
// context populated by RequireAuth.
func GetUserInfoFromContext(c *gin.Context) (*models.UserInfo, error) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return nil, fmt.Errorf("user_id not found in context: %w", err)
	}
	teamID, err := uuid.Parse(c.GetString("team_id"))
	if err != nil {
		return nil, fmt.Errorf("team_id not found in context: %w", err)
	}

	return &models.UserInfo{
		UserID: userID,
		TeamID: teamID,
		Email:  c.GetString("email"),
		Role:   models.UserRole(c.GetString("role")),
	}, nil
}

// GetTeamIDFromContext extracts the caller's team id.
func GetTeamIDFromContext(c *gin.Context) (uuid.UUID, error) {
	teamIDStr, exists := c.Get("team_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("team_id not found in context")
	}
	return uuid.Parse(teamIDStr.(string))
}
