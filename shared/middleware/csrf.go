package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dugouthq/dugout/shared/utils"
)

// CSRF double-submit: a GET endpoint hands out a random token and sets the
// same token inside a signed cookie. Mutating requests must present the token
// in CSRFHeaderName; the guard compares it against the cookie-embedded value.
// Tokens are reusable until the cookie expires; there is no single-use
// invalidation.
const (
	CSRFCookieName = "dugout_csrf"
	CSRFHeaderName = "x-csrf-token"

	msgCSRFRejected = "Invalid or missing CSRF token"
)

// CSRFGuard issues and verifies double-submit tokens.
type CSRFGuard struct {
	secret       []byte
	ttl          time.Duration
	cookieSecure bool
}

// NewCSRFGuard creates a guard with the given signing secret and cookie TTL.
func NewCSRFGuard(secret string, ttl time.Duration, cookieSecure bool) *CSRFGuard {
	return &CSRFGuard{secret: []byte(secret), ttl: ttl, cookieSecure: cookieSecure}
}

// IssueToken generates a fresh token and its signed cookie value. The token
// goes in the response body; the cookie value is set via SetCookie.
func (g *CSRFGuard) IssueToken() (token, cookieValue string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate CSRF token: %w", err)
	}

	token = hex.EncodeToString(raw)
	expiry := time.Now().Add(g.ttl).Unix()
	cookieValue = g.encode(token, expiry)
	return token, cookieValue, nil
}

// SetCookie writes the signed CSRF cookie on the response.
func (g *CSRFGuard) SetCookie(c *gin.Context, cookieValue string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CSRFCookieName, cookieValue, int(g.ttl.Seconds()), "/", "", g.cookieSecure, true)
}

// Guard rejects mutating requests whose header token does not match the
// cookie-embedded token. GET, HEAD, and OPTIONS pass through untouched.
func (g *CSRFGuard) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFHeaderName)
		cookieValue, err := c.Cookie(CSRFCookieName)
		if headerToken == "" || err != nil {
			utils.ForbiddenResponse(c, msgCSRFRejected)
			c.Abort()
			return
		}

		cookieToken, ok := g.decode(cookieValue)
		if !ok || !hmac.Equal([]byte(cookieToken), []byte(headerToken)) {
			utils.ForbiddenResponse(c, msgCSRFRejected)
			c.Abort()
			return
		}

		c.Next()
	}
}

// encode packs token and expiry with an HMAC signature: token.expiry.sig.
func (g *CSRFGuard) encode(token string, expiry int64) string {
	payload := token + "." + strconv.FormatInt(expiry, 10)
	return payload + "." + g.sign(payload)
}

// decode verifies the cookie signature and expiry, returning the embedded
// token. A cookie that fails verification is treated as missing.
func (g *CSRFGuard) decode(cookieValue string) (string, bool) {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 3 {
		return "", false
	}

	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(g.sign(payload)), []byte(parts[2])) {
		return "", false
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		return "", false
	}

	return parts[0], true
}

func (g *CSRFGuard) sign(payload string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
