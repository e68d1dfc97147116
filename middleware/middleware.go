package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/judyrop/handmade-store/auth"
)

const (
	SessionCookie = "session"
	userIDKey     = "userID"
)

// Identity reads the session token from an Authorization bearer header,
// then from the session cookie. The first token that validates wins; with
// none the request stays anonymous.
func Identity(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		var candidates []string
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			candidates = append(candidates, strings.TrimPrefix(header, "Bearer "))
		}
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			candidates = append(candidates, cookie)
		}
		for _, raw := range candidates {
			if raw == "" {
				continue
			}
			if id, err := tokens.Validate(raw); err == nil {
				c.Set(userIDKey, id)
				break
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

// RequireAPIKey checks the X-API-KEY header against key.
func RequireAPIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-API-KEY")
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if id, ok := UserID(c); ok {
			attrs = append(attrs, slog.Uint64("user_id", uint64(id)))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			slog.ErrorContext(c.Request.Context(), "request", attrs...)
		default:
			slog.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}

func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
