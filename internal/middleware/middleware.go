package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/logger"
	"hotelier/internal/metrics"
	"hotelier/internal/models"
	"hotelier/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-ID"

// SessionResolver turns a bearer token into the session it names.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

func abort(c *gin.Context, status int, kind apperrors.Kind, message string) {
	c.AbortWithStatusJSON(status, models.ErrorBody{Error: models.ErrorDetail{Code: string(kind), Message: message}})
}

// RequestID assigns every request an id, reusing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = logger.NewRequestID()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// CORS middleware для обработки CORS запросов
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	cfg.AddAllowHeaders("Authorization", RequestIDHeader)
	cfg.ExposeHeaders = []string{RequestIDHeader}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// Logger middleware для структурированного логирования запросов
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		log := logger.WithContext(c.Request.Context())
		if c.Writer.Status() >= 500 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			log.Error("Request completed with error", logFields...)
			return
		}
		if c.Writer.Status() >= 400 {
			log.Warn("Request rejected", logFields...)
			return
		}
		log.Info("Request completed", logFields...)
	}
}

// Metrics records request latency by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Recovery middleware для восстановления после паники с детальным логированием
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithContext(c.Request.Context()).Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			abort(c, http.StatusInternalServerError, apperrors.KindInternal, "internal server error")
			return
		}
		c.Abort()
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// Auth loads the session named by the bearer token and stores it in the
// request context.
func Auth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="hotelier"`)
			abort(c, http.StatusUnauthorized, apperrors.KindUnauthorized, "missing bearer token")
			return
		}

		s, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrExpired) && !errors.Is(err, session.ErrInvalidToken) {
				logger.WithContext(c.Request.Context()).Error("Failed to resolve session", "error", err)
				abort(c, http.StatusInternalServerError, apperrors.KindInternal, "internal server error")
				return
			}
			abort(c, http.StatusUnauthorized, apperrors.KindUnauthorized, "invalid or expired session")
			return
		}

		c.Set("user_id", s.UserID)
		ctx := session.NewContext(c.Request.Context(), s)
		ctx = logger.ContextWithUserID(ctx, s.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := session.FromContext(c.Request.Context())
		if !ok {
			abort(c, http.StatusUnauthorized, apperrors.KindUnauthorized, apperrors.ErrUnauthorized.Message)
			return
		}
		if !s.IsAdmin() {
			abort(c, http.StatusForbidden, apperrors.KindForbidden, apperrors.ErrForbidden.Message)
			return
		}
		c.Next()
	}
}

// Timeout bounds the request context. Handlers observe it through ctx.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
