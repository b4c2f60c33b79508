package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/apperr"
	"supplies-service/internal/model"
	"supplies-service/internal/policy"
	"supplies-service/internal/session"
	"supplies-service/pkg/jwtutil"
	"supplies-service/pkg/logger"
	"supplies-service/prometheus"
)

const sessionKey = "session"

// JWTAuthMiddleware resolves the bearer token into the request Session
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_token")
				return apperr.Unauthorized("missing authorization token")
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return apperr.Unauthorized("invalid authorization format, expected Bearer token")
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return apperr.Unauthorized("invalid or expired token")
			}

			role, err := model.ParseRole(claims.Role)
			if err != nil {
				log.Warn("Token carries an unknown role", zap.String("role", claims.Role))
				prometheus.RecordAuthError("invalid_role")
				return apperr.Unauthorized("invalid or expired token")
			}

			s := &session.Session{UserID: claims.UserID, Email: claims.Email, Role: role}
			c.Set(sessionKey, s)
			c.SetRequest(c.Request().WithContext(session.WithSession(c.Request().Context(), s)))

			log.Debug("JWT token validated",
				zap.String("user_id", s.UserID),
				zap.String("role", string(s.Role)))

			return next(c)
		}
	}
}

// SessionFrom returns the session set by JWTAuthMiddleware
func SessionFrom(c echo.Context) (*session.Session, bool) {
	if s, ok := c.Get(sessionKey).(*session.Session); ok && s != nil {
		return s, true
	}
	return session.FromContext(c.Request().Context())
}

// ActorFrom returns the policy actor of the request; anonymous when unauthenticated
func ActorFrom(c echo.Context) policy.Actor {
	s, ok := SessionFrom(c)
	if !ok {
		return policy.Actor{}
	}
	return policy.Actor{ID: s.UserID, Role: s.Role}
}

// RequirePermission lets the request through only when the role gate for kind/op allows the caller
func RequirePermission(p *policy.Policy, kind policy.Kind, op policy.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFrom(c)
			decision := p.CanAccess(actor, policy.Resource{Kind: kind}, op)
			if decision.Allowed() {
				return next(c)
			}

			logger.FromEcho(c).Warn("Permission denied",
				zap.String("user_id", actor.ID),
				zap.String("role", string(actor.Role)),
				zap.String("resource", string(kind)),
				zap.String("operation", string(op)),
				zap.String("reason", decision.Reason))

			if !actor.Authenticated() {
				prometheus.RecordAuthError("missing_token")
				return apperr.Unauthorized(decision.Reason)
			}
			prometheus.RecordAuthError("forbidden")
			return apperr.Forbidden(decision.Reason)
		}
	}
}
