package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/present/rest/presenter"
	"github.com/homesteadmarket/homestead/internal/usecase"
)

var tracer = otel.Tracer("auth")

// RequireRoles authenticates the request against the listed role namespaces
// and rejects everything else. A bearer token is tried against each allowed
// namespace in order; a role cookie names its namespace directly. Tokens
// never cross namespaces: a partner token presented to an investor-only
// route resolves in no allowed namespace and fails with 401, not 403.
func RequireRoles(auth *usecase.AuthUsecase, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "Middleware.RequireRoles")
			defer span.End()
			c.SetRequest(c.Request().WithContext(ctx))

			if token, role, ok := credentialsFrom(c, roles); ok {
				principal, err := auth.Resolve(ctx, role, token)
				if err == nil {
					span.SetAttributes(attribute.String("role", string(role)))
					c.Set(domain.PrincipalCtxKey, principal)
					c.Set(domain.RoleCtxKey, role)
					c.Set(domain.TokenCtxKey, token)
					return next(c)
				}
				if !isUnauthenticated(err) {
					return presenter.Error(c, err)
				}
			}

			if token := bearerToken(c); token != "" {
				for _, role := range roles {
					principal, err := auth.Resolve(ctx, role, token)
					if err != nil {
						// The token resolved in this namespace but the
						// account cannot act (inactive, etc.): that is a
						// forbidden, not an unknown token.
						if !isUnauthenticated(err) {
							return presenter.Error(c, err)
						}
						continue
					}
					span.SetAttributes(attribute.String("role", string(role)))
					c.Set(domain.PrincipalCtxKey, principal)
					c.Set(domain.RoleCtxKey, role)
					c.Set(domain.TokenCtxKey, token)
					return next(c)
				}
			}

			return c.JSON(http.StatusUnauthorized, presenter.ErrorBody{
				Error: domain.ErrUnauthenticated.Error(),
				Code:  "unauthenticated",
			})
		}
	}
}

// credentialsFrom checks the role-scoped cookies of the allowed namespaces.
func credentialsFrom(c echo.Context, roles []domain.Role) (string, domain.Role, bool) {
	for _, role := range roles {
		cookie, err := c.Cookie(domain.SessionCookieName(role))
		if err != nil || cookie.Value == "" {
			continue
		}
		return cookie.Value, role, true
	}
	return "", "", false
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func isUnauthenticated(err error) bool {
	return err == domain.ErrUnauthenticated
}

// PrincipalFrom pulls the authenticated principal the middleware attached.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(domain.PrincipalCtxKey).(domain.Principal)
	return p, ok
}
