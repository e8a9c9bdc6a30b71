package middleware

import (
	"net/http"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/tsel-ticketmaster/tm-ticket/internal/pkg/jwt"
	"github.com/tsel-ticketmaster/tm-ticket/internal/pkg/session"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/errors"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/response"
	"github.com/tsel-ticketmaster/tm-ticket/pkg/status"
)

type SessionClaims struct {
	gojwt.RegisteredClaims
	Role string `json:"role"`
}

// StaffSession authenticates bearer tokens against the session store and
// enforces the role the route requires. Admin routes accept only admins;
// gate routes accept both staff and admins.
type StaffSession struct {
	jsonWebToken *jwt.JSONWebToken
	session      session.Session
	allowedRoles []string
}

func NewAdminSessionMiddleware(jsonWebToken *jwt.JSONWebToken, s session.Session) *StaffSession {
	return &StaffSession{
		jsonWebToken: jsonWebToken,
		session:      s,
		allowedRoles: []string{session.RoleAdmin},
	}
}

func NewGateSessionMiddleware(jsonWebToken *jwt.JSONWebToken, s session.Session) *StaffSession {
	return &StaffSession{
		jsonWebToken: jsonWebToken,
		session:      s,
		allowedRoles: []string{session.RoleStaff, session.RoleAdmin},
	}
}

func (m *StaffSession) Verify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		bearer := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(bearer, "Bearer ")
		if tokenString == "" || tokenString == bearer {
			response.JSON(w, http.StatusUnauthorized, response.RESTEnvelope{
				Status:  status.UNAUTHORIZED,
				Message: "missing bearer token",
			})

			return
		}

		claims := &SessionClaims{}
		if err := m.jsonWebToken.Parse(ctx, tokenString, claims); err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})

			return
		}

		account, err := m.session.Get(ctx, claims.Subject)
		if err != nil {
			ae := errors.Destruct(err)
			response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
				Status:  ae.Status,
				Message: ae.Message,
			})

			return
		}

		allowed := false
		for _, role := range m.allowedRoles {
			if account.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			response.JSON(w, http.StatusForbidden, response.RESTEnvelope{
				Status:  status.FORBIDDEN,
				Message: "this account is not allowed to access this resource",
			})

			return
		}

		ctx = session.SetAccountToCtx(ctx, account)
		next(w, r.WithContext(ctx))
	}
}
