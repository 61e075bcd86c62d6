package http

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const actorKey = "dispatch.actor"

// Claims is the bearer token payload: the subject is the user id and Admin carries the
// admin claim.
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Authenticator turns bearer tokens into kernel.Actor values.
type Authenticator struct {
	secret []byte
	issuer string
}

func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// Middleware attaches the caller to the request. A request without a token continues
// as anonymous so the use case rejects it with unauthenticated; a bad token is rejected
// here.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return errs.NewUnauthenticatedError("missing bearer token")
			}

			actor, err := a.Actor(raw)
			if err != nil {
				return err
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// Actor verifies a token and returns its identity.
func (a *Authenticator) Actor(raw string) (kernel.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithExpirationRequired(), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return kernel.Actor{}, errs.NewUnauthenticatedError("invalid token")
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, errs.NewUnauthenticatedError("invalid token subject")
	}
	return kernel.NewActor(id, claims.Admin)
}

// Issue signs a token for userID. Operators use it to mint service tokens.
func (a *Authenticator) Issue(userID kernel.UUID, admin bool, ttl time.Duration, now time.Time) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// actorFrom returns the caller, or the anonymous actor when no token was sent.
func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorKey).(kernel.Actor)
	return actor
}
