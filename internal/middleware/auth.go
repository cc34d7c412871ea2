// Package middleware provides authentication, logging and rate limiting middleware.
package middleware

import (
	"context"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the externally-verified identity assertion attached to a
// request. TokenIdentifier is the provider's stable subject token; the other
// claims are optional profile hints.
type Identity struct {
	TokenIdentifier string
	Name            string
	Email           string
	AvatarURL       string
}

// identityLocalsKey is the Fiber locals key under which the Identity is stored.
const identityLocalsKey = "identity"

// AuthConfig holds the verification parameters for identity assertions.
type AuthConfig struct {
	Secret string
	Issuer string
}

// IdentityFromCtx returns the Identity stored by AuthRequired, or nil when
// the request is anonymous.
func IdentityFromCtx(c *fiber.Ctx) *Identity {
	if ident, ok := c.Locals(identityLocalsKey).(*Identity); ok {
		return ident
	}
	return nil
}

// AuthRequired returns middleware that rejects requests without a valid
// identity assertion. The parsed Identity is stored in Fiber locals and the
// token identifier is synced to the request context for logging.
func AuthRequired(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, err := parseIdentity(c, cfg)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals(identityLocalsKey, ident)
		return c.Next()
	}
}

// OptionalAuth parses an identity assertion when one is present but never
// rejects the request. Anonymous reads must degrade gracefully.
func OptionalAuth(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ident, err := parseIdentity(c, cfg); err == nil {
			c.Locals(identityLocalsKey, ident)
		}
		return c.Next()
	}
}

// SyncUserID stores the resolved durable user ID in Fiber locals and the
// request context so rate limiting and the context-aware logger pick it up.
func SyncUserID(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

func parseIdentity(c *fiber.Ctx, cfg AuthConfig) (*Identity, error) {
	authHeader := c.Get("Authorization")
	tokenString := ""
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return nil, models.NewUnauthenticatedError("Authorization required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthenticatedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != cfg.Issuer {
		return nil, models.NewUnauthenticatedError("Invalid token issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, models.NewUnauthenticatedError("Invalid subject claim")
	}

	ident := &Identity{TokenIdentifier: sub}
	if name, nameOk := claims["name"].(string); nameOk {
		ident.Name = name
	}
	if email, emailOk := claims["email"].(string); emailOk {
		ident.Email = email
	}
	if picture, pictureOk := claims["picture"].(string); pictureOk {
		ident.AvatarURL = picture
	}
	return ident, nil
}
