package serverutils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleCustomer = "user"
	RoleAdmin    = "admin"
	RoleRider    = "rider"
	RoleKitchen  = "kitchen"
)

// Claims are the parts of a token this service reads.
type Claims struct {
	UserId string
	Role   string
}

// ParseToken verifies an HMAC-signed token and extracts its claims. A token
// without a role claim belongs to a customer.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid claims")
	}
	userId, _ := claims["user_id"].(string)
	if userId == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Token missing user_id")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleCustomer
	}
	return &Claims{UserId: userId, Role: role}, nil
}

// JwtMiddleware accepts a bearer token signed with secret and stores its
// user_id and role claims in locals. When roles are given the token's role
// must be one of them.
func JwtMiddleware(secret string, roles ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		claims, err := ParseToken(secret, authHeader[7:])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, err.Error()))
		}
		if !HasRole(roles, claims.Role) {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "Access denied"))
		}

		ctx.Locals("user_id", claims.UserId)
		ctx.Locals("role", claims.Role)
		return ctx.Next()
	}
}

// HasRole reports whether role is allowed. An empty list allows any role.
func HasRole(allowed []string, role string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// ActorID is the authenticated user id as recorded in the action log.
func ActorID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals("user_id").(string)
	return id
}

func Role(ctx *fiber.Ctx) string {
	role, _ := ctx.Locals("role").(string)
	return role
}

// UserID parses the authenticated user id.
func UserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ActorID(ctx))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user id in token")
	}
	return id, nil
}
