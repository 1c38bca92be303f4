package middleware

import (
	"strings"

	"paystream/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func extractToken(c *fiber.Ctx) (string, error) {
	auth := c.Get("Authorization")
	if auth == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "No token provided")
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token format")
	}

	return parts[1], nil
}

func parseSession(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, err := extractToken(c)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

// RequireSession validates the wallet session token minted on connect
// and exposes its claims to handlers.
func RequireSession(c *fiber.Ctx) error {
	claims, err := parseSession(c)
	if err != nil {
		return err
	}

	if wallet, ok := claims["wallet_address"].(string); ok {
		c.Locals("wallet_address", wallet)
	}
	if companyID, ok := claims["company_id"].(string); ok {
		c.Locals("company_id", companyID)
	}

	return c.Next()
}

// RequireCompany additionally demands that the session wallet has a
// registered company bound to it.
func RequireCompany(c *fiber.Ctx) error {
	claims, err := parseSession(c)
	if err != nil {
		return err
	}

	if wallet, ok := claims["wallet_address"].(string); ok {
		c.Locals("wallet_address", wallet)
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return c.Status(403).JSON(fiber.Map{
			"error": "No company registered for this wallet",
		})
	}
	c.Locals("company_id", companyID)

	return c.Next()
}

// CompanyID returns the company bound to the request session, or ""
// when the wallet has not registered one.
func CompanyID(c *fiber.Ctx) string {
	id, _ := c.Locals("company_id").(string)
	return id
}

// WalletAddress returns the connected wallet for the request session.
func WalletAddress(c *fiber.Ctx) string {
	addr, _ := c.Locals("wallet_address").(string)
	return addr
}
