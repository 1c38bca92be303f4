package handlers

import (
	"time"

	"paystream/config"
	"paystream/middleware"
	"paystream/types"
	"paystream/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type ConnectWalletRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required"`
}

// ConnectWallet mints a session token for a wallet address. When the
// wallet already has a registered company the session is bound to it.
// This is demo-grade session plumbing, not signature-verified auth.
func ConnectWallet(c *fiber.Ctx) error {
	var req ConnectWalletRequest
	if err := c.BodyParser(&req); err != nil || req.WalletAddress == "" {
		return c.Status(400).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInvalidInput,
		})
	}

	company, err := Companies.GetByWallet(req.WalletAddress)
	if err != nil {
		utils.Logger.Error("Failed to look up company", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrDatabaseError,
		})
	}

	claims := jwt.MapClaims{
		"wallet_address": req.WalletAddress,
		"exp":            time.Now().Add(config.AppConfig.TokenExpiry).Unix(),
	}
	if company != nil {
		claims["company_id"] = company.ID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		utils.Logger.Error("Failed to sign session token", zap.Error(err))
		return c.Status(500).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrInternalError,
		})
	}

	data := fiber.Map{"token": signed}
	if company != nil {
		data["company"] = company
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Message: "Wallet connected",
		Data:    data,
	})
}

// GetWalletInfo reports the connected network and the session wallet's
// balance through the gateway.
func GetWalletInfo(c *fiber.Ctx) error {
	ctx := c.Context()

	network, err := Gateway.GetNetwork(ctx)
	if err != nil {
		utils.Logger.Error("Failed to fetch network", zap.Error(err))
		return c.Status(502).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrBlockchainError,
		})
	}

	address := middleware.WalletAddress(c)
	if address == "" {
		return c.Status(401).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrUnauthorized,
		})
	}
	balance, err := Gateway.GetBalance(ctx, address)
	if err != nil {
		utils.Logger.Error("Failed to fetch balance", zap.Error(err))
		return c.Status(502).JSON(types.APIResponse{
			Success: false,
			Error:   types.ErrBlockchainError,
		})
	}

	return c.JSON(types.APIResponse{
		Success: true,
		Data: fiber.Map{
			"network": network,
			"address": address,
			"balance": balance,
		},
	})
}
