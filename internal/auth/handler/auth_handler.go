package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/darkiku/RfsGov/internal/auth/dto"
	"github.com/darkiku/RfsGov/internal/auth/service"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
	"github.com/darkiku/RfsGov/internal/middleware"
	"github.com/darkiku/RfsGov/internal/obs"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	input.IPAddress = middleware.ClientIP(c)

	resp, err := h.authService.Login(c.Context(), input)
	if err != nil {
		return loginError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "refreshToken is required"})
	}

	resp, err := h.authService.Refresh(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken), errors.Is(err, apperrors.ErrTokenExpired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired refresh token"})
		case errors.Is(err, apperrors.ErrAccountDisabled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account is disabled"})
		default:
			return internalError(c, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	username, _ := c.Locals(middleware.LocalUsername).(string)
	if username == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.authService.Logout(c.Context(), username, middleware.ClientIP(c)); err != nil {
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func loginError(c *fiber.Ctx, err error) error {
	var locked *apperrors.AccountLockedError
	switch {
	case errors.As(err, &locked):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(locked.RetryAfter.Seconds())))
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"error":      "account temporarily locked",
			"retryAfter": int(locked.RetryAfter.Seconds()),
		})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account is disabled"})
	default:
		return internalError(c, err)
	}
}

func internalError(c *fiber.Ctx, err error) error {
	obs.CaptureError(err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
