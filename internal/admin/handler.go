package admin

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/darkiku/RfsGov/internal/audit"
	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/auth/service"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
	"github.com/darkiku/RfsGov/internal/middleware"
	"github.com/darkiku/RfsGov/internal/obs"
)

var validRoles = map[string]bool{
	domain.RoleUser:               true,
	domain.RoleAdmin:              true,
	domain.RoleNewsManager:        true,
	domain.RoleProcurementManager: true,
	domain.RoleAboutManager:       true,
	domain.RoleServicesManager:    true,
	domain.RoleContactsManager:    true,
	domain.RoleHRManager:          true,
}

type Handler struct {
	repo        *Repository
	authService *service.AuthService
	audit       *audit.Service
	log         *obs.Logger
}

func NewHandler(repo *Repository, authService *service.AuthService, auditSvc *audit.Service, log *obs.Logger) *Handler {
	return &Handler{repo: repo, authService: authService, audit: auditSvc, log: log}
}

type userView struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"isActive"`
	LastLogin *string `json:"lastLogin"`
	CreatedAt string  `json:"createdAt"`
}

func toView(u *domain.User) userView {
	view := userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if u.LastLogin != nil {
		last := u.LastLogin.Format("2006-01-02T15:04:05Z07:00")
		view.LastLogin = &last
	}
	return view
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.repo.ListUsers(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, toView(&users[i]))
	}
	return c.JSON(views)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.repo.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return internalError(c, err)
	}
	return c.JSON(toView(user))
}

type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var input CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username, email and password are required"})
	}
	if err := checkPasswordStrength(input.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 8 characters and contain letters and digits"})
	}
	if input.Role == "" {
		input.Role = domain.RoleUser
	}
	if !validRoles[input.Role] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown role"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: string(hash),
		Role:         input.Role,
		IsActive:     true,
	}
	if err := h.repo.CreateUser(c.Context(), user); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
		case errors.Is(err, apperrors.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		default:
			return internalError(c, err)
		}
	}

	h.recordAudit(c, "CREATE_USER", user.ID, fmt.Sprintf("created user %s with role %s", user.Username, user.Role))
	return c.Status(fiber.StatusCreated).JSON(toView(user))
}

type UpdateUserInput struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var input UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}
	if !validRoles[input.Role] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown role"})
	}

	user, err := h.repo.UpdateUser(c.Context(), c.Params("id"), input.Email, input.FullName, input.Role, input.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		case errors.Is(err, apperrors.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email already registered"})
		default:
			return internalError(c, err)
		}
	}

	h.recordAudit(c, "UPDATE_USER", user.ID, fmt.Sprintf("updated user %s", user.Username))
	return c.JSON(toView(user))
}

type UpdateRoleInput struct {
	Role string `json:"role"`
}

func (h *Handler) UpdateRole(c *fiber.Ctx) error {
	var input UpdateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if !validRoles[input.Role] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown role"})
	}

	user, err := h.repo.UpdateRole(c.Context(), c.Params("id"), input.Role)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return internalError(c, err)
	}

	h.recordAudit(c, "UPDATE_ROLE", user.ID, fmt.Sprintf("changed role of %s to %s", user.Username, user.Role))
	return c.JSON(toView(user))
}

func (h *Handler) ToggleStatus(c *fiber.Ctx) error {
	user, err := h.repo.ToggleStatus(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return internalError(c, err)
	}

	h.recordAudit(c, "TOGGLE_USER_STATUS", user.ID,
		fmt.Sprintf("user %s active=%s", user.Username, strconv.FormatBool(user.IsActive)))
	return c.JSON(toView(user))
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if actorID, _ := c.Locals(middleware.LocalUserID).(string); actorID == id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot delete own account"})
	}

	if err := h.repo.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return internalError(c, err)
	}

	h.recordAudit(c, "DELETE_USER", id, "deleted user")
	return c.SendStatus(fiber.StatusNoContent)
}

type UpdatePasswordInput struct {
	Password string `json:"password"`
}

func (h *Handler) UpdatePassword(c *fiber.Ctx) error {
	var input UpdatePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := checkPasswordStrength(input.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password must be at least 8 characters and contain letters and digits"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, err)
	}

	if err := h.repo.UpdatePassword(c.Context(), c.Params("id"), string(hash)); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return internalError(c, err)
	}

	h.recordAudit(c, "UPDATE_PASSWORD", c.Params("id"), "changed user password")
	return c.SendStatus(fiber.StatusNoContent)
}

// Unlock clears the failed-login state for a username so the account can
// sign in again before the lockout window expires.
func (h *Handler) Unlock(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username is required"})
	}

	h.authService.Unlock(username)
	h.recordAudit(c, "UNLOCK_ACCOUNT", "", fmt.Sprintf("unlocked account %s", username))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.repo.GetDashboardStats(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) ListAuditLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	entries, err := h.audit.List(c.Context(), limit, offset)
	if err != nil {
		return internalError(c, err)
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return c.JSON(entries)
}

func (h *Handler) recordAudit(c *fiber.Ctx, action, entityID, details string) {
	actorID, _ := c.Locals(middleware.LocalUserID).(string)
	event := domain.AuditEvent{
		UserID:     actorID,
		Action:     action,
		EntityType: "USER",
		EntityID:   entityID,
		Details:    details,
		IPAddress:  middleware.ClientIP(c),
	}
	if err := h.audit.Record(c.Context(), event); err != nil {
		h.log.Error("failed to record audit event", map[string]any{"action": action, "error": err.Error()})
	}
}

func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return apperrors.ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}
	return nil
}

func internalError(c *fiber.Ctx, err error) error {
	obs.CaptureError(err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
