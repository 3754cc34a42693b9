package user

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type Handler struct {
	service *Service
	secret  []byte
	expiry  time.Duration
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewHandler(service *Service, secret []byte, expiry time.Duration) *Handler {
	return &Handler{service: service, secret: secret, expiry: expiry}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/auth/register", h.register)
	app.Post("/api/auth/login", h.login)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/auth/profile", h.getProfile)
	app.Put("/api/auth/profile", h.updateProfile)
	app.Patch("/api/auth/profile", h.updateProfile)
}

// RegisterAdminRoutes mounts user management. Unlike the catalog surface
// these require the admin role proper, not staff.
func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/users", h.listUsers)
}

func (h *Handler) listUsers(c *fiber.Ctx) error {
	if !IsAdminCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "insufficient permissions",
		})
	}

	users := h.service.List()
	response := make([]User, 0, len(users))
	for _, u := range users {
		response = append(response, sanitizeUser(u))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(response),
		"data":    response,
	})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
			"error":   err.Error(),
		})
	}

	created, problems, err := h.service.Register(User{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Phone:    payload.Phone,
		Address:  payload.Address,
	})
	if err != nil {
		if err == ErrEmailExists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "email already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not register user",
			"error":   err.Error(),
		})
	}
	if len(problems) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "validation failed",
			"errors":  problems,
		})
	}

	token, err := h.signToken(created)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  sanitizeUser(created),
			"token": token,
		},
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
			"error":   err.Error(),
		})
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "invalid email or password",
		})
	}

	token, err := h.signToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":  sanitizeUser(user),
			"token": token,
		},
	})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "unauthorized",
		})
	}

	user, err := h.service.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "user not found",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": sanitizeUser(user)})
}

type profileUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "unauthorized",
		})
	}

	existing, err := h.service.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "user not found",
		})
	}

	var payload profileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
			"error":   err.Error(),
		})
	}

	if payload.Name != nil {
		existing.Name = *payload.Name
	}
	if payload.Phone != nil {
		existing.Phone = payload.Phone
	}
	if payload.Address != nil {
		existing.Address = payload.Address
	}
	// profile updates never touch the stored hash unless a new password
	// is supplied
	existing.Password = ""
	if payload.Password != nil && *payload.Password != "" {
		if len(*payload.Password) < PasswordMinLen {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "validation failed",
				"errors":  []string{"password must be at least 6 characters"},
			})
		}
		existing.Password = *payload.Password
	}

	updated, err := h.service.Update(userID, existing)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not update profile",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": sanitizeUser(updated)})
}

func (h *Handler) signToken(user User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(h.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in c.Locals("user"). Several packages read the caller identity this
// way, so it lives here for reuse.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return 0, err
	}
	if raw, ok := claims["user_id"]; ok {
		switch v := raw.(type) {
		case float64:
			return int(v), nil
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case string:
			id, err := strconv.Atoi(v)
			if err != nil {
				return 0, fiber.ErrUnauthorized
			}
			return id, nil
		default:
			return 0, fiber.ErrUnauthorized
		}
	}
	return 0, fiber.ErrUnauthorized
}

// GetRoleFromCtx extracts the role claim from the JWT token.
func GetRoleFromCtx(c *fiber.Ctx) (string, error) {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return "", err
	}
	if raw, ok := claims["role"]; ok {
		if role, ok := raw.(string); ok {
			return role, nil
		}
	}
	return "", fiber.ErrUnauthorized
}

// IsAdminCtx reports whether the caller's token carries the admin role.
func IsAdminCtx(c *fiber.Ctx) bool {
	role, err := GetRoleFromCtx(c)
	return err == nil && role == RoleAdmin
}

// RequireStaff rejects callers whose token is not staff or admin. Mount
// it on route groups that manage the catalog.
func RequireStaff(c *fiber.Ctx) error {
	role, err := GetRoleFromCtx(c)
	if err != nil || !CanManageCatalog(role) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "insufficient permissions",
		})
	}
	return c.Next()
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, error) {
	u := c.Locals("user")
	if u == nil {
		return nil, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func sanitizeUser(user User) User {
	user.Password = ""
	return user
}
