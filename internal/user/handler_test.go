package user

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// newTestApp wires the handler behind a lightweight middleware that turns
// X-User-ID / X-User-Role headers into a jwt.Token in locals, so tests do
// not need the full jwtware stack.
func newTestApp(handler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id}
				if role := c.Get("X-User-Role"); role != "" {
					claims["role"] = role
				}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	handler.RegisterPublicRoutes(app)
	handler.RegisterProtectedRoutes(app)
	admin := app.Group("/api/admin", RequireStaff)
	handler.RegisterAdminRoutes(admin)
	return app
}

func newTestHandler() (*Handler, *InMemoryRepository) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)
	return NewHandler(service, []byte("test-secret"), time.Hour), repo
}

func TestRegisterAndLogin(t *testing.T) {
	handler, repo := newTestHandler()
	app := newTestApp(handler)

	payload := `{"name":"Ana","email":"ANA@Example.com","password":"secret1"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"token"`) {
		t.Fatalf("register response missing token: %s", string(b))
	}
	if strings.Contains(string(b), "secret1") {
		t.Fatalf("register response leaks the password")
	}

	// email normalized to lowercase, role forced to customer
	stored, err := repo.GetByEmail("ana@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.Role != RoleCustomer {
		t.Fatalf("expected customer role, got %s", stored.Role)
	}
	if !stored.Active {
		t.Fatalf("new accounts must be active regardless of the backing store")
	}
	if stored.Password == "secret1" {
		t.Fatalf("password stored in plain text")
	}

	// duplicate email is a conflict
	req3 := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(payload))
	req3.Header.Set("Content-Type", "application/json")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("duplicate register failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res3.StatusCode)
	}

	// login with the registered credentials
	login := `{"email":"ana@example.com","password":"secret1"}`
	req4 := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(login))
	req4.Header.Set("Content-Type", "application/json")
	res4, err := app.Test(req4)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on login, got %d", res4.StatusCode)
	}

	// wrong password is a 401
	bad := `{"email":"ana@example.com","password":"wrong"}`
	req5 := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(bad))
	req5.Header.Set("Content-Type", "application/json")
	res5, err := app.Test(req5)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	if res5.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 on bad password, got %d", res5.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	handler, _ := newTestHandler()
	app := newTestApp(handler)

	payload := `{"name":"","email":"not-an-email","password":"123"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}

	var body struct {
		Errors []string `json:"errors"`
	}
	b, _ := io.ReadAll(res.Body)
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(body.Errors) != 3 {
		t.Fatalf("expected 3 validation problems, got %v", body.Errors)
	}
}

func TestProfileRoutes(t *testing.T) {
	handler, repo := newTestHandler()
	app := newTestApp(handler)

	seedUser, _, err := handler.service.Register(User{Name: "Ben", Email: "ben@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	// no token: 401
	res, err := app.Test(httptest.NewRequest("GET", "/api/auth/profile", nil))
	if err != nil {
		t.Fatalf("profile request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req.Header.Set("X-User-ID", strconv.Itoa(seedUser.ID))
	res2, err := app.Test(req)
	if err != nil {
		t.Fatalf("profile request failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}
	b, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b), "ben@example.com") {
		t.Fatalf("profile response missing email: %s", string(b))
	}

	// partial update keeps the stored hash when no password is sent
	before, _ := repo.GetByID(seedUser.ID)
	update := `{"name":"Benjamin"}`
	req3 := httptest.NewRequest("PATCH", "/api/auth/profile", strings.NewReader(update))
	req3.Header.Set("X-User-ID", strconv.Itoa(seedUser.ID))
	req3.Header.Set("Content-Type", "application/json")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("profile update failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res3.StatusCode)
	}
	after, _ := repo.GetByID(seedUser.ID)
	if after.Name != "Benjamin" {
		t.Fatalf("name not updated: %+v", after)
	}
	if after.Password != before.Password {
		t.Fatalf("password hash must survive a profile update without password")
	}
}

func TestAdminUserList(t *testing.T) {
	handler, _ := newTestHandler()
	app := newTestApp(handler)

	// customer is rejected by the staff gate
	req := httptest.NewRequest("GET", "/api/admin/users", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", RoleCustomer)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", res.StatusCode)
	}

	// staff passes the gate but user management needs admin proper
	req2 := httptest.NewRequest("GET", "/api/admin/users", nil)
	req2.Header.Set("X-User-ID", "1")
	req2.Header.Set("X-User-Role", RoleStaff)
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", res2.StatusCode)
	}

	req3 := httptest.NewRequest("GET", "/api/admin/users", nil)
	req3.Header.Set("X-User-ID", "1")
	req3.Header.Set("X-User-Role", RoleAdmin)
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", res3.StatusCode)
	}
}
