package cart

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func newHandlerApp(service *Service) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	NewHandler(service).RegisterProtectedRoutes(app)
	return app
}

func TestCartRoutesRequireAuth(t *testing.T) {
	service, _, _ := newTestService()
	app := newHandlerApp(service)

	res, err := app.Test(httptest.NewRequest("GET", "/api/cart", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestCartFlow(t *testing.T) {
	service, _, _ := newTestService()
	app := newHandlerApp(service)

	// add
	req := httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"productId":1,"quantity":2}`))
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var added struct {
		Data CartItem `json:"data"`
	}
	b, _ := io.ReadAll(res.Body)
	if err := json.Unmarshal(b, &added); err != nil {
		t.Fatalf("bad add response: %v", err)
	}
	if added.Data.UnitPrice != 199.99 {
		t.Fatalf("price snapshot missing: %+v", added.Data)
	}

	// list with total
	reqList := httptest.NewRequest("GET", "/api/cart", nil)
	reqList.Header.Set("X-User-ID", "7")
	resList, err := app.Test(reqList)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var listed struct {
		Count int        `json:"count"`
		Total float64    `json:"total"`
		Data  []CartItem `json:"data"`
	}
	bl, _ := io.ReadAll(resList.Body)
	if err := json.Unmarshal(bl, &listed); err != nil {
		t.Fatalf("bad list response: %v", err)
	}
	if listed.Count != 1 || listed.Total != 2*199.99 {
		t.Fatalf("unexpected list: %+v", listed)
	}

	// update quantity
	itemID := strconv.Itoa(added.Data.ID)
	reqUpd := httptest.NewRequest("PUT", "/api/cart/"+itemID, strings.NewReader(`{"quantity":5}`))
	reqUpd.Header.Set("X-User-ID", "7")
	reqUpd.Header.Set("Content-Type", "application/json")
	resUpd, err := app.Test(reqUpd)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if resUpd.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resUpd.StatusCode)
	}

	// over stock is a conflict
	reqOver := httptest.NewRequest("PUT", "/api/cart/"+itemID, strings.NewReader(`{"quantity":99}`))
	reqOver.Header.Set("X-User-ID", "7")
	reqOver.Header.Set("Content-Type", "application/json")
	resOver, err := app.Test(reqOver)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if resOver.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 when over stock, got %d", resOver.StatusCode)
	}

	// remove
	reqDel := httptest.NewRequest("DELETE", "/api/cart/"+itemID, nil)
	reqDel.Header.Set("X-User-ID", "7")
	resDel, err := app.Test(reqDel)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if resDel.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resDel.StatusCode)
	}
}

func TestAddInactiveProduct(t *testing.T) {
	service, _, _ := newTestService()
	app := newHandlerApp(service)

	req := httptest.NewRequest("POST", "/api/cart", strings.NewReader(`{"productId":2,"quantity":1}`))
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for inactive product, got %d", res.StatusCode)
	}
}
