package main

import (
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/tienda-labs/ecommerce-backend/internal/cart"
	"github.com/tienda-labs/ecommerce-backend/internal/catalog"
	"github.com/tienda-labs/ecommerce-backend/internal/category"
	"github.com/tienda-labs/ecommerce-backend/internal/config"
	"github.com/tienda-labs/ecommerce-backend/internal/order"
	"github.com/tienda-labs/ecommerce-backend/internal/product"
	"github.com/tienda-labs/ecommerce-backend/internal/subcategory"
	"github.com/tienda-labs/ecommerce-backend/internal/upload"
	"github.com/tienda-labs/ecommerce-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	ensureSchema(db)

	images := upload.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService, []byte(cfg.JWTSecret), cfg.JWTExpiry)

	categoryRepo := category.NewPostgresRepository(db)
	subcategoryRepo := subcategory.NewPostgresRepository(db)
	productRepo := product.NewPostgresRepository(db)

	categoryService := category.NewService(categoryRepo)
	subcategoryService := subcategory.NewService(subcategoryRepo)
	productService := product.NewService(productRepo)

	engine := catalog.NewEngine(categoryRepo, subcategoryRepo, productRepo, catalog.NewPostgresRepository(db))
	catalogHandler := catalog.NewHandler(engine, images)

	cartService := cart.NewService(cart.NewPostgresRepository(db), productService)
	cartHandler := cart.NewHandler(cartService)

	orderService := order.NewService(order.NewPostgresRepository(db))
	orderHandler := order.NewHandler(orderService)

	// public surface, registered ahead of the JWT middleware
	userHandler.RegisterPublicRoutes(app)
	category.NewHandler(categoryService, subcategoryService).RegisterPublicRoutes(app)
	subcategory.NewHandler(subcategoryService, productService).RegisterPublicRoutes(app)
	product.NewHandler(productService).RegisterPublicRoutes(app)
	app.Static("/uploads", cfg.UploadDir)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		// catalog reads stay public even when a route slips below this
		// middleware
		Filter: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet {
				return false
			}
			p := c.Path()
			return strings.HasPrefix(p, "/api/categories") ||
				strings.HasPrefix(p, "/api/subcategories") ||
				strings.HasPrefix(p, "/api/products") ||
				strings.HasPrefix(p, "/uploads")
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	admin := app.Group("/api/admin", user.RequireStaff)
	catalogHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)

	log.Fatal(app.Listen(cfg.Addr))
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s %d %v", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(url string) *sql.DB {
	if url == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

// ensureSchema creates the tables on first boot. Order matters: children
// reference parents.
func ensureSchema(db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'customer',
			phone TEXT,
			address TEXT,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS subcategories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category_id INT NOT NULL REFERENCES categories(id),
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (category_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price NUMERIC(10,2) NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			image TEXT,
			subcategory_id INT NOT NULL REFERENCES subcategories(id),
			category_id INT NOT NULL REFERENCES categories(id),
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			product_id INT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			quantity INT NOT NULL CHECK (quantity >= 1),
			unit_price NUMERIC(10,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
			total NUMERIC(10,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			shipping_address TEXT NOT NULL,
			phone TEXT NOT NULL,
			notes TEXT,
			paid_at TIMESTAMPTZ,
			shipped_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			id SERIAL PRIMARY KEY,
			order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id INT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
			quantity INT NOT NULL CHECK (quantity >= 1),
			unit_price NUMERIC(10,2) NOT NULL,
			subtotal NUMERIC(10,2) NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}
