package router

import (
	"time"

	"go-inventory-tracker/internal/handler"
	"go-inventory-tracker/internal/metrics"
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps carries the services the HTTP layer is built from.
type Deps struct {
	Auth        service.AuthService
	Products    service.ProductService
	Ledger      service.LedgerService
	Shops       service.ShopService
	Dashboard   service.DashboardService
	Hub         *ws.Hub
	CORSOrigins string
	LoginLimit  int
	LoginWindow time.Duration
}

// New builds the fiber app with every route mounted.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Inventory Tracker",
		ErrorHandler: handler.ErrorHandler,
	})
	Setup(app, d)
	return app
}

func Setup(app *fiber.App, d Deps) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{AllowOrigins: d.CORSOrigins}))

	authHandler := handler.NewAuthHandler(d.Auth)
	productHandler := handler.NewProductHandler(d.Products, d.Dashboard)
	txHandler := handler.NewTransactionHandler(d.Ledger, d.Dashboard)
	shopHandler := handler.NewShopHandler(d.Shops)
	dashHandler := handler.NewDashboardHandler(d.Dashboard)

	app.Get("/health", handler.Health)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	requireAuth := middleware.RequireAuth(d.Auth)
	can := middleware.RequirePrivilege

	// ============ AUTH ============
	auth := api.Group("/auth")
	auth.Post("/register", middleware.OptionalAuth(d.Auth), authHandler.Register)
	auth.Post("/login", loginLimiter(d), authHandler.Login)
	auth.Get("/me", requireAuth, authHandler.Me)

	// ============ PRODUCTS ============
	// fixed paths go before /:id
	products := api.Group("/products", requireAuth)
	products.Get("/", can(model.PrivProductView), productHandler.GetProducts)
	products.Get("/low-stock", can(model.PrivProductView), productHandler.GetLowStockAlerts)
	products.Get("/total-quantity", can(model.PrivProductView), productHandler.GetTotalQuantity)
	products.Get("/reconciliation", can(model.PrivReportReconcile), productHandler.GetReconciliation)
	products.Post("/seed", can(model.PrivProductSeed), productHandler.SeedProducts)
	products.Get("/:id", can(model.PrivProductView), productHandler.GetProduct)
	products.Post("/", can(model.PrivProductCreate), productHandler.CreateProduct)
	products.Put("/:id", can(model.PrivProductUpdate), productHandler.UpdateProduct)
	products.Delete("/:id", can(model.PrivProductDelete), productHandler.DeleteProduct)

	// ============ TRANSACTIONS ============
	txs := api.Group("/transactions", requireAuth)
	txs.Get("/", can(model.PrivTransactionView), txHandler.GetTransactions)
	txs.Get("/total-value", can(model.PrivTransactionView), txHandler.GetTotalValue)
	txs.Get("/:id", can(model.PrivTransactionView), txHandler.GetTransaction)
	txs.Post("/", can(model.PrivTransactionCreate), txHandler.CreateTransaction)
	txs.Put("/:id", can(model.PrivTransactionUpdate), txHandler.UpdateTransaction)
	txs.Delete("/:id", can(model.PrivTransactionDelete), txHandler.DeleteTransaction)

	// ============ SHOPS ============
	shops := api.Group("/shops", requireAuth)
	shops.Get("/", can(model.PrivShopView), shopHandler.GetShops)
	shops.Get("/:id", can(model.PrivShopView), shopHandler.GetShop)
	shops.Post("/", can(model.PrivShopCreate), shopHandler.CreateShop)
	shops.Put("/:id", can(model.PrivShopUpdate), shopHandler.UpdateShop)
	shops.Delete("/:id", can(model.PrivShopDelete), shopHandler.DeleteShop)

	// ============ DASHBOARD ============
	dash := api.Group("/dashboard", requireAuth, can(model.PrivDashboardView))
	dash.Get("/stats", dashHandler.GetDashboardStats)
	dash.Get("/stock-movement", dashHandler.GetStockMovement)

	// WebSocket Route
	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(d.Hub.Serve))
	}
}

func loginLimiter(d Deps) fiber.Handler {
	window := d.LoginWindow
	if window <= 0 {
		window = time.Minute
	}
	limit := d.LoginLimit
	if limit <= 0 {
		limit = 10
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many login attempts, try again later"})
		},
	})
}
