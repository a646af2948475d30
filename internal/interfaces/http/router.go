package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ResourceUC  *usecase.ResourceUseCase
	TransferUC  *usecase.TransferUseCase
	UserUC      *usecase.UserUseCase
	BarcodeUC   *usecase.BarcodeUseCase
	InventoryUC *inventory.UseCase
	AuthUC      *auth.AuthUseCase
	Signer      *jwt.Signer
	Storage     usecase.FileStorage
	Parser      query.Parser

	AppName        string
	StoreTimeout   time.Duration
	MaxUploadBytes int
	CookieSecure   bool
	LoginPerMinute int // 0 = sin límite
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api", StoreTimeout(deps.StoreTimeout))

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Signer.RefreshTTL(), deps.CookieSecure)
	if deps.LoginPerMinute > 0 {
		authGroup.Post("/login", loginLimiter(deps.LoginPerMinute), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.Signer))
	protected.Get("/auth/me", authHandler.Me)

	// Users
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC, deps.Parser)
	users.Get("/get", RequirePermission("users.read"), userHandler.List)
	users.Post("/get", RequirePermission("users.read"), userHandler.List)
	users.Get("/get/:id", RequirePermission("users.read"), userHandler.GetByID)
	users.Post("/create", RequirePermission("users.write"), userHandler.Create)
	users.Post("/edit", RequirePermission("users.write"), userHandler.Edit)
	users.Post("/remove", RequirePermission("users.remove"), userHandler.Remove)

	// Barcodes
	barcodes := protected.Group("/barcodes")
	barcodeHandler := NewBarcodeHandler(deps.BarcodeUC, deps.Parser)
	barcodes.Get("/get", RequirePermission("barcodes.read"), barcodeHandler.List)
	barcodes.Post("/get", RequirePermission("barcodes.read"), barcodeHandler.List)
	barcodes.Post("/create", RequirePermission("barcodes.write"), barcodeHandler.Create)
	barcodes.Post("/remove", RequirePermission("barcodes.remove"), barcodeHandler.Remove)

	// Inventories: conteo y recepción
	inv := protected.Group("/inventories")
	invHandler := NewInventoryHandler(deps.InventoryUC, deps.Parser)
	inv.Get("/get", RequirePermission("inventories.read"), invHandler.List)
	inv.Post("/get", RequirePermission("inventories.read"), invHandler.List)
	inv.Get("/get/:id", RequirePermission("inventories.read"), invHandler.GetByID)
	inv.Get("/report/:id", RequirePermission("inventories.read"), invHandler.Report)
	inv.Post("/create", RequirePermission("inventories.write"), invHandler.Create)
	inv.Post("/items", RequirePermission("inventories.write"), invHandler.AddItems)
	inv.Post("/start", RequirePermission("inventories.write"), invHandler.Start)
	inv.Post("/scan", RequirePermission("inventories.write"), invHandler.Scan)
	inv.Post("/receive", RequirePermission("inventories.write"), invHandler.Receive)
	inv.Post("/finalize", RequirePermission("inventories.write"), invHandler.Finalize)

	// Recursos genéricos del catálogo
	res := protected.Group("/:resource", ResolveSchema)
	resHandler := NewResourceHandler(deps.ResourceUC, deps.TransferUC, deps.Storage, deps.Parser, deps.MaxUploadBytes)
	res.Get("/get", RequireResourcePermission("read"), resHandler.List)
	res.Post("/get", RequireResourcePermission("read"), resHandler.List)
	res.Get("/get/:id", RequireResourcePermission("read"), resHandler.GetByID)
	res.Post("/create", RequireResourcePermission("write"), resHandler.Create)
	res.Post("/edit", RequireResourcePermission("write"), resHandler.Edit)
	res.Post("/remove", RequireResourcePermission("remove"), resHandler.Remove)
	res.Post("/batch", RequireResourcePermission("write"), resHandler.Batch)
	res.Post("/duplicate", RequireResourcePermission("write"), resHandler.Duplicate)
	res.Post("/import", RequireResourcePermission("import"), resHandler.Import)
	res.Get("/export", RequireResourcePermission("export"), resHandler.Export)
	res.Post("/export", RequireResourcePermission("export"), resHandler.Export)
	res.Post("/upload/:id", RequireResourcePermission("write"), resHandler.Upload)
}

// loginLimiter limita intentos de login por IP.
func loginLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Status:  dto.StatusError,
				Code:    "TOO_MANY_REQUESTS",
				Message: "demasiados intentos, espere un minuto",
			})
		},
	})
}
