package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/handlers"
	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/token"
)

type Deps struct {
	DB              *gorm.DB
	Tokens          *token.Service
	AuthHandler     *handlers.AuthHandler
	SellerHandler   *handlers.SellerHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	CartHandler     *handlers.CartHandler
	OrderHandler    *handlers.OrderHandler
	PaymentHandler  *handlers.PaymentHandler
	ReviewHandler   *handlers.ReviewHandler
	AddressHandler  *handlers.AddressHandler
	LocationHandler *handlers.LocationHandler
	ContentHandler  *handlers.ContentHandler
	SearchHandler   *handlers.SearchHandler

	// UploadDir, when set, is served under /uploads.
	UploadDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = response.ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	v1 := e.Group("/api/v1")

	// Public surface.
	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/refresh", d.AuthHandler.Refresh)
	v1.POST("/logout", d.AuthHandler.Logout)

	v1.GET("/products", d.ProductHandler.List)
	v1.GET("/products/:id", d.ProductHandler.Get)
	v1.GET("/products/:productID/reviews", d.ReviewHandler.ListByProduct)
	v1.GET("/categories", d.CategoryHandler.List)
	v1.GET("/categories/:id", d.CategoryHandler.Get)
	v1.GET("/sellers", d.SellerHandler.List)
	v1.GET("/sellers/:id", d.SellerHandler.Get)
	v1.GET("/search", d.SearchHandler.Products)

	v1.GET("/locations", d.LocationHandler.List)
	v1.GET("/locations/nearby", d.LocationHandler.Nearby)
	v1.GET("/locations/:locationID", d.LocationHandler.Get)
	v1.GET("/banners", d.ContentHandler.ListBanners)
	v1.GET("/cultures", d.ContentHandler.ListCultures)
	v1.GET("/cultures/:id", d.ContentHandler.GetCulture)

	v1.GET("/payments/qrcode", d.PaymentHandler.QRCode)
	v1.GET("/payments/payload", d.PaymentHandler.Payload)

	// Authenticated surface.
	auth := v1.Group("", d.Tokens.AutoRefresh)

	auth.GET("/profile", d.AuthHandler.Profile)
	auth.PATCH("/profile", d.AuthHandler.UpdateProfile)
	auth.POST("/profile/password", d.AuthHandler.ChangePassword)

	auth.GET("/cart", d.CartHandler.Get)
	auth.POST("/cart", d.CartHandler.Add)
	auth.PATCH("/cart/:productID", d.CartHandler.UpdateQuantity)
	auth.DELETE("/cart/:productID", d.CartHandler.Remove)
	auth.DELETE("/cart", d.CartHandler.Clear)

	auth.POST("/orders", d.OrderHandler.Place)
	auth.GET("/orders", d.OrderHandler.ListMine)
	auth.GET("/orders/:id", d.OrderHandler.Get)
	auth.POST("/orders/:id/cancel", d.OrderHandler.Cancel)
	auth.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)

	auth.POST("/reviews", d.ReviewHandler.Create)
	auth.GET("/reviews", d.ReviewHandler.ListMine)
	auth.PATCH("/reviews/:id", d.ReviewHandler.Update)
	auth.DELETE("/reviews/:id", d.ReviewHandler.Delete)

	auth.GET("/addresses", d.AddressHandler.List)
	auth.POST("/addresses", d.AddressHandler.Create)
	auth.PATCH("/addresses/:id", d.AddressHandler.Update)
	auth.POST("/addresses/:id/default", d.AddressHandler.SetDefault)
	auth.DELETE("/addresses/:id", d.AddressHandler.Delete)

	auth.POST("/sellers", d.SellerHandler.Onboard)

	// Seller surface: routes check for an owned seller profile themselves.
	seller := v1.Group("/seller", d.Tokens.AutoRefresh)

	seller.GET("/profile", d.SellerHandler.MyProfile)
	seller.PATCH("/profile", d.SellerHandler.Update)
	seller.POST("/profile/images/:kind", d.SellerHandler.UploadImage)
	seller.GET("/orders", d.OrderHandler.ListForSeller)
	seller.GET("/revenue", d.SellerHandler.Revenue)
	seller.POST("/products", d.ProductHandler.Create)
	seller.PATCH("/products/:id", d.ProductHandler.Update)
	seller.PATCH("/products/:id/stock", d.ProductHandler.UpdateStock)
	seller.POST("/products/:id/image", d.ProductHandler.UploadImage)
	seller.DELETE("/products/:id", d.ProductHandler.Delete)

	// Admin surface.
	admin := v1.Group("/admin", d.Tokens.AdminOnly)

	admin.POST("/users/role", d.AuthHandler.ChangeRole)
	admin.GET("/orders", d.OrderHandler.ListAll)
	admin.POST("/payments/:orderID/confirm", d.PaymentHandler.Confirm)
	admin.POST("/sellers/:id/verify", d.SellerHandler.Verify)

	admin.POST("/categories", d.CategoryHandler.Create)
	admin.PATCH("/categories/:id", d.CategoryHandler.Update)
	admin.DELETE("/categories/:id", d.CategoryHandler.Delete)

	admin.POST("/locations", d.LocationHandler.Create)
	admin.PATCH("/locations/:locationID", d.LocationHandler.Update)
	admin.DELETE("/locations/:locationID", d.LocationHandler.Delete)
	admin.POST("/locations/:locationID/image", d.LocationHandler.UploadImage)

	admin.POST("/banners", d.ContentHandler.CreateBanner)
	admin.PATCH("/banners/:id", d.ContentHandler.UpdateBanner)
	admin.DELETE("/banners/:id", d.ContentHandler.DeleteBanner)

	admin.POST("/cultures", d.ContentHandler.CreateCulture)
	admin.PATCH("/cultures/:id", d.ContentHandler.UpdateCulture)
	admin.DELETE("/cultures/:id", d.ContentHandler.DeleteCulture)
}
