package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fatmac/marketplace/internal/middleware"
)

type Deps struct {
	Auth       *middleware.Auth
	UploadDir  string
	AuthH      *AuthHandler
	Products   *ProductHandler
	Orders     *OrderHandler
	Vendors    *VendorHandler
	Cms        *CmsHandler
	Settings   *SettingsHandler
	Newsletter *NewsletterHandler
	Dashboard  *DashboardHandler
	Search     *SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Uploaded files (vouchers, product images, QRs, logos).
	e.Static("/storage", d.UploadDir)

	api := e.Group("/api")

	// Auth
	api.POST("/register", d.AuthH.Register)
	api.POST("/register-vendor", d.AuthH.RegisterVendor)
	api.POST("/login", d.AuthH.Login)
	api.POST("/logout", d.AuthH.Logout)
	api.GET("/me", d.AuthH.Me, d.Auth.RequireAuth)
	api.PUT("/profile", d.AuthH.UpdateProfile, d.Auth.RequireAuth)
	api.PUT("/password", d.AuthH.ChangePassword, d.Auth.RequireAuth)

	// Catalog (public)
	api.GET("/products", d.Products.List)
	api.GET("/products/search", d.Search.Products)
	api.GET("/products/:id", d.Products.Show)

	// Catalog (sellers)
	api.POST("/products", d.Products.Create, d.Auth.RequireVendorOrAdmin)
	api.PUT("/products/:id", d.Products.Update, d.Auth.RequireVendorOrAdmin)
	api.DELETE("/products/:id", d.Products.Delete, d.Auth.RequireVendorOrAdmin)
	api.GET("/my-products", d.Products.Mine, d.Auth.RequireVendorOrAdmin)

	// Checkout + orders
	api.POST("/checkout", d.Orders.Checkout, d.Auth.OptionalAuth)
	api.GET("/orders", d.Orders.VendorOrders, d.Auth.RequireVendorOrAdmin)
	api.GET("/orders/:id", d.Orders.Show, d.Auth.RequireAuth)
	api.PUT("/orders/:id/status", d.Orders.UpdateStatus, d.Auth.RequireAuth)
	api.GET("/my-orders", d.Orders.MyOrders, d.Auth.RequireAuth)
	api.GET("/my-orders/last-address", d.Orders.LastAddress, d.Auth.RequireAuth)

	// Vendors
	api.GET("/vendors", d.Vendors.PublicList)
	api.GET("/vendors/:id/qr", d.Vendors.Qr)
	api.POST("/vendor/qr", d.Vendors.UploadQr, d.Auth.RequireVendorOrAdmin)

	// Dashboard
	api.GET("/dashboard/stats", d.Dashboard.Stats, d.Auth.RequireVendorOrAdmin)

	// Settings + newsletter (public)
	api.GET("/settings/:key", d.Settings.Get)
	api.POST("/newsletter/subscribe", d.Newsletter.Subscribe)
	api.POST("/newsletter/unsubscribe", d.Newsletter.Unsubscribe)

	// CMS (public)
	categories := d.Cms.Categories()
	menuItems := d.Cms.MenuItems()
	featured := d.Cms.FeaturedCategories()
	promos := d.Cms.PromotionalBanners()
	homeBanners := d.Cms.HomeBanners()

	api.GET("/categories", categories.PublicList)
	api.GET("/menu-items", menuItems.PublicList)
	api.GET("/featured-categories", featured.PublicList)
	api.GET("/promotional-banners", promos.PublicList)
	api.GET("/home-banners", homeBanners.PublicList)
	api.GET("/top-banner", d.Cms.GetTopBanner)
	api.GET("/footer-sections", d.Cms.PublicFooter)
	api.GET("/social-links", d.Cms.PublicSocialLinks)

	// Admin
	admin := api.Group("/admin", d.Auth.RequireAdmin)

	admin.GET("/vendors", d.Vendors.List)
	admin.GET("/vendors/pending-count", d.Vendors.PendingCount)
	admin.PUT("/vendors/:id/status", d.Vendors.SetStatus)
	admin.PUT("/vendors/:id", d.Vendors.AdminUpdate)

	admin.GET("/settings", d.Settings.List)
	admin.PUT("/settings", d.Settings.Set)
	admin.POST("/settings/logo", d.Settings.UploadLogo)

	admin.GET("/newsletter", d.Newsletter.List)

	registerResource(admin, "/categories", categories)
	registerResource(admin, "/menu-items", menuItems)
	registerResource(admin, "/featured-categories", featured)
	registerResource(admin, "/promotional-banners", promos)
	registerResource(admin, "/home-banners", homeBanners)

	admin.PUT("/featured-categories/:id/toggle", d.Cms.ToggleFeaturedCategory)
	admin.POST("/banners/image", d.Cms.UploadBannerImage)
	admin.GET("/top-banner", d.Cms.GetTopBanner)
	admin.PUT("/top-banner", d.Cms.UpdateTopBanner)
	admin.GET("/footer-sections", d.Cms.AdminFooter)
	admin.PUT("/footer-sections", d.Cms.UpsertFooterSection)
	admin.GET("/social-links", d.Cms.AdminSocialLinks)
	admin.PUT("/social-links", d.Cms.UpsertSocialLink)
	admin.DELETE("/social-links/:id", d.Cms.DeleteSocialLink)
}

func registerResource[R any](g *echo.Group, prefix string, r *Resource[R]) {
	g.GET(prefix, r.AdminList)
	g.POST(prefix, r.CreateHandler)
	g.PUT(prefix+"/:id", r.UpdateHandler)
	g.DELETE(prefix+"/:id", r.DeleteHandler)
}
