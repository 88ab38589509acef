package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/transport"
)

func boolPtr(v bool) *bool { return &v }

func TestCategoryCrud(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	category, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Ropa", Slug: "ropa"})
	require.NoError(t, err)
	require.True(t, category.IsActive)

	_, err = svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Otra", Slug: "ropa"})
	require.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateCategory(ctx, category.ID, transport.CategoryRequest{
		Name: "Ropa y Moda", Slug: "ropa", IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, updated.IsActive)

	active, err := svc.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))
	require.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), ErrNotFound)
}

func TestMenuItemsOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	_, err := svc.CreateMenuItem(ctx, transport.MenuItemRequest{Label: "Ofertas", Path: "/ofertas", Slug: "ofertas", Type: "link", Order: 2})
	require.NoError(t, err)
	_, err = svc.CreateMenuItem(ctx, transport.MenuItemRequest{Label: "Inicio", Path: "/", Slug: "inicio", Type: "link", Order: 1})
	require.NoError(t, err)

	items, err := svc.ListMenuItems(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Inicio", items[0].Label)
}

func TestFeaturedCategoryToggle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	category, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Ropa", Slug: "ropa"})
	require.NoError(t, err)

	_, err = svc.CreateFeaturedCategory(ctx, transport.FeaturedCategoryRequest{CategoryID: 999, Name: "Rota"})
	require.ErrorIs(t, err, ErrValidation)

	fc, err := svc.CreateFeaturedCategory(ctx, transport.FeaturedCategoryRequest{CategoryID: category.ID, Name: "Ropa destacada"})
	require.NoError(t, err)
	require.True(t, fc.IsActive)

	toggled, err := svc.ToggleFeaturedCategory(ctx, fc.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)

	visible, err := svc.ListFeaturedCategories(ctx, true)
	require.NoError(t, err)
	require.Empty(t, visible)
}

func TestTopBannerSingleton(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	first, err := svc.GetTopBanner(ctx)
	require.NoError(t, err)

	again, err := svc.GetTopBanner(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	updated, err := svc.UpdateTopBanner(ctx, transport.TopBannerRequest{
		Text: "Envio gratis desde S/99", IsActive: boolPtr(true),
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, updated.ID)
	require.True(t, updated.IsActive)
}

func TestSocialLinkUpsertByPlatform(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	first, err := svc.UpsertSocialLink(ctx, transport.SocialLinkRequest{Platform: "instagram", URL: "https://instagram.com/old"})
	require.NoError(t, err)

	second, err := svc.UpsertSocialLink(ctx, transport.SocialLinkRequest{Platform: "instagram", URL: "https://instagram.com/new"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "https://instagram.com/new", second.URL)

	links, err := svc.ListSocialLinks(ctx, true)
	require.NoError(t, err)
	require.Len(t, links, 1)
}

func TestFooterSectionUpsertByPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	first, err := svc.UpsertFooterSection(ctx, transport.FooterSectionRequest{Position: 1, Title: "Contacto", Email: "hola@fatmac.pe"})
	require.NoError(t, err)

	second, err := svc.UpsertFooterSection(ctx, transport.FooterSectionRequest{Position: 1, Title: "Contactanos"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Contactanos", second.Title)

	sections, err := svc.ListFooterSections(ctx, true)
	require.NoError(t, err)
	require.Len(t, sections, 1)
}

func TestHomeBannerCrud(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	banner, err := svc.CreateHomeBanner(ctx, transport.HomeBannerRequest{Title: "Gran apertura"})
	require.NoError(t, err)

	_, err = svc.UpdateHomeBanner(ctx, banner.ID, transport.HomeBannerRequest{Title: "Gran apertura 2", IsActive: boolPtr(false)})
	require.NoError(t, err)

	banners, err := svc.ListHomeBanners(ctx, false)
	require.NoError(t, err)
	require.Len(t, banners, 1)
	require.Equal(t, "Gran apertura 2", banners[0].Title)

	require.NoError(t, svc.DeleteHomeBanner(ctx, banner.ID))
	require.ErrorIs(t, svc.DeleteHomeBanner(ctx, banner.ID), ErrNotFound)
}

func TestUploadBannerImage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewCmsService(newTestRepo(t), newDiskStore(t))

	path, err := svc.UploadBannerImage(ctx, fileHeader(t, "banner.webp", []byte("img")))
	require.NoError(t, err)
	require.NotEmpty(t, path)

	_, err = svc.UploadBannerImage(ctx, fileHeader(t, "banner.exe", []byte("img")))
	require.ErrorIs(t, err, ErrValidation)
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := NewSettingsService(r, newDiskStore(t), "http://localhost:8080")

	_, err := svc.Get(ctx, "store_name")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Set(ctx, transport.SettingRequest{Key: "store_name", Value: "FatMac"})
	require.NoError(t, err)

	setting, err := svc.Get(ctx, "store_name")
	require.NoError(t, err)
	require.Equal(t, "FatMac", setting.Value)

	// Upsert overwrites in place.
	_, err = svc.Set(ctx, transport.SettingRequest{Key: "store_name", Value: "FatMac Peru"})
	require.NoError(t, err)

	settings, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	require.Equal(t, "FatMac Peru", settings[0].Value)
}

func TestUploadLogo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := NewSettingsService(r, newDiskStore(t), "http://localhost:8080")

	setting, err := svc.UploadLogo(ctx, fileHeader(t, "logo.svg", []byte("<svg/>")))
	require.NoError(t, err)
	require.Equal(t, SettingLogoURL, setting.Key)
	require.Contains(t, setting.Value, "http://localhost:8080/storage/")

	_, err = svc.UploadLogo(ctx, fileHeader(t, "logo.gif", []byte("gif")))
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewsletterLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	svc := NewNewsletterService(r)

	sub, already, err := svc.Subscribe(ctx, transport.NewsletterRequest{Email: "maria@example.com"})
	require.NoError(t, err)
	require.False(t, already)
	require.True(t, sub.IsActive)

	_, already, err = svc.Subscribe(ctx, transport.NewsletterRequest{Email: "maria@example.com"})
	require.NoError(t, err)
	require.True(t, already)

	require.NoError(t, svc.Unsubscribe(ctx, transport.NewsletterRequest{Email: "maria@example.com"}))
	require.ErrorIs(t, svc.Unsubscribe(ctx, transport.NewsletterRequest{Email: "maria@example.com"}), ErrNotFound)
	require.ErrorIs(t, svc.Unsubscribe(ctx, transport.NewsletterRequest{Email: "ghost@example.com"}), ErrNotFound)

	// Re-subscribing reactivates the same row.
	reactivated, already, err := svc.Subscribe(ctx, transport.NewsletterRequest{Email: "maria@example.com"})
	require.NoError(t, err)
	require.False(t, already)
	require.Equal(t, sub.ID, reactivated.ID)

	total, subs, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, subs, 1)

	_, _, err = svc.Subscribe(ctx, transport.NewsletterRequest{Email: "not-an-email"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDashboardStatsScoping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	orderSvc := newOrderService(r, newDiskStore(t), &recordingMailer{})
	svc := NewDashboardService(r)

	vendorA := createUser(t, r, "Tienda A", "a@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	vendorB := createUser(t, r, "Tienda B", "b@vendors.pe", "secret123", models.RoleVendor, models.StatusApproved)
	admin := createUser(t, r, "Root", "root@fatmac.pe", "secret123", models.RoleAdmin, models.StatusApproved)

	pA := createProduct(t, r, vendorA.ID, "Polo A", 100, nil)
	pB := createProduct(t, r, vendorB.ID, "Polo B", 40, nil)

	orderA := placeOrder(t, orderSvc, pA.ID, "c1@example.com")
	placeOrder(t, orderSvc, pB.ID, "c2@example.com")

	_, err := orderSvc.UpdateStatus(ctx, vendorA, orderA.ID, transport.UpdateOrderStatusRequest{Status: models.OrderStatusPaid})
	require.NoError(t, err)

	statsA, err := svc.Stats(ctx, vendorA)
	require.NoError(t, err)
	require.EqualValues(t, 1, statsA.TotalProducts)
	require.EqualValues(t, 1, statsA.TotalOrders)
	require.EqualValues(t, 1, statsA.PaidOrders)
	require.InDelta(t, 100, statsA.TotalRevenue, 1e-9)
	require.InDelta(t, 100, statsA.RevenueLast30Days, 1e-9)

	all, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	require.EqualValues(t, 2, all.TotalProducts)
	require.EqualValues(t, 2, all.TotalOrders)
	require.EqualValues(t, 1, all.PendingOrders)
	require.InDelta(t, 100, all.TotalRevenue, 1e-9)
}
