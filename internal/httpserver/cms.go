package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/storage"
	"github.com/fatmac/marketplace/internal/transport"
)

// Resource is one generic handler for the flat CMS entities. Each entity
// plugs its service methods in; list/create/update/delete stay identical.
type Resource[R any] struct {
	List   func(ctx context.Context, activeOnly bool) (any, error)
	Create func(ctx context.Context, req R) (any, error)
	Update func(ctx context.Context, id uint, req R) (any, error)
	Delete func(ctx context.Context, id uint) error
}

// PublicList serves the storefront: active rows only.
func (r *Resource[R]) PublicList(c echo.Context) error {
	rows, err := r.List(c.Request().Context(), true)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// AdminList serves the panel: everything, active or not.
func (r *Resource[R]) AdminList(c echo.Context) error {
	rows, err := r.List(c.Request().Context(), false)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (r *Resource[R]) CreateHandler(c echo.Context) error {
	var req R
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}
	row, err := r.Create(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusCreated, row)
}

func (r *Resource[R]) UpdateHandler(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	var req R
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}
	row, err := r.Update(c.Request().Context(), id, req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (r *Resource[R]) DeleteHandler(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	if err := r.Delete(c.Request().Context(), id); err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// CmsHandler groups the non-CRUD presentation endpoints and builds the
// generic resources.
type CmsHandler struct {
	Cms     *service.CmsService
	BaseURL string
}

func wrap2[T any, R any](f func(ctx context.Context, req R) (*T, error)) func(context.Context, R) (any, error) {
	return func(ctx context.Context, req R) (any, error) { return f(ctx, req) }
}

func wrap3[T any, R any](f func(ctx context.Context, id uint, req R) (*T, error)) func(context.Context, uint, R) (any, error) {
	return func(ctx context.Context, id uint, req R) (any, error) { return f(ctx, id, req) }
}

func wrapList[T any](f func(ctx context.Context, activeOnly bool) ([]T, error)) func(context.Context, bool) (any, error) {
	return func(ctx context.Context, activeOnly bool) (any, error) { return f(ctx, activeOnly) }
}

func (h *CmsHandler) Categories() *Resource[transport.CategoryRequest] {
	return &Resource[transport.CategoryRequest]{
		List:   wrapList(h.Cms.ListCategories),
		Create: wrap2(h.Cms.CreateCategory),
		Update: wrap3(h.Cms.UpdateCategory),
		Delete: h.Cms.DeleteCategory,
	}
}

func (h *CmsHandler) MenuItems() *Resource[transport.MenuItemRequest] {
	return &Resource[transport.MenuItemRequest]{
		List:   wrapList(h.Cms.ListMenuItems),
		Create: wrap2(h.Cms.CreateMenuItem),
		Update: wrap3(h.Cms.UpdateMenuItem),
		Delete: h.Cms.DeleteMenuItem,
	}
}

func (h *CmsHandler) FeaturedCategories() *Resource[transport.FeaturedCategoryRequest] {
	return &Resource[transport.FeaturedCategoryRequest]{
		List:   wrapList(h.Cms.ListFeaturedCategories),
		Create: wrap2(h.Cms.CreateFeaturedCategory),
		Update: wrap3(h.Cms.UpdateFeaturedCategory),
		Delete: h.Cms.DeleteFeaturedCategory,
	}
}

func (h *CmsHandler) PromotionalBanners() *Resource[transport.PromotionalBannerRequest] {
	return &Resource[transport.PromotionalBannerRequest]{
		List:   wrapList(h.Cms.ListPromotionalBanners),
		Create: wrap2(h.Cms.CreatePromotionalBanner),
		Update: wrap3(h.Cms.UpdatePromotionalBanner),
		Delete: h.Cms.DeletePromotionalBanner,
	}
}

func (h *CmsHandler) HomeBanners() *Resource[transport.HomeBannerRequest] {
	return &Resource[transport.HomeBannerRequest]{
		List:   wrapList(h.Cms.ListHomeBanners),
		Create: wrap2(h.Cms.CreateHomeBanner),
		Update: wrap3(h.Cms.UpdateHomeBanner),
		Delete: h.Cms.DeleteHomeBanner,
	}
}

func (h *CmsHandler) ToggleFeaturedCategory(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	fc, err := h.Cms.ToggleFeaturedCategory(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, fc)
}

func (h *CmsHandler) UploadBannerImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		fh = nil
	}
	path, err := h.Cms.UploadBannerImage(c.Request().Context(), fh)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"url": storage.PublicURL(h.BaseURL, path)})
}

func (h *CmsHandler) GetTopBanner(c echo.Context) error {
	banner, err := h.Cms.GetTopBanner(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, banner)
}

func (h *CmsHandler) UpdateTopBanner(c echo.Context) error {
	var req transport.TopBannerRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}
	banner, err := h.Cms.UpdateTopBanner(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, banner)
}

func (h *CmsHandler) PublicFooter(c echo.Context) error {
	sections, err := h.Cms.ListFooterSections(c.Request().Context(), true)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": sections})
}

func (h *CmsHandler) AdminFooter(c echo.Context) error {
	sections, err := h.Cms.ListFooterSections(c.Request().Context(), false)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": sections})
}

func (h *CmsHandler) UpsertFooterSection(c echo.Context) error {
	var req transport.FooterSectionRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}
	section, err := h.Cms.UpsertFooterSection(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, section)
}

func (h *CmsHandler) PublicSocialLinks(c echo.Context) error {
	links, err := h.Cms.ListSocialLinks(c.Request().Context(), true)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": links})
}

func (h *CmsHandler) AdminSocialLinks(c echo.Context) error {
	links, err := h.Cms.ListSocialLinks(c.Request().Context(), false)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": links})
}

func (h *CmsHandler) UpsertSocialLink(c echo.Context) error {
	var req transport.SocialLinkRequest
	if err := c.Bind(&req); err != nil {
		return validationFail(c, "_", "malformed request body")
	}
	link, err := h.Cms.UpsertSocialLink(c.Request().Context(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, link)
}

func (h *CmsHandler) DeleteSocialLink(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	if err := h.Cms.DeleteSocialLink(c.Request().Context(), id); err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
