package httpserver

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/middleware"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/transport"
	"github.com/fatmac/marketplace/internal/util"
)

type ProductHandler struct {
	Catalog *service.CatalogService
	BaseURL string
}

func paramID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageSize(c echo.Context) (int, int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return page, size
}

func csvUints(s string) []uint {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint, 0, len(parts))
	for _, p := range parts {
		if v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64); err == nil && v > 0 {
			out = append(out, uint(v))
		}
	}
	return out
}

func boolParam(s string) bool {
	return s == "true" || s == "1"
}

func (h *ProductHandler) List(c echo.Context) error {
	filter := repo.ProductFilter{
		CategorySlug: c.QueryParam("category"),
		CategoryIDs:  csvUints(c.QueryParam("category_ids")),
		VendorIDs:    csvUints(c.QueryParam("vendor_ids")),
		IsNew:        boolParam(c.QueryParam("is_new")),
		HasDiscount:  boolParam(c.QueryParam("has_discount")),
		IsFeatured:   boolParam(c.QueryParam("is_featured")),
		Search:       c.QueryParam("search"),
	}
	if v := c.QueryParam("condition"); v != "" {
		filter.Conditions = strings.Split(v, ",")
	}
	if v := c.QueryParam("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return validationFail(c, "min_price", "must be a number")
		}
		filter.MinPrice = &f
	}
	if v := c.QueryParam("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return validationFail(c, "max_price", "must be a number")
		}
		filter.MaxPrice = &f
	}

	page, size := pageSize(c)
	total, products, err := h.Catalog.ListProducts(c.Request().Context(), filter, page, size)
	if err != nil {
		return handleError(c, err)
	}
	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.NewPage(presentProducts(h.BaseURL, products), page, limit, total))
}

func (h *ProductHandler) Show(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	product, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentProduct(h.BaseURL, product))
}

func fieldErr(field, msg string) error {
	return &service.ValidationError{Fields: map[string][]string{field: {msg}}}
}

func formFloat(c echo.Context, name string) (*float64, error) {
	v := c.FormValue(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fieldErr(name, "must be a number")
	}
	return &f, nil
}

func formInt(c echo.Context, name string) (*int, error) {
	v := c.FormValue(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fieldErr(name, "must be an integer")
	}
	return &n, nil
}

func formUint(c echo.Context, name string) (*uint, error) {
	v := c.FormValue(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, fieldErr(name, "must be an id")
	}
	u := uint(n)
	return &u, nil
}

func formFiles(c echo.Context, name string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[name]
}

func (h *ProductHandler) Create(c echo.Context) error {
	req := transport.CreateProductRequest{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Condition:   c.FormValue("condition"),
		IsNew:       boolParam(c.FormValue("is_new")),
		IsFeatured:  boolParam(c.FormValue("is_featured")),
	}
	if price, err := formFloat(c, "price"); err != nil {
		return handleError(c, err)
	} else if price != nil {
		req.Price = *price
	}
	if discount, err := formFloat(c, "discount_percentage"); err != nil {
		return handleError(c, err)
	} else {
		req.DiscountPercentage = discount
	}
	if stock, err := formInt(c, "stock"); err != nil {
		return handleError(c, err)
	} else if stock != nil {
		req.Stock = *stock
	}
	if categoryID, err := formUint(c, "category_id"); err != nil {
		return handleError(c, err)
	} else {
		req.CategoryID = categoryID
	}

	product, err := h.Catalog.CreateProduct(c.Request().Context(), middleware.CurrentUser(c), req, formFiles(c, "images"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusCreated, presentProduct(h.BaseURL, product))
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}

	var req transport.UpdateProductRequest
	if v := c.FormValue("name"); v != "" {
		req.Name = &v
	}
	if v := c.FormValue("description"); v != "" {
		req.Description = &v
	}
	if v := c.FormValue("condition"); v != "" {
		req.Condition = &v
	}
	var err error
	if req.Price, err = formFloat(c, "price"); err != nil {
		return handleError(c, err)
	}
	if req.DiscountPercentage, err = formFloat(c, "discount_percentage"); err != nil {
		return handleError(c, err)
	}
	if req.Stock, err = formInt(c, "stock"); err != nil {
		return handleError(c, err)
	}
	if req.CategoryID, err = formUint(c, "category_id"); err != nil {
		return handleError(c, err)
	}
	if v := c.FormValue("is_new"); v != "" {
		b := boolParam(v)
		req.IsNew = &b
	}
	if v := c.FormValue("is_featured"); v != "" {
		b := boolParam(v)
		req.IsFeatured = &b
	}
	req.DeleteImages = csvUints(c.FormValue("delete_images"))

	product, err := h.Catalog.UpdateProduct(c.Request().Context(), middleware.CurrentUser(c), id, req, formFiles(c, "images"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, presentProduct(h.BaseURL, product))
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	if err := h.Catalog.DeleteProduct(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

// Mine lists the authenticated seller's own catalog.
func (h *ProductHandler) Mine(c echo.Context) error {
	page, size := pageSize(c)
	total, products, err := h.Catalog.MyProducts(c.Request().Context(), middleware.CurrentUser(c), page, size)
	if err != nil {
		return handleError(c, err)
	}
	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.NewPage(presentProducts(h.BaseURL, products), page, limit, total))
}
