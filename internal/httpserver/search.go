package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/fatmac/marketplace/internal/service/search"
	"github.com/fatmac/marketplace/internal/util"
)

type SearchHandler struct {
	ES      *elasticsearch.Client
	Index   string
	BaseURL string
}

func (h *SearchHandler) Products(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return validationFail(c, "q", "this field is required")
	}
	if h.ES == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "search is not configured"})
	}

	page, size := pageSize(c)
	from, limit := util.Calculate(page, size)

	total, products, err := search.Products(c.Request().Context(), h.ES, h.Index, q, from, limit)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": presentProducts(h.BaseURL, products)})
}
