package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/warodomh/marketplace/internal/response"
	"github.com/warodomh/marketplace/internal/search"
	"github.com/warodomh/marketplace/internal/util"
)

type SearchHandler struct {
	ES *elasticsearch.Client
}

// Products runs a full-text product search against the index.
func (h *SearchHandler) Products(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q query parameter is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.ES, query, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = util.DefaultPageSize
	}
	return response.Data(c, http.StatusOK, "search results", response.NewPaged(products, page, size, total))
}
