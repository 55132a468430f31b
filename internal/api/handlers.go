package api

import (
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"salaries/internal/engine"
)

type Handler struct {
	store atomic.Pointer[engine.ColumnStore]
}

// NewHandler creates a Handler. A nil store keeps the API in the loading state
// (503) until SetStore is called.
func NewHandler(store *engine.ColumnStore) *Handler {
	h := &Handler{}
	if store != nil {
		h.store.Store(store)
	}
	return h
}

// SetStore publishes the loaded table. The store must not be modified afterwards.
func (h *Handler) SetStore(store *engine.ColumnStore) {
	h.store.Store(store)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.GetHealth)
	api.GET("/filters", h.GetFilters)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/metrics", h.GetMetrics)
	api.GET("/roles/top", h.GetTopRoles)
	api.GET("/salaries/histogram", h.GetSalaryHistogram)
	api.GET("/remote", h.GetRemoteWork)
	api.GET("/countries", h.GetCountrySalaries)
	api.GET("/records", h.GetRecords)
}

type chartQuery struct {
	K    int    `query:"k" validate:"omitempty,min=1,max=100"`
	Bins int    `query:"bins" validate:"omitempty,min=1,max=200"`
	Role string `query:"role" validate:"omitempty,max=200"`
}

type pageQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=10000"`
	Offset int `query:"offset" validate:"min=0"`
}

func errLoading() error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is still loading")
}

// --- HELPERS ---

func (h *Handler) loadedStore() (*engine.ColumnStore, error) {
	store := h.store.Load()
	if store == nil {
		return nil, errLoading()
	}
	return store, nil
}

// filteredView applies the request's filter parameters to the table.
func (h *Handler) filteredView(c echo.Context) (engine.View, error) {
	store, err := h.loadedStore()
	if err != nil {
		return engine.View{}, err
	}
	sel, err := selectionFromQuery(c.QueryParams(), engine.FilterOptions(store))
	if err != nil {
		return engine.View{}, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return engine.ApplyFilters(store, sel), nil
}

func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

func (q chartQuery) options() engine.AggregateOptions {
	return engine.AggregateOptions{TopRoles: q.K, HistogramBins: q.Bins, CountryRole: q.Role}
}

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	store := h.store.Load()
	if store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"records": store.Len(),
	})
}

// distinct values per filterable column, which is also the default selection
func (h *Handler) GetFilters(c echo.Context) error {
	store, err := h.loadedStore()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.FilterOptions(store))
}

func (h *Handler) GetDashboard(c echo.Context) error {
	var q chartQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	view, err := h.filteredView(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Aggregate(q.options()))
}

func (h *Handler) GetMetrics(c echo.Context) error {
	view, err := h.filteredView(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Metrics())
}

// returns Top 10 roles by default
func (h *Handler) GetTopRoles(c echo.Context) error {
	var q chartQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	view, err := h.filteredView(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.TopRolesBySalary(q.options().WithDefaults().TopRoles))
}

func (h *Handler) GetSalaryHistogram(c echo.Context) error {
	var q chartQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	view, err := h.filteredView(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.SalaryHistogram(q.options().WithDefaults().HistogramBins))
}

func (h *Handler) GetRemoteWork(c echo.Context) error {
	view, err := h.filteredView(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.RemoteWorkDistribution())
}

func (h *Handler) GetCountrySalaries(c echo.Context) error {
	var q chartQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	view, err := h.filteredView(c)
	if err != nil {
		return err
	}
	role := q.options().WithDefaults().CountryRole
	return c.JSON(http.StatusOK, map[string]interface{}{
		"role": role,
		"data": view.MeanSalaryByCountry(role),
	})
}

// detail table, paginated
func (h *Handler) GetRecords(c echo.Context) error {
	var q pageQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	view, err := h.filteredView(c)
	if err != nil {
		return err
	}

	total := view.Len()
	limit := q.Limit
	if limit == 0 {
		limit = total
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   view.Records(q.Offset, limit),
		"total":  total,
		"limit":  limit,
		"offset": q.Offset,
	})
}
