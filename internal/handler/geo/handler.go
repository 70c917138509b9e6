package geo

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/geo"
	"github.com/jwalitptl/clinic-api/internal/handler"
	geosvc "github.com/jwalitptl/clinic-api/internal/service/geo"
	"github.com/jwalitptl/clinic-api/pkg/mediator"
)

type Handler struct {
	mediator *mediator.Mediator
}

func NewHandler(m *mediator.Mediator) *Handler {
	return &Handler{mediator: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/geo")
	{
		g.GET("/provinces", h.ListProvinces)
		g.GET("/provinces/:code/cities", h.ListCities)
		g.GET("/cities/:code/barangays", h.ListBarangays)
	}
}

func (h *Handler) ListProvinces(c *gin.Context) {
	handler.Dispatch[[]geo.Area](c, h.mediator, http.StatusOK, geosvc.ListProvincesQuery{})
}

func (h *Handler) ListCities(c *gin.Context) {
	handler.Dispatch[[]geo.Area](c, h.mediator, http.StatusOK, geosvc.ListCitiesQuery{ProvinceCode: c.Param("code")})
}

func (h *Handler) ListBarangays(c *gin.Context) {
	handler.Dispatch[[]geo.Area](c, h.mediator, http.StatusOK, geosvc.ListBarangaysQuery{CityCode: c.Param("code")})
}
