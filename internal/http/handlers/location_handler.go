// README: Location picker data (districts and their villages).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mashwar/internal/modules/location"
)

type LocationHandler struct {
	graph *location.Graph
}

func NewLocationHandler(graph *location.Graph) *LocationHandler {
	return &LocationHandler{graph: graph}
}

type villageDTO struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type districtDTO struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Villages []villageDTO `json:"villages"`
}

// Villages returns the full hierarchy; the payload mirrors the shape of
// config/locations.json so pickers and fixtures share one format.
func (h *LocationHandler) Villages(c *gin.Context) {
	districts := h.graph.Districts()
	out := make([]districtDTO, 0, len(districts))
	for _, d := range districts {
		dd := districtDTO{
			ID:       string(d.ID),
			Name:     d.Name,
			Villages: make([]villageDTO, 0, len(d.Villages)),
		}
		for _, v := range d.Villages {
			dd.Villages = append(dd.Villages, villageDTO{
				ID:   string(v.ID),
				Name: v.Name,
				Lat:  v.Center.Lat,
				Lng:  v.Center.Lng,
			})
		}
		out = append(out, dd)
	}
	writeJSON(c, http.StatusOK, map[string]any{"districts": out})
}
