// README: Courier-facing handlers: browse open orders, bid, start, deliver.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mashwar/internal/modules/offer"
	"mashwar/internal/modules/order"
	"mashwar/internal/types"
)

type DriverHandler struct {
	orders *order.Service
	offers *offer.Service
}

func NewDriverHandler(orders *order.Service, offers *offer.Service) *DriverHandler {
	return &DriverHandler{orders: orders, offers: offers}
}

func (h *DriverHandler) ListOpen(c *gin.Context) {
	open, err := h.orders.ListOpen(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if open == nil {
		open = []order.Order{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"orders": open})
}

type submitOfferReq struct {
	DriverID     string  `json:"driver_id"`
	DriverName   string  `json:"driver_name"`
	DriverPhone  string  `json:"driver_phone"`
	DriverPhoto  string  `json:"driver_photo"`
	DriverRating float64 `json:"driver_rating"`
	Price        int64   `json:"price"`
}

func (h *DriverHandler) SubmitOffer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req submitOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	off, err := h.offers.Submit(c.Request.Context(), offer.SubmitRequest{
		OrderID:      types.ID(id),
		DriverID:     types.ID(req.DriverID),
		DriverName:   req.DriverName,
		DriverPhone:  req.DriverPhone,
		DriverPhoto:  req.DriverPhoto,
		DriverRating: req.DriverRating,
		Price:        types.EGP(req.Price),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, off)
}

type courierActionReq struct {
	DriverID string `json:"driver_id"`
}

func (h *DriverHandler) Start(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req courierActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver_id")
		return
	}
	if err := h.orders.StartDelivery(c.Request.Context(), types.ID(id), types.ID(req.DriverID)); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": order.StatusActiveDelivery})
}

func (h *DriverHandler) Delivered(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req courierActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DriverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver_id")
		return
	}
	if err := h.orders.MarkDelivered(c.Request.Context(), types.ID(id), types.ID(req.DriverID)); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": order.StatusDelivered})
}
