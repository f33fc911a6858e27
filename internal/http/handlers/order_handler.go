// README: Customer-facing order handlers: create, fetch, accept, rate, cancel.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mashwar/internal/modules/offer"
	"mashwar/internal/modules/order"
	"mashwar/internal/types"
)

type OrderHandler struct {
	orders *order.Service
	offers *offer.Service
}

func NewOrderHandler(orders *order.Service, offers *offer.Service) *OrderHandler {
	return &OrderHandler{orders: orders, offers: offers}
}

type createTaxiReq struct {
	CustomerID    string      `json:"customer_id"`
	CustomerPhone string      `json:"customer_phone"`
	Pickup        order.Place `json:"pickup"`
	Dropoff       order.Place `json:"dropoff"`
	Vehicle       string      `json:"vehicle"`
	PickupNotes   string      `json:"pickup_notes"`
	DropoffNotes  string      `json:"dropoff_notes"`
}

func (h *OrderHandler) CreateTaxi(c *gin.Context) {
	var req createTaxiReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.CreateTaxi(c.Request.Context(), order.TaxiRequest{
		CustomerID:    types.ID(req.CustomerID),
		CustomerPhone: req.CustomerPhone,
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		Vehicle:       types.VehicleType(req.Vehicle),
		PickupNotes:   req.PickupNotes,
		DropoffNotes:  req.DropoffNotes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, o)
}

type cartItemReq struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type createFoodReq struct {
	CustomerID     string        `json:"customer_id"`
	CustomerPhone  string        `json:"customer_phone"`
	RestaurantID   string        `json:"restaurant_id"`
	RestaurantName string        `json:"restaurant_name"`
	Restaurant     order.Place   `json:"restaurant"`
	Dropoff        order.Place   `json:"dropoff"`
	Items          []cartItemReq `json:"items"`
	// Total is the menu checkout's precomputed bill; when present it is
	// stored verbatim instead of an estimate.
	Total        *int64 `json:"total"`
	DropoffNotes string `json:"dropoff_notes"`
}

func (h *OrderHandler) CreateFood(c *gin.Context) {
	var req createFoodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	items := make([]order.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.CartItem{
			ID:       types.ID(it.ID),
			Name:     it.Name,
			Price:    types.EGP(it.Price),
			Quantity: it.Quantity,
		})
	}
	var total *types.Money
	if req.Total != nil {
		m := types.EGP(*req.Total)
		total = &m
	}
	o, err := h.orders.CreateFood(c.Request.Context(), order.FoodRequest{
		CustomerID:     types.ID(req.CustomerID),
		CustomerPhone:  req.CustomerPhone,
		RestaurantID:   types.ID(req.RestaurantID),
		RestaurantName: req.RestaurantName,
		Restaurant:     req.Restaurant,
		Dropoff:        req.Dropoff,
		Items:          items,
		Total:          total,
		DropoffNotes:   req.DropoffNotes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, o)
}

type createPharmacyReq struct {
	CustomerID        string      `json:"customer_id"`
	CustomerPhone     string      `json:"customer_phone"`
	Dropoff           order.Place `json:"dropoff"`
	PrescriptionImage string      `json:"prescription_image"`
	CustomNote        string      `json:"custom_note"`
	DropoffNotes      string      `json:"dropoff_notes"`
}

func (h *OrderHandler) CreatePharmacy(c *gin.Context) {
	var req createPharmacyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.CreatePharmacy(c.Request.Context(), order.PharmacyRequest{
		CustomerID:        types.ID(req.CustomerID),
		CustomerPhone:     req.CustomerPhone,
		Dropoff:           req.Dropoff,
		PrescriptionImage: req.PrescriptionImage,
		CustomNote:        req.CustomNote,
		DropoffNotes:      req.DropoffNotes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, o)
}

type createCustomReq struct {
	CustomerID     string      `json:"customer_id"`
	CustomerPhone  string      `json:"customer_phone"`
	RestaurantName string      `json:"restaurant_name"`
	Restaurant     order.Place `json:"restaurant"`
	Dropoff        order.Place `json:"dropoff"`
	CustomNote     string      `json:"custom_note"`
	DropoffNotes   string      `json:"dropoff_notes"`
}

func (h *OrderHandler) CreateCustomRestaurant(c *gin.Context) {
	var req createCustomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.CreateCustomRestaurant(c.Request.Context(), order.CustomRestaurantRequest{
		CustomerID:     types.ID(req.CustomerID),
		CustomerPhone:  req.CustomerPhone,
		RestaurantName: req.RestaurantName,
		Restaurant:     req.Restaurant,
		Dropoff:        req.Dropoff,
		CustomNote:     req.CustomNote,
		DropoffNotes:   req.DropoffNotes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, o)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	o, err := h.orders.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

func (h *OrderHandler) ListByCustomer(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing customer id")
		return
	}
	list, err := h.orders.ListByCustomer(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if list == nil {
		list = []order.Order{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"orders": list})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	if err := h.orders.Cancel(c.Request.Context(), types.ID(id)); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": order.StatusCancelled})
}

type acceptOfferReq struct {
	OfferID string `json:"offer_id"`
}

// Accept promotes the chosen offer. The offer is fetched first so an unknown
// offer id reads as 404 rather than a validation failure.
func (h *OrderHandler) Accept(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req acceptOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.OfferID == "" {
		writeError(c, http.StatusBadRequest, "missing offer_id")
		return
	}
	off, err := h.offers.Get(c.Request.Context(), types.ID(req.OfferID))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	o, err := h.orders.AcceptOffer(c.Request.Context(), types.ID(id), *off)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

type rateReq struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

func (h *OrderHandler) Rate(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.Rate(c.Request.Context(), types.ID(id), req.Rating, req.Feedback)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

// ListOffers returns the order's offers in receipt order. Unknown orders are
// 404, not an empty list.
func (h *OrderHandler) ListOffers(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	if _, err := h.orders.Get(c.Request.Context(), types.ID(id)); err != nil {
		writeDomainError(c, err)
		return
	}
	list, err := h.offers.ListByOrder(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if list == nil {
		list = []offer.Offer{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"offers": list})
}
