package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reservation-service/internal/apperr"
	"reservation-service/internal/models"
	"reservation-service/internal/service"
	"reservation-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	items        *service.ItemService
	availability *service.AvailabilityService
	reservations *service.ReservationService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	items *service.ItemService,
	availability *service.AvailabilityService,
	reservations *service.ReservationService,
) *Handler {
	return &Handler{
		items:        items,
		availability: availability,
		reservations: reservations,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/", h.root)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/items", h.listItems)
		v1.POST("/items", h.createItem)
		v1.GET("/items/:id", h.getItem)
		v1.PUT("/items/:id", h.updateItem)
		v1.DELETE("/items/:id", h.deleteItem)
		v1.GET("/items/:id/availability", h.checkItemAvailability)
		v1.GET("/items/:id/status", h.getItemStatus)

		v1.POST("/reservations", h.createReservation)
		v1.GET("/reservations", h.listReservations)
		v1.GET("/reservations/:id", h.getReservation)
		v1.POST("/reservations/:id/confirm", h.confirmReservation)
		v1.POST("/reservations/:id/cancel", h.cancelReservation)

		v1.POST("/maintenance/expire-reservations", h.expireReservations)
	}
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Inventory reservation API is running"})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listItems handles GET /v1/items
func (h *Handler) listItems(c *gin.Context) {
	items, err := h.items.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, items)
}

// createItem handles POST /v1/items
func (h *Handler) createItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.items.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, item)
}

// getItem handles GET /v1/items/:id
func (h *Handler) getItem(c *gin.Context) {
	item, err := h.items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// updateItem handles PUT /v1/items/:id
func (h *Handler) updateItem(c *gin.Context) {
	var upd models.ItemUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.items.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// deleteItem handles DELETE /v1/items/:id
func (h *Handler) deleteItem(c *gin.Context) {
	if err := h.items.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// checkItemAvailability handles GET /v1/items/:id/availability?quantity=N
// using the item's raw total only, without counting existing holds.
func (h *Handler) checkItemAvailability(c *gin.Context) {
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid quantity parameter")
		return
	}

	available, err := h.items.CheckAvailability(c.Request.Context(), c.Param("id"), quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"available": available})
}

// getItemStatus handles GET /v1/items/:id/status
func (h *Handler) getItemStatus(c *gin.Context) {
	status, err := h.availability.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, status)
}

// createReservation handles POST /v1/reservations
func (h *Handler) createReservation(c *gin.Context) {
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	reservation, err := h.reservations.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, reservation)
}

// listReservations handles GET /v1/reservations
func (h *Handler) listReservations(c *gin.Context) {
	reservations, err := h.reservations.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, reservations)
}

// getReservation handles GET /v1/reservations/:id
func (h *Handler) getReservation(c *gin.Context) {
	reservation, err := h.reservations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, reservation)
}

// confirmReservation handles POST /v1/reservations/:id/confirm
func (h *Handler) confirmReservation(c *gin.Context) {
	reservation, err := h.reservations.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, reservation)
}

// cancelReservation handles POST /v1/reservations/:id/cancel
func (h *Handler) cancelReservation(c *gin.Context) {
	reservation, err := h.reservations.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, reservation)
}

// expireReservations handles POST /v1/maintenance/expire-reservations
func (h *Handler) expireReservations(c *gin.Context) {
	result, err := h.reservations.Expire(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"expired_count": result.ExpiredCount,
		"message":       fmt.Sprintf("%d reservation(s) expired", result.ExpiredCount),
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError maps error kinds to status codes. Unclassified errors
// surface as 500 with an "error" field, the rest carry their message.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		respondMessage(c, http.StatusNotFound, err.Error())
	case apperr.KindValidation:
		respondMessage(c, http.StatusBadRequest, err.Error())
	case apperr.KindConflict:
		respondMessage(c, http.StatusConflict, err.Error())
	case apperr.KindInvalidState:
		respondMessage(c, http.StatusBadRequest, err.Error())
	default:
		util.GetLogger().Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
