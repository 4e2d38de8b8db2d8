package handlers

import (
	"net/http"

	"apexsports_backend/internal/middleware"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/services"
	"apexsports_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	*BaseHandler
	bookingService services.BookingService
}

func NewBookingHandler(base *BaseHandler, bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    base,
		bookingService: bookingService,
	}
}

// RegisterRoutes регистрирует маршруты бронирований
func (h *BookingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware())
	{
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.PATCH("/:id", h.UpdateStatus)
		bookings.POST("/:id/review", h.CreateReview)
	}

	// Создавать брони могут только атлеты
	create := rg.Group("/bookings")
	create.Use(middleware.AuthMiddleware())
	create.Use(middleware.RoleMiddleware(models.UserRoleAthlete))
	{
		create.POST("", h.Create)
	}
}

func (h *BookingHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.bookingService.Create(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.bookingService.List(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *BookingHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.bookingService.Get(c.Request.Context(), db, userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateBookingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.bookingService.UpdateStatus(c.Request.Context(), db, userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *BookingHandler) CreateReview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.bookingService.CreateReview(c.Request.Context(), db, userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}
