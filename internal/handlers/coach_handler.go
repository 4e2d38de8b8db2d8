package handlers

import (
	"net/http"

	"apexsports_backend/internal/middleware"
	"apexsports_backend/internal/models"
	"apexsports_backend/internal/services"
	"apexsports_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CoachHandler struct {
	*BaseHandler
	coachService services.CoachService
	availability services.AvailabilityService
}

func NewCoachHandler(base *BaseHandler, coachService services.CoachService, availability services.AvailabilityService) *CoachHandler {
	return &CoachHandler{
		BaseHandler:  base,
		coachService: coachService,
		availability: availability,
	}
}

// RegisterRoutes регистрирует публичные и приватные маршруты коучей
func (h *CoachHandler) RegisterRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/coaches")
	{
		public.GET("", h.Search)
		public.GET("/:id", h.GetDetail)
	}

	// Приватные маршруты коуча. Регистрируются под /coaches/me до того,
	// как gin сматчит :id, поэтому группа отдельная.
	me := rg.Group("/coaches/me")
	me.Use(middleware.AuthMiddleware())
	me.Use(middleware.RoleMiddleware(models.UserRoleCoach))
	{
		me.GET("", h.GetMyProfile)
		me.POST("", h.SaveProfile)
		me.PUT("", h.SaveProfile)

		me.POST("/connect-account-link", h.CreateConnectAccountLink)
		me.GET("/connect-status", h.GetConnectStatus)

		me.GET("/availability", h.ListAvailability)
		me.POST("/availability", h.CreateSlot)
		me.POST("/availability/rules", h.CreateRule)
		me.DELETE("/availability/rules/:ruleId", h.DeleteRule)
		me.DELETE("/availability/:slotId", h.DeleteSlot)
	}
}

func (h *CoachHandler) Search(c *gin.Context) {
	var criteria dto.CoachSearchCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	db := h.GetDB(c)

	response, err := h.coachService.Search(c.Request.Context(), db, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CoachHandler) GetDetail(c *gin.Context) {
	db := h.GetDB(c)

	response, err := h.coachService.GetDetail(c.Request.Context(), db, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CoachHandler) GetMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.coachService.GetMyProfile(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CoachHandler) SaveProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SaveCoachProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.coachService.SaveProfile(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CoachHandler) CreateConnectAccountLink(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.coachService.CreateConnectAccountLink(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CoachHandler) GetConnectStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.coachService.GetConnectStatus(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CoachHandler) ListAvailability(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.availability.ListMine(c.Request.Context(), db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *CoachHandler) CreateSlot(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSlotRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.availability.CreateSlot(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *CoachHandler) CreateRule(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRuleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.availability.CreateRule(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *CoachHandler) DeleteRule(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.availability.DeleteRule(c.Request.Context(), db, userID, c.Param("ruleId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability rule deleted"})
}

func (h *CoachHandler) DeleteSlot(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.availability.DeleteSlot(c.Request.Context(), db, userID, c.Param("slotId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Availability slot deleted"})
}
