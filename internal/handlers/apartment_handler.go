package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dardif/lodging-api/internal/audit"
	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/httpresp"
	"github.com/dardif/lodging-api/internal/middleware"
	"github.com/dardif/lodging-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type ApartmentHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewApartmentHandler(
	db *gorm.DB,
	audit *audit.Dispatcher,
) *ApartmentHandler {
	return &ApartmentHandler{
		db:    db,
		audit: audit,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateApartmentRequest struct {
	Number        int      `json:"number" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	Type          string   `json:"type" binding:"required"`
	Space         float64  `json:"space"`
	PricePerDay   float64  `json:"price_per_day" binding:"required"`
	Specification []string `json:"specification"`
}

func isValidApartmentType(t string) bool {
	return t == models.ApartmentTypeAppartement || t == models.ApartmentTypeStudio
}

type UpdateApartmentRequest struct {
	Number        int      `json:"number"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Space         float64  `json:"space"`
	PricePerDay   float64  `json:"price_per_day"`
	Specification []string `json:"specification"`
}

// ======================================================
// CREATE (admin)
// ======================================================

func (h *ApartmentHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	buildingID := c.Param("id")

	var building models.Building
	if err := h.db.First(&building, buildingID).Error; err != nil {
		httperr.NotFound(c, httperr.CodeBuildingNotFound, "Prédio não encontrado.")
		return
	}

	var req CreateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if !isValidApartmentType(req.Type) {
		httperr.BadRequest(c, "invalid_apartment_type", "Tipo de apartamento inválido.")
		return
	}

	var count int64
	h.db.Model(&models.Apartment{}).
		Where("building_id = ? AND number = ?", building.ID, req.Number).
		Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "duplicate_apartment_number", "Número de apartamento duplicado.")
		return
	}

	apartment := models.Apartment{
		BuildingID:    building.ID,
		Number:        req.Number,
		Name:          req.Name,
		Type:          req.Type,
		Space:         req.Space,
		PricePerDay:   req.PricePerDay,
		Specification: req.Specification,
	}

	if err := h.db.Create(&apartment).Error; err != nil {
		httperr.Internal(c, "failed_to_create_apartment", "Erro ao criar apartamento.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "apartment_created",
		Entity:   "apartment",
		EntityID: &apartment.ID,
	})

	httpresp.Created(c, apartment)
}

// ======================================================
// UPDATE (admin) — número não muda
// ======================================================

func (h *ApartmentHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Number != 0 {
		httperr.BadRequest(c, "number_immutable", "Número do apartamento não pode mudar.")
		return
	}

	var apartment models.Apartment
	if err := h.db.First(&apartment, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeApartmentNotFound, "Apartamento não encontrado.")
		return
	}

	if req.Name != "" {
		apartment.Name = req.Name
	}
	if req.Type != "" {
		if !isValidApartmentType(req.Type) {
			httperr.BadRequest(c, "invalid_apartment_type", "Tipo de apartamento inválido.")
			return
		}
		apartment.Type = req.Type
	}
	if req.Space != 0 {
		apartment.Space = req.Space
	}
	if req.PricePerDay != 0 {
		apartment.PricePerDay = req.PricePerDay
	}
	if req.Specification != nil {
		apartment.Specification = req.Specification
	}

	if err := h.db.Save(&apartment).Error; err != nil {
		httperr.Internal(c, "failed_to_update_apartment", "Erro ao atualizar apartamento.")
		return
	}

	httpresp.OK(c, apartment)
}

// ======================================================
// DELETE (admin) — cascata: reservas e dias do apartamento
// ======================================================

func (h *ApartmentHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var apartment models.Apartment
	if err := h.db.First(&apartment, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeApartmentNotFound, "Apartamento não encontrado.")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("apartment_id = ?", apartment.ID).
			Delete(&models.BlockedDate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("apartment_id = ?", apartment.ID).
			Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&apartment).Error
	})

	if err != nil {
		httperr.Internal(c, "failed_to_delete_apartment", "Erro ao apagar apartamento.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "apartment_deleted",
		Entity:   "apartment",
		EntityID: &apartment.ID,
	})

	httpresp.OK(c, gin.H{"message": "Apartamento apagado com sucesso."})
}

// ======================================================
// GET
// ======================================================

func (h *ApartmentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var apartment models.Apartment
	if err := h.db.
		Preload("Building").
		Preload("NotAvailable").
		First(&apartment, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeApartmentNotFound, "Apartamento não encontrado.")
		return
	}

	httpresp.OK(c, apartment)
}

// ======================================================
// LIST BY BUILDING
// ======================================================

func (h *ApartmentHandler) ListByBuilding(c *gin.Context) {
	buildingID := c.Param("id")

	var building models.Building
	if err := h.db.First(&building, buildingID).Error; err != nil {
		httperr.NotFound(c, httperr.CodeBuildingNotFound, "Prédio não encontrado.")
		return
	}

	var apartments []models.Apartment
	if err := h.db.
		Preload("NotAvailable").
		Where("building_id = ?", building.ID).
		Order("number ASC").
		Find(&apartments).Error; err != nil {
		httperr.Internal(c, "failed_to_list_apartments", "Erro ao listar apartamentos.")
		return
	}

	httpresp.List(c, apartments)
}
