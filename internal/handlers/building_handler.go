package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dardif/lodging-api/internal/audit"
	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/httpresp"
	"github.com/dardif/lodging-api/internal/middleware"
	"github.com/dardif/lodging-api/internal/models"
	"github.com/dardif/lodging-api/internal/timezone"
)

var errInvalidRange = errors.New("invalid date range")

// ======================================================
// HANDLER
// ======================================================

type BuildingHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewBuildingHandler(
	db *gorm.DB,
	audit *audit.Dispatcher,
) *BuildingHandler {
	return &BuildingHandler{
		db:    db,
		audit: audit,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBuildingRequest struct {
	Name          string   `json:"name" binding:"required"`
	Location      string   `json:"location" binding:"required"`
	Distance      float64  `json:"distance"`
	Description   string   `json:"description" binding:"required"`
	Specification []string `json:"specification"`
}

type UpdateBuildingRequest struct {
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Distance      float64  `json:"distance"`
	Description   string   `json:"description"`
	Specification []string `json:"specification"`
}

// ======================================================
// CREATE (admin)
// ======================================================

func (h *BuildingHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	building := models.Building{
		Name:          req.Name,
		Location:      req.Location,
		Distance:      req.Distance,
		Description:   req.Description,
		Specification: req.Specification,
	}

	if err := h.db.Create(&building).Error; err != nil {
		httperr.Internal(c, "failed_to_create_building", "Erro ao criar prédio.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "building_created",
		Entity:   "building",
		EntityID: &building.ID,
	})

	httpresp.Created(c, building)
}

// ======================================================
// UPDATE (admin)
// ======================================================

func (h *BuildingHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var building models.Building
	if err := h.db.First(&building, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeBuildingNotFound, "Prédio não encontrado.")
		return
	}

	var req UpdateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	if req.Name != "" {
		building.Name = req.Name
	}
	if req.Location != "" {
		building.Location = req.Location
	}
	if req.Distance != 0 {
		building.Distance = req.Distance
	}
	if req.Description != "" {
		building.Description = req.Description
	}
	if req.Specification != nil {
		building.Specification = req.Specification
	}

	if err := h.db.Save(&building).Error; err != nil {
		httperr.Internal(c, "failed_to_update_building", "Erro ao atualizar prédio.")
		return
	}

	httpresp.OK(c, building)
}

// ======================================================
// DELETE (admin) — cascata: apartamentos, reservas e dias
// ======================================================

func (h *BuildingHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var building models.Building
	if err := h.db.Preload("Apartments").First(&building, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeBuildingNotFound, "Prédio não encontrado.")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		apartmentIDs := tx.Model(&models.Apartment{}).
			Select("id").
			Where("building_id = ?", building.ID)
		if err := tx.Where("apartment_id IN (?)", apartmentIDs).
			Delete(&models.BlockedDate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("building_id = ?", building.ID).
			Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("building_id = ?", building.ID).
			Delete(&models.Apartment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&building).Error
	})

	if err != nil {
		httperr.Internal(c, "failed_to_delete_building", "Erro ao apagar prédio.")
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "building_deleted",
		Entity:   "building",
		EntityID: &building.ID,
	})

	httpresp.OK(c, gin.H{"message": "Prédio apagado com sucesso."})
}

// ======================================================
// GET
// ======================================================

func (h *BuildingHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var building models.Building
	if err := h.db.
		Preload("Apartments").
		Preload("Apartments.NotAvailable").
		First(&building, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeBuildingNotFound, "Prédio não encontrado.")
		return
	}

	httpresp.OK(c, building)
}

// ======================================================
// LIST — busca por localização, tamanho e disponibilidade
// ======================================================

func (h *BuildingHandler) List(c *gin.Context) {
	location := c.Query("location")
	apartmentCount := 0
	if v := c.Query("apartment"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httperr.BadRequest(c, "invalid_apartment_count", "Quantidade de apartamentos inválida.")
			return
		}
		apartmentCount = n
	}

	days, err := requestedDays(c.Query("d1"), c.Query("d2"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date_range", "Confira a data inicial e final.")
		return
	}

	query := h.db.
		Preload("Apartments").
		Preload("Apartments.NotAvailable")

	if location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}

	var buildings []models.Building
	if err := query.Find(&buildings).Error; err != nil {
		httperr.Internal(c, "failed_to_list_buildings", "Erro ao listar prédios.")
		return
	}

	filtered := make([]models.Building, 0, len(buildings))
	for _, b := range buildings {
		if len(b.Apartments) < apartmentCount {
			continue
		}
		if len(days) > 0 && !hasFreeApartment(b.Apartments, days) {
			continue
		}
		filtered = append(filtered, b)
	}

	httpresp.List(c, filtered)
}

// ======================================================
// HELPERS
// ======================================================

// requestedDays expande d1..d2 em dias individuais.
func requestedDays(d1, d2 string) ([]time.Time, error) {
	if d1 == "" || d2 == "" {
		return nil, nil
	}

	start, err := timezone.ParseDay(d1)
	if err != nil {
		return nil, err
	}
	end, err := timezone.ParseDay(d2)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, errInvalidRange
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

func hasFreeApartment(apartments []models.Apartment, days []time.Time) bool {
	for _, ap := range apartments {
		blocked := make(map[time.Time]struct{}, len(ap.NotAvailable))
		for _, bd := range ap.NotAvailable {
			blocked[timezone.Day(bd.Date)] = struct{}{}
		}

		free := true
		for _, day := range days {
			if _, ok := blocked[day]; ok {
				free = false
				break
			}
		}
		if free {
			return true
		}
	}
	return false
}
