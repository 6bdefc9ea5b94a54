package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/httpresp"
	"github.com/dardif/lodging-api/internal/middleware"
	"github.com/dardif/lodging-api/internal/models"
	"github.com/dardif/lodging-api/internal/timezone"
	ucbooking "github.com/dardif/lodging-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db       *gorm.DB
	reserve  *ucbooking.Reserve
	checkIn  *ucbooking.CheckIn
	complete *ucbooking.Complete
	release  *ucbooking.ReleaseDates
}

func NewBookingHandler(
	db *gorm.DB,
	reserve *ucbooking.Reserve,
	checkIn *ucbooking.CheckIn,
	complete *ucbooking.Complete,
	release *ucbooking.ReleaseDates,
) *BookingHandler {
	return &BookingHandler{
		db:       db,
		reserve:  reserve,
		checkIn:  checkIn,
		complete: complete,
		release:  release,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	Dates      []string `json:"dates" binding:"required"`
	TotalPrice float64  `json:"total_price" binding:"required"`
	PaymentID  string   `json:"payment_id" binding:"required"`
	Phone      string   `json:"phone"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	buildingID, err1 := strconv.ParseUint(c.Param("id"), 10, 64)
	apartmentID, err2 := strconv.ParseUint(c.Param("apartmentId"), 10, 64)
	if err1 != nil || err2 != nil {
		httperr.BadRequest(c, "invalid_request", "Identificador inválido.")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, s := range req.Dates {
		d, err := timezone.ParseDay(s)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}
		dates = append(dates, d)
	}

	bk, err := h.reserve.Execute(c.Request.Context(), ucbooking.ReserveInput{
		BuildingID:  uint(buildingID),
		ApartmentID: uint(apartmentID),
		UserID:      userID,
		Dates:       dates,
		TotalPrice:  req.TotalPrice,
		PaymentID:   req.PaymentID,
		Phone:       req.Phone,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.Created(c, bk)
}

// ======================================================
// CHECK-IN (admin)
// ======================================================

func (h *BookingHandler) CheckIn(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Identificador inválido.")
		return
	}

	bk, err := h.checkIn.Execute(c.Request.Context(), uint(id), userID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.OK(c, bk)
}

// ======================================================
// COMPLETE (admin)
// ======================================================

func (h *BookingHandler) Complete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Identificador inválido.")
		return
	}

	bk, err := h.complete.Execute(c.Request.Context(), uint(id), userID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.OK(c, bk)
}

// ======================================================
// RELEASE DATES (admin)
// ======================================================

func (h *BookingHandler) Release(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Identificador inválido.")
		return
	}

	if err := h.release.Execute(c.Request.Context(), uint(id)); err != nil {
		writeBookingError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"message": "Datas liberadas com sucesso."})
}

// ======================================================
// LIST (admin)
// ======================================================

func (h *BookingHandler) List(c *gin.Context) {
	var bookings []models.Booking
	if err := h.db.
		Preload("Dates").
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Erro ao listar reservas.")
		return
	}

	httpresp.List(c, bookings)
}

// ======================================================
// GET (admin)
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var bk models.Booking
	if err := h.db.Preload("Dates").First(&bk, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeBookingNotFound, "Reserva não encontrada.")
		return
	}

	httpresp.OK(c, bk)
}

// ======================================================
// LIST OWN
// ======================================================

func (h *BookingHandler) ListOwn(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var bookings []models.Booking
	if err := h.db.
		Preload("Dates").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		httperr.Internal(c, "failed_to_list_bookings", "Erro ao listar reservas.")
		return
	}

	httpresp.List(c, bookings)
}

// ======================================================
// GET OWN
// ======================================================

func (h *BookingHandler) GetOwn(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var bk models.Booking
	if err := h.db.Preload("Dates").First(&bk, id).Error; err != nil {
		httperr.NotFound(c, httperr.CodeBookingNotFound, "Reserva não encontrada.")
		return
	}

	if bk.UserID != userID {
		httperr.Forbidden(c, "access_denied", "Acesso negado.")
		return
	}

	httpresp.OK(c, bk)
}

// ======================================================
// ERROR MAPPING
// ======================================================

func writeBookingError(c *gin.Context, err error) {
	// timeout de pagamento/persistência: nada foi gravado, pode repetir
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		httperr.Write(c, http.StatusServiceUnavailable, "timeout", "Tente novamente.")
		return
	}

	code, ok := httperr.BusinessCode(err)
	if !ok {
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	switch code {
	case httperr.CodeBuildingNotFound:
		httperr.NotFound(c, code, "Prédio não encontrado.")
	case httperr.CodeApartmentNotFound:
		httperr.NotFound(c, code, "Apartamento não encontrado.")
	case httperr.CodeBookingNotFound:
		httperr.NotFound(c, code, "Reserva não encontrada.")
	case httperr.CodeUnitNotInBuilding:
		httperr.BadRequest(c, code, "Apartamento não pertence a este prédio.")
	case httperr.CodeEmptyRequest:
		httperr.BadRequest(c, code, "Informe as datas da reserva.")
	case httperr.CodePastDate:
		httperr.BadRequest(c, code, "Data anterior à data atual.")
	case httperr.CodeDuplicateDate:
		httperr.BadRequest(c, code, "Não pode reservar a mesma data duas vezes.")
	case httperr.CodeDateConflict:
		httperr.BadRequest(c, code, "Apartamento já reservado.")
	case httperr.CodePaymentMismatch:
		httperr.BadRequest(c, code, "Pagamento inválido.")
	case httperr.CodeAlreadyChecked:
		httperr.BadRequest(c, code, "Hóspede já fez check-in.")
	case httperr.CodeAlreadyCompleted:
		httperr.BadRequest(c, code, "Reserva já concluída.")
	case httperr.CodeInvalidTransition:
		httperr.BadRequest(c, code, "Status da reserva não pode mudar.")
	case httperr.CodeConcurrencyConflict:
		// retryable: o cliente pode repetir a reserva inteira
		httperr.Conflict(c, code, "Tente novamente.")
	default:
		httperr.Internal(c, "internal_error", "Erro interno.")
	}
}
