package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-stock/internal/application/dto"
	"github.com/jhoicas/hospital-stock/internal/application/stock"
	"github.com/jhoicas/hospital-stock/internal/domain"
	"github.com/jhoicas/hospital-stock/internal/domain/entity"
	"github.com/jhoicas/hospital-stock/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del motor de lotes. La autenticación
// vive en el backend que monta este módulo; aquí solo se exige el id del
// actor (header X-Actor-ID) para atribución en el libro de movimientos.
type StockHandler struct {
	alloc *stock.AllocationUseCase
	query *stock.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(alloc *stock.AllocationUseCase, query *stock.QueryUseCase) *StockHandler {
	return &StockHandler{alloc: alloc, query: query}
}

// actorID lee el id del usuario que ejecuta la operación.
func actorID(c *fiber.Ctx) string {
	return c.Get("X-Actor-ID")
}

// writeError traduce errores de dominio a códigos HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		available := insufficient.Available
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: err.Error(), Available: &available,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo, lote o ubicación no encontrado"})
	case errors.Is(err, domain.ErrNegativeResult):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NEGATIVE_RESULT", Message: "el ajuste dejaría el lote en negativo"})
	case errors.Is(err, domain.ErrIncompatibleLocation):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INCOMPATIBLE_LOCATION", Message: "rango de temperatura incompatible"})
	case errors.Is(err, domain.ErrLotDisposed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOT_DISPOSED", Message: "el lote ya fue dado de baja"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// Receive godoc
// @Summary  Registrar recepción de un lote
// @Tags     stock
// @Accept   json
// @Produce  json
// @Router   /api/stock/receive [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ACTOR", Message: "falta el header X-Actor-ID"})
	}
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lot, err := h.alloc.Receive(c.Context(), stock.ReceiveInput{
		ItemID:     in.ItemID,
		LotNumber:  in.LotNumber,
		Quantity:   in.Quantity,
		BuyPrice:   in.BuyPrice,
		SellPrice:  in.SellPrice,
		ExpiresAt:  in.ExpiresAt,
		Supplier:   in.Supplier,
		LocationID: in.LocationID,
		Meta:       stock.Meta{Reason: in.Reason, Reference: in.Reference, Actor: actor},
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lotToDTO(lot))
}

// Consume godoc
// @Summary  Consumo FEFO multi-lote
// @Tags     stock
// @Accept   json
// @Produce  json
// @Router   /api/stock/consume [post]
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ACTOR", Message: "falta el header X-Actor-ID"})
	}
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	allocations, err := h.alloc.Consume(c.Context(), stock.ConsumeInput{
		ItemID:         in.ItemID,
		Quantity:       in.Quantity,
		IncludeExpired: in.IncludeExpired,
		Meta:           stock.Meta{Reason: in.Reason, Reference: in.Reference, Actor: actor},
	})
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AllocationDTO, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, dto.AllocationDTO{LotID: a.LotID, Taken: a.Taken, UnitPrice: a.UnitPrice})
	}
	return c.JSON(fiber.Map{"allocations": out})
}

// Adjust godoc
// @Summary  Ajuste de un lote por conteo físico
// @Tags     stock
// @Accept   json
// @Produce  json
// @Router   /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ACTOR", Message: "falta el header X-Actor-ID"})
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.alloc.Adjust(c.Context(), in.LotID, in.Delta, in.Reason, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(movement))
}

// Transfer godoc
// @Summary  Traslado (o partición) de un lote a otra ubicación
// @Tags     stock
// @Accept   json
// @Produce  json
// @Router   /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ACTOR", Message: "falta el header X-Actor-ID"})
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.alloc.Transfer(c.Context(), in.LotID, in.ToLocationID, in.Quantity, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"movement": movementToDTO(result.Movement),
		"from_lot": lotToDTO(result.FromLot),
		"to_lot":   lotToDTO(result.ToLot),
	})
}

// Dispose godoc
// @Summary  Baja de un lote
// @Tags     stock
// @Accept   json
// @Produce  json
// @Router   /api/stock/dispose [post]
func (h *StockHandler) Dispose(c *fiber.Ctx) error {
	actor := actorID(c)
	if actor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ACTOR", Message: "falta el header X-Actor-ID"})
	}
	var in dto.DisposeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.alloc.Dispose(c.Context(), in.LotID, in.Reason, actor)
	if err != nil {
		return writeError(c, err)
	}
	if movement == nil {
		// El lote ya estaba vacío: baja sin fila en el libro.
		return c.JSON(fiber.Map{"movement": nil})
	}
	return c.JSON(fiber.Map{"movement": movementToDTO(movement)})
}

// Status godoc
// @Summary  Existencias y clasificación de un artículo
// @Tags     stock
// @Produce  json
// @Router   /api/stock/items/{id}/status [get]
func (h *StockHandler) Status(c *fiber.Ctx) error {
	status, err := h.query.StockStatus(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(statusToDTO(status))
}

// Lots godoc
// @Summary  Lotes de un artículo en orden FEFO
// @Tags     stock
// @Produce  json
// @Param    include_expired  query  bool  false  "Incluir lotes vencidos"
// @Router   /api/stock/items/{id}/lots [get]
func (h *StockHandler) Lots(c *fiber.Ctx) error {
	includeExpired := c.QueryBool("include_expired", false)
	lots, err := h.query.ListLots(c.Context(), c.Params("id"), includeExpired)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LotDTO, 0, len(lots))
	for _, l := range lots {
		out = append(out, lotToDTO(l))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// Movements godoc
// @Summary  Historial de movimientos de un artículo
// @Tags     stock
// @Produce  json
// @Router   /api/stock/items/{id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = &t
	}
	movements, err := h.query.ListMovements(c.Context(), c.Params("id"), from, to,
		c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementToDTO(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Alerts godoc
// @Summary  Barrido de alertas de stock del catálogo
// @Tags     stock
// @Produce  json
// @Param    active  query  bool    false  "Solo artículos activos"
// @Param    search  query  string  false  "Búsqueda por nombre o código"
// @Router   /api/stock/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	report, err := h.query.Alerts(c.Context(), repository.ItemFilter{
		ActiveOnly: c.QueryBool("active", false),
		Search:     c.Query("search"),
	})
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.AlertsResponse{
		BelowMin: statusesToDTO(report.BelowMin),
		AboveMax: statusesToDTO(report.AboveMax),
		OK:       statusesToDTO(report.OK),
	}
	return c.JSON(resp)
}

func lotToDTO(l *entity.Lot) dto.LotDTO {
	return dto.LotDTO{
		ID:         l.ID,
		ItemID:     l.ItemID,
		LotNumber:  l.LotNumber,
		ExpiresAt:  l.ExpiresAt,
		Quantity:   l.Quantity,
		BuyPrice:   l.BuyPrice,
		SellPrice:  l.SellPrice,
		Supplier:   l.Supplier,
		Status:     l.Status,
		LocationID: l.LocationID,
		ReceivedAt: l.ReceivedAt,
	}
}

func movementToDTO(m *entity.Movement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:        m.ID,
		ItemID:    m.ItemID,
		LotID:     m.LotID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		Reason:    m.Reason,
		Reference: m.Reference,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func statusToDTO(s *stock.ItemStockStatus) dto.StockStatusDTO {
	return dto.StockStatusDTO{
		ItemID:   s.ItemID,
		Code:     s.Code,
		Name:     s.Name,
		OnHand:   s.OnHand,
		MinStock: s.MinStock,
		MaxStock: s.MaxStock,
		Status:   s.Status,
		Warnings: s.Warnings,
	}
}

func statusesToDTO(list []stock.ItemStockStatus) []dto.StockStatusDTO {
	out := make([]dto.StockStatusDTO, 0, len(list))
	for i := range list {
		out = append(out, statusToDTO(&list[i]))
	}
	return out
}
