package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-stock/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Allocation *stock.AllocationUseCase
	Query      *stock.QueryUseCase
}

// Router registra las rutas del motor de lotes. Este módulo se monta dentro
// del backend hospitalario, que aporta autenticación y el resto de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	stockGroup := api.Group("/stock")
	handler := NewStockHandler(deps.Allocation, deps.Query)

	// Mutaciones (requieren X-Actor-ID para auditoría)
	stockGroup.Post("/receive", handler.Receive)
	stockGroup.Post("/consume", handler.Consume)
	stockGroup.Post("/adjust", handler.Adjust)
	stockGroup.Post("/transfer", handler.Transfer)
	stockGroup.Post("/dispose", handler.Dispose)

	// Consultas
	stockGroup.Get("/alerts", handler.Alerts)
	stockGroup.Get("/items/:id/status", handler.Status)
	stockGroup.Get("/items/:id/lots", handler.Lots)
	stockGroup.Get("/items/:id/movements", handler.Movements)
}
