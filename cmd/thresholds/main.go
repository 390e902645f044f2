package main

import (
	"context"
	"os"
	"time"

	appstock "github.com/jhoicas/hospital-stock/internal/application/stock"
	"github.com/jhoicas/hospital-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/hospital-stock/pkg/config"
	"github.com/jhoicas/hospital-stock/pkg/logger"
)

// Job programado (cron semanal) que recalcula los umbrales de reorden de todo
// el catálogo a partir del consumo reciente. Nunca corre en línea con una
// petición.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"}).Component("thresholds")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := appstock.NewThresholdUseCase(
		postgres.NewItemRepository(pool),
		postgres.NewLotRepository(pool),
		postgres.NewMovementRepository(pool),
		log,
	)

	start := time.Now()
	summary, err := uc.Recompute(ctx)
	if err != nil {
		log.Error().Err(err).
			Int("evaluated", summary.Evaluated).
			Int("updated", summary.Updated).
			Msg("recálculo de umbrales falló")
		os.Exit(1)
	}
	log.Info().
		Int("evaluated", summary.Evaluated).
		Int("updated", summary.Updated).
		Dur("elapsed", time.Since(start)).
		Msg("recálculo de umbrales ok")
}
