// reconcile compara el stock cacheado de cada producto con Σ IN − Σ OUT del libro de stock.
//
// Uso: go run ./cmd/reconcile [--product <id>]
// Sale con código 2 si encuentra alguna diferencia.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Produccion-api/internal/app"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	productID := pflag.StringP("product", "p", "", "reconciliar un solo producto")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeFn, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar motor")
	}

	var reports []dto.ReconciliationReport
	if *productID != "" {
		rep, err := engine.Ledger.Reconcile(ctx, *productID)
		if err != nil {
			log.Error().Err(err).Str("product_id", *productID).Msg("reconciliación")
			closeFn()
			os.Exit(1)
		}
		reports = []dto.ReconciliationReport{*rep}
	} else {
		reports, err = engine.Ledger.ReconcileAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("reconciliación")
			closeFn()
			os.Exit(1)
		}
	}
	closeFn()

	mismatches := 0
	for _, r := range reports {
		if !r.Consistent {
			mismatches++
			log.Warn().
				Str("product_id", r.ProductID).
				Str("product", r.ProductName).
				Str("cached", r.Cached.String()).
				Str("ledger", r.Ledger.String()).
				Str("difference", r.Difference.String()).
				Msg("stock inconsistente")
		}
	}
	log.Info().Int("products", len(reports)).Int("mismatches", mismatches).Msg("reconciliación terminada")
	if mismatches > 0 {
		os.Exit(2)
	}
}
