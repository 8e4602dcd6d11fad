// seed carga catálogo, stock de apertura, centros de trabajo y BOMs desde un YAML.
//
// Uso: go run ./cmd/seed --file seed.yaml [--memory]
// Repetirlo con el mismo archivo no duplica nada.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Produccion-api/internal/app"
	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/spf13/pflag"
)

func main() {
	file := pflag.StringP("file", "f", "seed.yaml", "archivo de seed (yaml, json o toml)")
	inMemory := pflag.Bool("memory", false, "validar el seed contra un almacenamiento en memoria")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	seed, err := config.LoadSeed(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("leer seed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeFn, err := app.New(ctx, cfg, log, app.Options{InMemory: *inMemory, Authorizer: auth.AllowAll{}})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar motor")
	}
	defer closeFn()

	rep, err := engine.Seeder.Apply(ctx, auth.System, seed)
	if err != nil {
		log.Error().Err(err).Msg("seed incompleto")
		closeFn()
		os.Exit(1)
	}
	log.Info().
		Str("file", *file).
		Int("products", rep.ProductsCreated).
		Int("work_centers", rep.WorkCentersCreated).
		Int("boms", rep.BOMsCreated).
		Int("opening", rep.OpeningPosted).
		Msg("seed terminado")
}
