// import_lotes registra lotes de compra desde un archivo XML o Excel (.xlsx).
//
// Uso: go run ./cmd/import_lotes ruta/compras.xlsx
// Cada fila es una recepción independiente; las filas con error se listan al final
// y no revierten las demás.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/importer"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: import_lotes <archivo.xml|archivo.xlsx>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir archivo: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := importer.Parse(path, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer %s: %v\n", path, err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout())
	engine := inventory.NewEngine(txRunner, lock.NewLocal(), inventory.EngineConfig{
		MaxRetries:   cfg.Inventory.MaxRetries,
		RetryBackoff: cfg.Inventory.RetryBackoff(),
	}, log.Zerolog())
	uc := inventory.NewImportUseCase(engine, postgres.NewProductRepository(pool), log.Component("import"))

	report, err := uc.Import(ctx, filepath.Base(path), rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Importar: %v\n", err)
		os.Exit(1)
	}
	for _, e := range report.Errors {
		fmt.Printf("  fila %d (%s): %s\n", e.Line, e.SKU, e.Err)
	}
	fmt.Printf("Importado %s: %d lotes, %d filas con error\n", report.Source, report.Imported, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
