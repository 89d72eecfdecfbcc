// stocktake aplica un conteo físico en CSV sobre el libro de inventario, igual que
// POST /api/inventory-operations/import_csv/ pero desde la línea de comandos.
//
// Uso: go run ./cmd/stocktake --file conteo.csv --actor <user-id> [--encoding latin1] [--dry-run]
// El almacenamiento se toma de la configuración habitual (STORE_DRIVER, SQLITE_PATH, DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/csvimport"
	"github.com/jhoicas/almacen-api/internal/infrastructure/store"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	var (
		file     = pflag.StringP("file", "f", "", "archivo CSV del conteo")
		encoding = pflag.StringP("encoding", "e", csvimport.EncodingUTF8, "codificación del archivo: utf-8 | latin1")
		actorID  = pflag.String("actor", "", "ID del usuario que registra los asientos")
		role     = pflag.String("role", entity.RoleFulfiller, "rol del usuario (fulfiller | administrator)")
		dryRun   = pflag.Bool("dry-run", false, "solo valida el archivo, no registra asientos")
	)
	pflag.Parse()

	if *file == "" || *actorID == "" {
		fmt.Fprintln(os.Stderr, "uso: stocktake --file conteo.csv --actor <user-id> [--encoding latin1] [--dry-run]")
		os.Exit(2)
	}
	if *role != entity.RoleFulfiller && *role != entity.RoleAdministrator {
		fmt.Fprintf(os.Stderr, "rol %q no puede registrar asientos\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *file, *encoding, entity.Actor{ID: *actorID, Role: *role}, *dryRun); err != nil {
		log.Error().Err(err).Str("file", *file).Msg("conteo no aplicado")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, path, encoding string, actor entity.Actor, dryRun bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir CSV: %w", err)
	}
	defer f.Close()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	drafts, err := csvimport.NewReader(st.Ingredients).Read(ctx, f, encoding)
	if err != nil {
		return err
	}

	if dryRun {
		invalid := 0
		for i, d := range drafts {
			if len(d.Invalid) > 0 {
				invalid++
				fmt.Printf("fila %d: %v\n", i+1, d.Invalid)
			}
		}
		fmt.Printf("%d filas leídas, %d inválidas (sin registrar)\n", len(drafts), invalid)
		return nil
	}

	settings := inventory.DefaultSettings()
	ledger := inventory.NewLedgerUseCase(st.TxRunner, st.Ingredients, st.Operations, settings, log.Named("ledger"))
	res, err := inventory.NewBatchProcessor(ledger, log.Named("batch")).Apply(ctx, actor, drafts)
	if err != nil {
		return err
	}
	printSummary(res)
	return nil
}

func printSummary(res *dto.BatchOperationResponse) {
	fmt.Printf("Registrados: %d  Rechazados: %d\n", res.Success, res.Failed)
	for _, op := range res.Results {
		fmt.Printf("  ok    %-3s %10s  %s\n", op.OperationType, op.Quantity.String(), op.IngredientID)
	}
	for _, e := range res.Errors {
		fmt.Printf("  error fila %d: %v\n", e.Index+1, e.Errors)
	}
}
