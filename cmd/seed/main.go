package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/cache"
	"github.com/andresuchdata/pomonitor/backend-go/internal/config"
	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/pomonitor/backend-go/internal/service"
	"github.com/andresuchdata/pomonitor/backend-go/internal/storage"
	"github.com/andresuchdata/pomonitor/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

type contextKey string

const (
	storeKey   contextKey = "store"
	serviceKey contextKey = "po_service"
)

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db-driver",
			Usage:   "Store backend: sqlite, postgres or pgx",
			EnvVars: []string{"DB_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "db-url",
			Usage:   "Database connection string",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "db-path",
			Usage:   "SQLite database file",
			EnvVars: []string{"DB_PATH"},
		},
	}
}

func databaseConfig(c *cli.Context, cfg *config.Config) config.DatabaseConfig {
	dbCfg := cfg.Database
	if c.IsSet("db-driver") {
		dbCfg.Driver = c.String("db-driver")
	}
	if c.IsSet("db-url") {
		dbCfg.URL = c.String("db-url")
	}
	if c.IsSet("db-path") {
		dbCfg.Path = c.String("db-path")
	}
	return dbCfg
}

func initStore(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	dbCfg := databaseConfig(c, cfg)
	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()

	db, err := sqlstore.NewDB(ctx, &dbCfg)
	if err != nil {
		return fmt.Errorf("failed to open po store: %w", err)
	}

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("dashboard cache unavailable, summaries will not be invalidated")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	loc := cfg.App.Location()
	poService := service.NewPOService(
		sqlstore.NewPORepository(db),
		dashboardCache,
		func() domain.Date { return domain.Today(loc) },
	)

	// Store the connection and service in the context
	c.Context = context.WithValue(c.Context, storeKey, db)
	c.Context = context.WithValue(c.Context, serviceKey, poService)
	return nil
}

func closeStore(c *cli.Context) error {
	if db, ok := c.Context.Value(storeKey).(*sqlstore.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func poServiceFrom(c *cli.Context) *service.POService {
	return c.Context.Value(serviceKey).(*service.POService)
}

func reportServiceFrom(c *cli.Context, upload bool) (*service.ReportService, error) {
	storageCfg := config.Load().Storage
	var store storage.ObjectStorage
	if upload {
		client, err := storage.NewMinioClient(storageCfg)
		if err != nil {
			return nil, err
		}
		store = client
	}
	return service.NewReportService(poServiceFrom(c), store, storageCfg.Prefix), nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "seed",
		Usage: "Manage the purchase order store from the command line",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the purchase order schema if it does not exist",
				Flags:  dbFlags(),
				Before: initStore,
				After:  closeStore,
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, "schema ready")
					return nil
				},
			},
			{
				Name:  "import",
				Usage: "Import purchase orders from a CSV file",
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "CSV file to import",
						Required: true,
					},
				),
				Before: initStore,
				After:  closeStore,
				Action: runImport,
			},
			{
				Name:  "export",
				Usage: "Export purchase orders with their current status as CSV",
				Flags: append(append(dbFlags(), filterFlags()...),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Output file, - for stdout",
						Value:   "-",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Also upload the report to object storage",
					},
				),
				Before: initStore,
				After:  closeStore,
				Action: runExport,
			},
			{
				Name:   "list",
				Usage:  "List purchase orders",
				Flags:  append(dbFlags(), filterFlags()...),
				Before: initStore,
				After:  closeStore,
				Action: runList,
			},
			{
				Name:   "summary",
				Usage:  "Show dashboard KPIs",
				Flags:  append(dbFlags(), filterFlags()...),
				Before: initStore,
				After:  closeStore,
				Action: runSummary,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}
