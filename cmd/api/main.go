package main

import (
	"context"
	"os"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/georgemunganga/orderdesk/internal/config"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
	"github.com/georgemunganga/orderdesk/internal/platform/database"
	"github.com/georgemunganga/orderdesk/internal/platform/logging"
)

func main() {
	// Money renders as JSON numbers, which is what the web client expects.
	decimal.MarshalJSONWithoutQuotes = true

	app := &cli.App{
		Name:   "orderdesk",
		Usage:  "order desk API for a goods distributor",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply schema migrations and ensure the admin account exists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "down", Usage: "roll back every migration instead"},
				},
				Action: migrateCmd,
			},
			{
				Name:   "check-prices",
				Usage:  "print the wholesale and retail price of every product",
				Action: checkPrices,
			},
			{
				Name:  "import-prices",
				Usage: "update or insert products from a CSV price list (name,category,wholesale_price,price)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "path to the CSV file", Required: true},
				},
				Action: importPrices,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("orderdesk failed")
	}
}

// bootstrap loads configuration, sets up logging and opens a migrated store.
func bootstrap(ctx context.Context) (*config.Config, *database.SQLStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, nil, err
	}
	store, err := database.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("driver", dialect).Info("Connected to the database")

	if err := database.MigrateUp(store); err != nil {
		store.Close()
		return nil, nil, err
	}
	return cfg, store, nil
}

func ensureAdmin(ctx context.Context, cfg *config.Config, users user.Service) error {
	_, err := users.EnsureAdmin(ctx, user.AdminSeed{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	return err
}

func migrateCmd(c *cli.Context) error {
	if c.Bool("down") {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.Setup(cfg.LogLevel, cfg.LogFormat)
		dialect, err := cfg.Dialect()
		if err != nil {
			return err
		}
		store, err := database.Open(c.Context, dialect, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		return database.MigrateDown(store)
	}

	cfg, store, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer store.Close()
	return ensureAdmin(c.Context, cfg, user.NewService(user.NewSQLRepository(store)))
}
