package main

import (
	"context"
	"fmt"

	"mandir/internal/db"
	"mandir/internal/seed"
	"mandir/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with the puja catalog",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		pujaRepo := store.NewPujaRepository(pool)

		logrus.Info("Seeding pujas...")
		if err := seed.SeedPujas(ctx, pujaRepo); err != nil {
			return fmt.Errorf("failed to seed pujas: %w", err)
		}

		logrus.Info("Pujas seeded successfully")

		return nil
	},
}
