package main

import (
	"github.com/spf13/cobra"

	"github.com/nekogravitycat/tour-booking-backend/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			pool, err := db.NewPool(cmd.Context(), e.cfg.DBDSN, poolOptions(e.cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			return db.Migrate(cmd.Context(), pool, e.logger)
		},
	}
}
