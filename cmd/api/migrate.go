package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := setup()
				if err != nil {
					return err
				}
				db, err := postgres.NewDB(cmd.Context(), cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()

				applied, err := postgres.NewMigrator(db, cfg.Database.MigrationsDir).Up(cmd.Context())
				if err != nil {
					return err
				}
				log.Info().Int("applied", applied).Msg("migrations complete")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, _, err := setup()
				if err != nil {
					return err
				}
				db, err := postgres.NewDB(cmd.Context(), cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()

				statuses, err := postgres.NewMigrator(db, cfg.Database.MigrationsDir).Status(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
				for _, s := range statuses {
					at := "pending"
					if s.Applied && s.AppliedAt != nil {
						at = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(w, "%03d\t%s\t%s\n", s.Version, s.Name, at)
				}
				return w.Flush()
			},
		},
	)
	return cmd
}
