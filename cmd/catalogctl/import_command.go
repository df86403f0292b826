package main

import (
	"fmt"
	"strconv"

	"github.com/pageza/nocapcooking/backend/internal/database"
	"github.com/pageza/nocapcooking/backend/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import recipe JSON files into the catalog database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.catalogConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg, a.logger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if migrate {
				if err := database.RunMigrations(db, cfg.MigrationsDir, a.logger); err != nil {
					return err
				}
			}

			report, err := importer.New(db, a.logger).ImportDir(cmd.Context(), args[0])
			if report != nil {
				printImportReport(cmd, report)
			}
			if err != nil {
				return err
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d records failed to import", len(report.Failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply pending schema migrations first")
	return cmd
}

func printImportReport(cmd *cobra.Command, report *importer.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Files: %d  Imported: %d  Failed: %d\n", report.Files, report.Imported, len(report.Failed))
	if len(report.Failed) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Failed))
	for _, f := range report.Failed {
		index := ""
		if f.Index >= 0 {
			index = strconv.Itoa(f.Index)
		}
		rows = append(rows, []string{f.File, index, f.Name, f.Err.Error()})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"File", "#", "Recipe", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	))
}
