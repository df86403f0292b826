package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/pageza/nocapcooking/backend/internal/recipefile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCountCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <dir>",
		Short: "Count recipes per JSON file, largest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, total, err := recipefile.Count(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(counts))
			for _, c := range counts {
				value := strconv.Itoa(c.Records)
				if c.Err != nil {
					value = "error: " + c.Err.Error()
				}
				rows = append(rows, []string{filepath.Base(c.File), value})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Recipes"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
				"Total", strconv.Itoa(total),
			))
			return nil
		},
	}
}

func newUpdateKeysCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-keys <dir>",
		Short: "Point each record's image and audio keys at the generated media layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := recipefile.UpdateMediaKeys(args[0])
			if err != nil {
				return err
			}
			a.logger.Info("updated media keys", zap.Int("records", n))
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d records\n", n)
			return nil
		},
	}
}
