package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"specfetch/internal/mast"
)

type iueRowJSON struct {
	DatasetID string   `json:"dataset_id"`
	Tier      string   `json:"tier"`
	Fields    []string `json:"fields"`
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search the MAST archive for datasets",
	}
	searchCmd.AddCommand(newSearchIUECommand(ctx))
	searchCmd.AddCommand(newSearchSTISCommand(ctx))
	return searchCmd
}

func newSearchIUECommand(ctx *commandContext) *cobra.Command {
	var opts mast.IUESearchOptions

	cmd := &cobra.Command{
		Use:   "iue [target]",
		Short: "List IUE observations by target name or position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Target = args[0]
			}
			client, err := ctx.mastClient()
			if err != nil {
				return err
			}
			rows, err := client.IUESearch(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				payload := make([]iueRowJSON, 0, len(rows))
				for _, row := range rows {
					payload = append(payload, iueRowJSON{DatasetID: row.DatasetID(), Tier: row.Tier(), Fields: row.Fields})
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No IUE observations found")
				return nil
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{row.DatasetID(), row.Tier(), strings.Join(row.Fields, ", ")})
			}
			fmt.Fprintln(out, renderTable([]string{"Dataset", "Tier", "Fields"}, tableRows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.RA, "ra", "", "Right ascension in decimal degrees")
	cmd.Flags().StringVar(&opts.Dec, "dec", "", "Declination in decimal degrees")
	cmd.Flags().StringVar(&opts.Radius, "radius", "", "Search radius in arcminutes (default 3.0)")
	cmd.Flags().StringVar(&opts.Camera, "camera", "", "IUE camera number (default 3)")
	cmd.Flags().IntVar(&opts.MaxRecords, "max", 0, "Maximum rows (defaults to mast.max_records)")
	return cmd
}

func newSearchSTISCommand(ctx *commandContext) *cobra.Command {
	var opts mast.STISSearchOptions

	cmd := &cobra.Command{
		Use:   "stis [target]",
		Short: "List HST/STIS echelle observations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Target = args[0]
			}
			client, err := ctx.mastClient()
			if err != nil {
				return err
			}
			datasets, err := client.STISSearch(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if datasets == nil {
					datasets = []mast.STISDataset{}
				}
				return writeJSON(cmd, datasets)
			}

			out := cmd.OutOrStdout()
			if len(datasets) == 0 {
				fmt.Fprintln(out, "No STIS observations found")
				return nil
			}
			headers := []string{"Dataset", "Target", "RA", "Dec", "Date", "Exp (s)", "Grating", "Cen. wave", "Sep"}
			rows := make([][]string, 0, len(datasets))
			for _, d := range datasets {
				sep := "-"
				if d.Separation != nil {
					sep = formatFloat(*d.Separation)
				}
				rows = append(rows, []string{
					d.Dataset,
					d.Target,
					formatFloat(d.RA),
					formatFloat(d.Dec),
					strings.TrimSpace(d.Date + " " + d.StartTime),
					formatFloat(d.ExpTime),
					d.Grating,
					formatFloat(d.CenWave),
					sep,
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.RA, "ra", "", "Right ascension in decimal degrees")
	cmd.Flags().StringVar(&opts.Dec, "dec", "", "Declination in decimal degrees")
	cmd.Flags().StringVar(&opts.Radius, "radius", "", "Search radius in arcminutes (default 3.0)")
	cmd.Flags().StringVar(&opts.Grating, "grating", "", "Grating (E140H, E140M, E230H, E230M)")
	cmd.Flags().StringVar(&opts.Config, "detector", "", "Instrument configuration when the grating does not imply one")
	cmd.Flags().StringVar(&opts.ObsType, "obstype", "", "S for science, C for calibration, % for both")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Public, Proprietary, or % for both")
	cmd.Flags().IntVar(&opts.MaxRecords, "max", 0, "Maximum rows (defaults to mast.max_records)")
	return cmd
}
