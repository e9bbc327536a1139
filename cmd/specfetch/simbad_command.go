package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"specfetch/internal/simbad"
)

type simbadObjectJSON struct {
	Identifier   string   `json:"identifier"`
	ObjectType   string   `json:"object_type,omitempty"`
	RA           *float64 `json:"ra,omitempty"`
	Dec          *float64 `json:"dec,omitempty"`
	PMRA         *float64 `json:"pm_ra,omitempty"`
	PMDec        *float64 `json:"pm_dec,omitempty"`
	Parallax     *float64 `json:"parallax,omitempty"`
	MagU         *float64 `json:"mag_u,omitempty"`
	MagB         *float64 `json:"mag_b,omitempty"`
	MagV         *float64 `json:"mag_v,omitempty"`
	MagI         *float64 `json:"mag_i,omitempty"`
	MagR         *float64 `json:"mag_r,omitempty"`
	SpectralType string   `json:"spectral_type,omitempty"`
}

type simbadCountJSON struct {
	Criteria string `json:"criteria"`
	Count    int    `json:"count"`
}

type fluxesJSON struct {
	Identifier string   `json:"identifier"`
	B          *float64 `json:"b,omitempty"`
	V          *float64 `json:"v,omitempty"`
}

func newSimbadCommand(ctx *commandContext) *cobra.Command {
	simbadCmd := &cobra.Command{
		Use:   "simbad",
		Short: "Query SIMBAD for object properties",
	}

	simbadCmd.AddCommand(newSimbadQueryCommand(ctx, "position", "ICRS position in decimal degrees",
		func(cmd *cobra.Command, client *simbad.Client, id string) (any, string, error) {
			pos, err := client.Position(cmd.Context(), id)
			if err != nil {
				return nil, "", err
			}
			return map[string]any{"identifier": id, "ra": pos.RA, "dec": pos.Dec},
				fmt.Sprintf("%s %s", formatFloat(pos.RA), formatFloat(pos.Dec)), nil
		}))
	simbadCmd.AddCommand(newSimbadQueryCommand(ctx, "distance", "Distance in parsecs derived from parallax",
		func(cmd *cobra.Command, client *simbad.Client, id string) (any, string, error) {
			pc, err := client.Distance(cmd.Context(), id)
			if err != nil {
				return nil, "", err
			}
			return map[string]any{"identifier": id, "parsecs": pc}, formatFloat(pc) + " pc", nil
		}))
	simbadCmd.AddCommand(newSimbadQueryCommand(ctx, "sptype", "Spectral type",
		func(cmd *cobra.Command, client *simbad.Client, id string) (any, string, error) {
			sp, err := client.SpectralType(cmd.Context(), id)
			if err != nil {
				return nil, "", err
			}
			return map[string]any{"identifier": id, "spectral_type": sp}, sp, nil
		}))
	simbadCmd.AddCommand(newSimbadQueryCommand(ctx, "otype", "Object type",
		func(cmd *cobra.Command, client *simbad.Client, id string) (any, string, error) {
			ot, err := client.ObjectType(cmd.Context(), id)
			if err != nil {
				return nil, "", err
			}
			return map[string]any{"identifier": id, "object_type": ot}, ot, nil
		}))
	simbadCmd.AddCommand(newSimbadQueryCommand(ctx, "ids", "Alternate identifiers",
		func(cmd *cobra.Command, client *simbad.Client, id string) (any, string, error) {
			ids, err := client.IDList(cmd.Context(), id)
			if err != nil {
				return nil, "", err
			}
			return map[string]any{"identifier": id, "ids": ids}, strings.Join(ids, "\n"), nil
		}))
	simbadCmd.AddCommand(newSimbadQueryCommand(ctx, "fluxes", "B and V band fluxes",
		func(cmd *cobra.Command, client *simbad.Client, id string) (any, string, error) {
			fl, err := client.BVFluxes(cmd.Context(), id)
			if err != nil {
				return nil, "", err
			}
			payload := fluxesJSON{Identifier: id, B: finite(fl.B), V: finite(fl.V)}
			return payload, fmt.Sprintf("B=%s V=%s", formatOptional(fl.B), formatOptional(fl.V)), nil
		}))

	simbadCmd.AddCommand(newSimbadSearchCommand(ctx))

	return simbadCmd
}

type simbadQuery func(cmd *cobra.Command, client *simbad.Client, identifier string) (any, string, error)

func newSimbadQueryCommand(ctx *commandContext, use, short string, query simbadQuery) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <identifier>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := strings.TrimSpace(strings.Join(args, " "))
			client, err := ctx.simbadClient()
			if err != nil {
				return err
			}
			payload, text, err := query(cmd, client, identifier)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, payload)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatOptional(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return formatFloat(v)
}

func newSimbadSearchCommand(ctx *commandContext) *cobra.Command {
	var ra, dec, radius float64
	var unit, frame string
	var maxObjects int
	var count, properMotions, parallax, noFluxes bool

	cmd := &cobra.Command{
		Use:   "search [criteria]",
		Short: "List SIMBAD objects matching a criteria expression or inside a cone",
		Example: "  specfetch simbad search \"Vmag < 2 & sptype = 'B*'\"\n" +
			"  specfetch simbad search --ra 152.09 --dec 11.97 --radius 10 --unit m",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := strings.TrimSpace(strings.Join(args, " "))
			hasRA, hasDec := cmd.Flags().Changed("ra"), cmd.Flags().Changed("dec")
			switch {
			case hasRA != hasDec:
				return fmt.Errorf("--ra and --dec must be given together")
			case hasRA && criteria != "":
				return fmt.Errorf("provide criteria or --ra/--dec, not both")
			case hasRA:
				cone := simbad.Cone{RA: ra, Dec: dec, Radius: radius, Unit: simbad.RadiusUnit(unit), Frame: frame}
				region, err := cone.Criteria()
				if err != nil {
					return err
				}
				criteria = region
			case criteria == "":
				return fmt.Errorf("provide criteria or --ra/--dec")
			}

			client, err := ctx.simbadClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if count {
				n, err := client.CritCount(cmd.Context(), criteria)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, simbadCountJSON{Criteria: criteria, Count: n})
				}
				fmt.Fprintf(out, "%d objects match %s\n", n, criteria)
				return nil
			}

			opts := simbad.SearchOptions{
				MaxObjects:    maxObjects,
				OmitFluxes:    noFluxes,
				ProperMotions: properMotions,
				Parallax:      parallax,
			}
			objects, err := client.CritSearch(cmd.Context(), criteria, opts)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				payload := make([]simbadObjectJSON, 0, len(objects))
				for _, obj := range objects {
					payload = append(payload, toSimbadObjectJSON(obj))
				}
				return writeJSON(cmd, payload)
			}
			if len(objects) == 0 {
				fmt.Fprintln(out, "No SIMBAD objects found")
				return nil
			}
			fmt.Fprintln(out, renderSimbadObjects(objects, opts))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&ra, "ra", 0, "Cone center right ascension in degrees")
	flags.Float64Var(&dec, "dec", 0, "Cone center declination in degrees")
	flags.Float64Var(&radius, "radius", 10, "Cone radius")
	flags.StringVar(&unit, "unit", string(simbad.Arcminutes), "Cone radius unit: d, m, or s")
	flags.StringVar(&frame, "frame", "icrs", "Coordinate frame of the cone center")
	flags.IntVar(&maxObjects, "max", simbad.DefaultMaxObjects, "Maximum objects to list")
	flags.BoolVar(&count, "count", false, "Print the number of matches instead of listing them")
	flags.BoolVar(&properMotions, "pm", false, "Include proper motions")
	flags.BoolVar(&parallax, "plx", false, "Include parallaxes")
	flags.BoolVar(&noFluxes, "no-fluxes", false, "Omit magnitudes")
	return cmd
}

func toSimbadObjectJSON(obj simbad.Object) simbadObjectJSON {
	return simbadObjectJSON{
		Identifier:   obj.Identifier,
		ObjectType:   obj.ObjectType,
		RA:           finite(obj.RA),
		Dec:          finite(obj.Dec),
		PMRA:         finite(obj.PMRA),
		PMDec:        finite(obj.PMDec),
		Parallax:     finite(obj.Parallax),
		MagU:         finite(obj.Magnitudes.U),
		MagB:         finite(obj.Magnitudes.B),
		MagV:         finite(obj.Magnitudes.V),
		MagI:         finite(obj.Magnitudes.I),
		MagR:         finite(obj.Magnitudes.R),
		SpectralType: obj.SpectralType,
	}
}

func renderSimbadObjects(objects []simbad.Object, opts simbad.SearchOptions) string {
	headers := []string{"Identifier", "Type", "RA", "Dec"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}
	if !opts.OmitFluxes {
		headers = append(headers, "B", "V")
		aligns = append(aligns, alignRight, alignRight)
	}
	if opts.ProperMotions {
		headers = append(headers, "PM RA", "PM Dec")
		aligns = append(aligns, alignRight, alignRight)
	}
	if opts.Parallax {
		headers = append(headers, "Plx")
		aligns = append(aligns, alignRight)
	}
	headers = append(headers, "Sp. Type")
	aligns = append(aligns, alignLeft)

	rows := make([][]string, 0, len(objects))
	for _, obj := range objects {
		row := []string{obj.Identifier, dashIfEmpty(obj.ObjectType), formatOptional(obj.RA), formatOptional(obj.Dec)}
		if !opts.OmitFluxes {
			row = append(row, formatOptional(obj.Magnitudes.B), formatOptional(obj.Magnitudes.V))
		}
		if opts.ProperMotions {
			row = append(row, formatOptional(obj.PMRA), formatOptional(obj.PMDec))
		}
		if opts.Parallax {
			row = append(row, formatOptional(obj.Parallax))
		}
		rows = append(rows, append(row, dashIfEmpty(obj.SpectralType)))
	}
	return renderTable(headers, rows, aligns)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
