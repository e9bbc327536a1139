package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"specfetch/internal/preflight"
)

type statusJSON struct {
	Checks []preflight.Result `json:"checks"`
	Failed int                `json:"failed"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, the history ledger, and remote services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := preflight.Options{Network: !offline}
			if opts.Network {
				opts.HTTPClient = &http.Client{Timeout: cfg.ArchiveTimeout()}
			}
			results := preflight.RunAll(cmd.Context(), cfg, opts)
			failed := preflight.Failed(results)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, statusJSON{Checks: results, Failed: failed}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, line := range renderChecks(results, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				if offline {
					fmt.Fprintln(out, "Remote checks skipped (--offline)")
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d status checks failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the remote service checks")
	return cmd
}
