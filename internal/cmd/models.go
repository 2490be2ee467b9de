package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mhpenta/planviz"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List and probe Gemini models",
	}
	cmd.AddCommand(newModelsListCmd(), newModelsProbeCmd())
	return cmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List models that support content generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			listing := newProber(manager, nil).ListModels(cmd.Context())
			if !listing.OK() {
				for _, d := range listing.Diagnostics() {
					fmt.Fprintln(cmd.ErrOrStderr(), d)
				}
				if listing.Kind == planviz.ListingFailed {
					return listing.Err
				}
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tDISPLAY NAME")
			for _, m := range listing.Models {
				fmt.Fprintf(w, "%s\t%s\n", m.Name, m.DisplayName)
			}
			return w.Flush()
		},
	}
}

func newModelsProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Send a probe request to every model and report which return images",
		Long: "probe sends one small drawing request to each generation-capable model, in listing " +
			"order, and reports whether the response carried inline image data. The first model " +
			"that did is reported as the best model.",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager(cmd.Context())
			if err != nil {
				return err
			}
			defer manager.Close()

			stderr := cmd.ErrOrStderr()
			results := newProber(manager, nil).TestAllWithProgress(cmd.Context(), func(index, total int, r planviz.ProbeResult) {
				fmt.Fprintf(stderr, "[%d/%d] %s\n", index+1, total, r.ModelName)
			})

			return writeProbeReport(cmd.OutOrStdout(), results)
		},
	}
}

// writeProbeReport prints one row per result in probe order, then the best model.
func writeProbeReport(out io.Writer, results []planviz.ProbeResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(out, "No models were probed.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tIMAGES\tTIME\tERROR")
	for _, r := range results {
		images := "no"
		if r.SupportsImageGeneration {
			images = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", r.ModelName, images, r.ResponseTimeMs, r.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := planviz.BestModel(results); ok {
		_, err := fmt.Fprintf(out, "\nBest model: %s\n", best.ModelName)
		return err
	}
	_, err := fmt.Fprintln(out, "\nNo model returned an image.")
	return err
}

func init() { rootCmd.AddCommand(newModelsCmd()) }
