package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhpenta/planviz"
	"github.com/mhpenta/planviz/storage"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	floorPlan string
	reference string
	output    string
	dataURI   bool
	furniture bool
}

func newRenderCmd() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a floor plan in the style of a reference image",
		Example: `planviz render --floor-plan plan.png --reference living-room.jpg -o renders/flat-12
planviz render --floor-plan plan.png --reference ref.webp --data-uri > render.txt
planviz render --floor-plan plan.png --reference ref.jpg --detect-furniture -o renders/flat-12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.floorPlan, "floor-plan", "", "path to the floor plan image (required)")
	cmd.Flags().StringVar(&f.reference, "reference", "", "path to the style reference image (required)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output path without extension (default <output.dir>/render-<timestamp>)")
	cmd.Flags().BoolVar(&f.dataURI, "data-uri", false, "print the render as a data URI instead of saving it")
	cmd.Flags().BoolVar(&f.furniture, "detect-furniture", false, "list the furniture in the render as JSON (saved as <output>.furniture.json)")
	_ = cmd.MarkFlagRequired("floor-plan")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func runRender(cmd *cobra.Command, f renderFlags) error {
	ctx := cmd.Context()

	manager, err := newManager(ctx)
	if err != nil {
		return err
	}
	defer manager.Close()

	floorPlan, err := os.Open(f.floorPlan)
	if err != nil {
		return fmt.Errorf("failed to open floor plan: %w", err)
	}
	defer floorPlan.Close()

	reference, err := os.Open(f.reference)
	if err != nil {
		return fmt.Errorf("failed to open reference: %w", err)
	}
	defer reference.Close()

	stderr := cmd.ErrOrStderr()
	pipeline := newPipeline(manager, nil)
	img, err := pipeline.Run(ctx,
		&planviz.RawImage{Name: filepath.Base(f.floorPlan), Reader: floorPlan},
		&planviz.RawImage{Name: filepath.Base(f.reference), Reader: reference},
		func(st planviz.Stage) {
			fmt.Fprintf(stderr, "%s...\n", st.Label())
		},
	)
	if err != nil {
		return err
	}

	var items []planviz.FurnitureItem
	if f.furniture {
		fmt.Fprintln(stderr, "Detecting furniture...")
		if items, err = pipeline.DetectFurniture(ctx, img); err != nil {
			return err
		}
	}

	if f.dataURI {
		fmt.Fprintln(cmd.OutOrStdout(), img.DataURI())
		if f.furniture {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(items)
		}
		return nil
	}

	dir, key := outputLocation(f.output, cfg.Output.Dir, time.Now())
	store, err := storage.NewFileStore(dir)
	if err != nil {
		return err
	}
	saved, err := planviz.SaveImage(ctx, store, img, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Render saved at: %s (%d bytes)\n", saved.Location, saved.Size)

	if f.furniture {
		listing, err := planviz.SaveFurniture(ctx, store, items, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Furniture saved at: %s (%d items)\n", listing.Location, len(items))
	}
	return nil
}

// outputLocation splits the -o value into a store directory and a key without
// extension. An empty output falls back to a timestamped name under defaultDir.
func outputLocation(output, defaultDir string, now time.Time) (dir, key string) {
	if output == "" {
		return defaultDir, "render-" + now.Format("20060102-150405")
	}
	dir = filepath.Dir(output)
	key = strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
	return dir, key
}

func init() { rootCmd.AddCommand(newRenderCmd()) }
