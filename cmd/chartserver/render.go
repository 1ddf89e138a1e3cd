package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/render"
)

type renderOptions struct {
	specPath string
	outPath  string
}

func newRenderCmd(envFiles *[]string) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a chart spec to a local PNG file without uploading it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFiles, nil)
			if err != nil {
				return err
			}
			renderer := render.NewGoChartRenderer(cfg.ChartWidth, cfg.ChartHeight)
			return runRender(cmd, renderer, opts)
		},
	}
	cmd.Flags().StringVar(&opts.specPath, "spec", "-", "chart spec JSON file, - for stdin")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "chart.png", "output PNG file")
	return cmd
}

func runRender(cmd *cobra.Command, renderer render.Renderer, opts *renderOptions) error {
	var in io.Reader = cmd.InOrStdin()
	if opts.specPath != "-" {
		f, err := os.Open(opts.specPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var options map[string]json.RawMessage
	if err := json.NewDecoder(in).Decode(&options); err != nil {
		return fmt.Errorf("failed to decode chart spec: %w", err)
	}

	image, err := renderer.Render(cmd.Context(), render.SpecFromOptions(options))
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.outPath, image, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", opts.outPath, humanize.Bytes(uint64(len(image))))
	return nil
}
