package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thewell/content-studio/internal/charts"
)

func newChartCmd(a *app) *cobra.Command {
	var (
		spec    charts.Spec
		kind    string
		width   int
		height  int
		format  string
		outFile string
		browser bool
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a bar, line or pie chart in brand colors",
		Example: `  studio chart --type bar --labels Base,Bonus --values 150000,50000 --out comp.svg
  studio chart --type pie --labels Equities,Bonds,Cash --values 60,30,10 --format png --out mix.png`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec.Type = charts.Type(kind)

			var data []byte
			switch format {
			case "svg":
				svg, err := charts.New(a.brand).Render(spec, width, height)
				if err != nil {
					return err
				}
				data = []byte(svg)
			case "png":
				png, err := rasterize(cmd, a, spec, width, height, browser)
				if err != nil {
					return err
				}
				data = png
			default:
				return fmt.Errorf("unsupported chart format %q (use svg or png)", format)
			}

			if outFile == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outFile, data, 0o644); err != nil {
				return fmt.Errorf("failed to write chart: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s chart to %s\n", spec.Type, outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", string(charts.TypeBar), "Chart type: bar, line or pie")
	cmd.Flags().StringSliceVar(&spec.Labels, "labels", nil, "Comma separated labels")
	cmd.Flags().Float64SliceVar(&spec.Values, "values", nil, "Comma separated non-negative values")
	cmd.Flags().IntVar(&width, "width", charts.DefaultWidth, "Canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", charts.DefaultHeight, "Canvas height in pixels")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "Output format: svg or png")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&browser, "browser", false, "Rasterize PNGs with headless Chrome")
	return cmd
}

func rasterize(cmd *cobra.Command, a *app, spec charts.Spec, width, height int, browser bool) ([]byte, error) {
	if browser {
		return a.chrome().RasterizeChart(cmd.Context(), spec, width, height)
	}
	return charts.NewPNGRasterizer(a.brand).RasterizeChart(cmd.Context(), spec, width, height)
}
