package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pwgbots/diafram/pkg/textmetrics"
)

// newMetricsCmd creates the metrics command for inspecting the font-metric
// approximation tables (debug tool).
func newMetricsCmd() *cobra.Command {
	var (
		size    int
		weight  int
		numeric bool
		font    string
	)

	cmd := &cobra.Command{
		Use:   "metrics [text...]",
		Short: "Inspect font-metric tables and measure text (debug tool)",
		Long: `Print the per-size line-height table and per-weight width factors,
then measure each given text argument at the requested size and weight.

With --numeric, arguments are measured with the fixed-advance numeric
approximation used for aspect-value labels instead of exact glyph advances.`,
		Example: `  # Dump the metric tables
  diafram metrics

  # Measure a label at size 10
  diafram metrics --size 10 "Supply cooling water"

  # Numeric approximation, bold
  diafram metrics --numeric --weight 700 "95.5" "-0.7" "≥100%"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := textmetrics.New()
			if err != nil {
				return err
			}
			if font != "" {
				if err := cache.ChangeFont(font); err != nil {
					return err
				}
			}

			printKeyValue("Family", cache.Family())

			var heights []string
			for s := textmetrics.MinSize; s <= textmetrics.MaxSize; s++ {
				heights = append(heights, fmt.Sprintf("%d:%.2f", s, cache.Height(s)))
			}
			printKeyValue("Heights", strings.Join(heights, " "))

			var factors []string
			for w := textmetrics.MinWeight; w <= textmetrics.MaxWeight; w += 100 {
				factors = append(factors, fmt.Sprintf("%d:%.3f", w, cache.WeightFactor(w)))
			}
			printKeyValue("Factors", strings.Join(factors, " "))

			for _, text := range args {
				var sz textmetrics.Size
				if numeric {
					sz = cache.NumberSize(text, size, weight)
				} else {
					sz = cache.TextSize(text, size, weight)
				}
				printKeyValue(fmt.Sprintf("%q", text), fmt.Sprintf("%.2f × %.2f", sz.Width, sz.Height))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 12, "font size in points")
	cmd.Flags().IntVar(&weight, "weight", 400, "font weight (100-900)")
	cmd.Flags().BoolVar(&numeric, "numeric", false, "use the fixed-advance numeric approximation")
	cmd.Flags().StringVar(&font, "font", "", "font family to measure with")

	return cmd
}
