package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/phrazzld/quill-api/internal/domain/forecast"
	"github.com/spf13/cobra"
)

const defaultHorizonDays = 30.0

type forecastOptions struct {
	file        string
	horizonDays float64
	asJSON      bool
}

func newForecastCmd() *cobra.Command {
	opts := &forecastOptions{}

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast future scores from a score history",
		Long: `Forecast future overall and subskill scores.

The history file is CSV with rows "date,score[,grammar,phrasing,vocabulary]"
(an optional header row is skipped), or a JSON/YAML list of objects with the
same keys. Dates are YYYY-MM-DD or RFC 3339.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForecast(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "score history file (.csv, .json, .yaml)")
	cmd.Flags().Float64Var(&opts.horizonDays, "horizon-days", defaultHorizonDays, "days to forecast")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the forecast as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runForecast(cmd *cobra.Command, opts *forecastOptions) error {
	if opts.horizonDays <= 0 || math.IsNaN(opts.horizonDays) {
		return errors.New("--horizon-days must be positive")
	}
	if opts.horizonDays > forecast.DefaultMaxHorizonDays {
		return fmt.Errorf("--horizon-days must be at most %g", forecast.DefaultMaxHorizonDays)
	}

	hist, err := loadHistory(opts.file)
	if err != nil {
		return err
	}

	result := forecast.Proficiency(hist.overall, hist.subskills, opts.horizonDays)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.PredictedOverall) == 0 {
		fmt.Fprintf(out, "Not enough history to forecast: %d entries, need at least %d.\n",
			len(hist.overall), forecast.MinHistoryEntries)
		return nil
	}

	fmt.Fprintln(out, titleStyle.Render("Overall"))
	fmt.Fprintln(out, overallTable(result.PredictedOverall))

	if len(result.PredictedSubskills) > 0 {
		fmt.Fprintln(out, titleStyle.Render("Subskills"))
		fmt.Fprintln(out, subskillTable(result.PredictedSubskills))
	}
	return nil
}
