package main

import (
	"fmt"
	"time"

	"github.com/phrazzld/quill-api/internal/domain/srs"
	"github.com/spf13/cobra"
)

type stateOptions struct {
	interval float64
	ease     float64
}

func (o *stateOptions) bind(cmd *cobra.Command) {
	params := srs.NewDefaultParams()
	cmd.Flags().Float64Var(&o.interval, "interval", params.InitialInterval, "current interval in days")
	cmd.Flags().Float64Var(&o.ease, "ease", params.InitialEaseFactor, "current ease factor")
}

func (o *stateOptions) state() (srs.State, error) {
	params := srs.NewDefaultParams()
	if o.interval < params.InitialInterval {
		return srs.State{}, fmt.Errorf("--interval must be at least %g", params.InitialInterval)
	}
	if o.ease < params.MinEaseFactor {
		return srs.State{}, fmt.Errorf("--ease must be at least %g", params.MinEaseFactor)
	}
	return srs.State{Interval: o.interval, EaseFactor: o.ease}, nil
}

func newReviewCmd() *cobra.Command {
	opts := &stateOptions{}
	var quality int
	var on string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Apply one graded review to a card state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := opts.state()
			if err != nil {
				return err
			}
			if quality < int(srs.QualityForgot) || quality > int(srs.QualityEasy) {
				return fmt.Errorf("--quality must be between %d and %d", srs.QualityForgot, srs.QualityEasy)
			}

			now := time.Now().UTC()
			if on != "" {
				if now, err = parseDate(on); err != nil {
					return err
				}
			}

			result := srs.Review(state, srs.Quality(quality), now, srs.NewDefaultParams())
			fmt.Fprintln(cmd.OutOrStdout(), reviewTable(state, result))
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVarP(&quality, "quality", "q", int(srs.QualityGood), "recall grade 0-5 (forgot=0, good=3, easy=5)")
	cmd.Flags().StringVar(&on, "on", "", "review date (YYYY-MM-DD), defaults to now")

	return cmd
}

func newPreviewCmd() *cobra.Command {
	opts := &stateOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the next interval behind each review button",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := opts.state()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), previewTable(srs.Preview(state, srs.NewDefaultParams())))
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}
