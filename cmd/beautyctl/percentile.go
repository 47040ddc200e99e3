package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"beauty-api/internal/domain"
	"beauty-api/internal/service"
)

type percentileOutput struct {
	domain.Standing
	Verdict     string `json:"verdict"`
	ExpectedAge int    `json:"expected_age"`
}

func newPercentileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "percentile <score>",
		Short: "Estimate percentile and world rank for a beauty score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
				return fmt.Errorf("invalid score %q: %w", args[0], service.ErrNonFiniteScore)
			}
			standing, err := service.EstimateStanding(score)
			if err != nil {
				return err
			}
			age, _ := service.ExpectedAge(score, nil)
			return writeJSON(cmd.OutOrStdout(), percentileOutput{
				Standing:    standing,
				Verdict:     service.StandingVerdict(standing.Percentile),
				ExpectedAge: age,
			})
		},
	}
}
