package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// IndicatorsResult is the output of the indicators command.
type IndicatorsResult struct {
	AgeGroup   string   `json:"age_group" yaml:"age_group"`
	LoadID     string   `json:"load_id" yaml:"load_id"`
	Rows       int      `json:"rows" yaml:"rows"`
	Indicators []string `json:"indicators" yaml:"indicators"`
}

// NewIndicatorsCommand creates the indicators command.
func NewIndicatorsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators <age-group>",
		Short: "List the indicators of an age group",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rootOpts.load(cmd, args[0])
			if err != nil {
				return err
			}

			res := IndicatorsResult{
				AgeGroup:   t.AgeGroup,
				LoadID:     t.LoadID,
				Rows:       t.Len(),
				Indicators: t.IndicatorNames(),
			}
			return rootOpts.formatter(cmd).Success(res, func(w io.Writer) error {
				for _, name := range res.Indicators {
					if _, err := fmt.Fprintln(w, name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
