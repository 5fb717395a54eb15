package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/hivdash/internal/core"
	"github.com/JonMunkholm/hivdash/internal/schema"
)

// selection holds the flags shared by summary and export.
type selection struct {
	Indicator string
	Year      int
}

func (s *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.Indicator, "indicator", "i", "", "indicator name (default: first indicator in the file)")
	cmd.Flags().IntVarP(&s.Year, "year", "y", schema.LastYear, "year to select")
}

// slice loads ageGroup and returns the selected year slice.
func (s *selection) slice(cmd *cobra.Command, opts *RootOptions, ageGroup string) (*core.Table, string, []core.CountryValue, error) {
	if !schema.IsYear(s.Year) {
		return nil, "", nil, fmt.Errorf("%w: %d", core.ErrYearOutOfRange, s.Year)
	}

	t, err := opts.load(cmd, ageGroup)
	if err != nil {
		return nil, "", nil, err
	}

	indicator := s.Indicator
	if indicator == "" {
		names := t.IndicatorNames()
		if len(names) == 0 {
			return nil, "", nil, fmt.Errorf("%w: dataset has no indicators", core.ErrNoData)
		}
		indicator = names[0]
	}
	if !t.HasIndicator(indicator) {
		return nil, "", nil, fmt.Errorf("%w: indicator %q", core.ErrNoData, indicator)
	}

	values, err := t.YearSlice(indicator, s.Year)
	return t, indicator, values, err
}

// SummaryResult is the output of the summary command.
type SummaryResult struct {
	AgeGroup  string           `json:"age_group" yaml:"age_group"`
	Indicator string           `json:"indicator" yaml:"indicator"`
	Year      int              `json:"year" yaml:"year"`
	Summary   core.Summary     `json:"summary" yaml:"summary"`
	Groups    []core.GroupMean `json:"regions" yaml:"regions"`
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "summary <age-group>",
		Short: "Summarize one indicator at one year",
		Long: `Print the number of reporting countries, the mean rate, the highest
and lowest country, and the mean rate per region.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, indicator, values, err := sel.slice(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}
			summary, err := core.Summarize(values)
			if err != nil {
				return err
			}

			res := SummaryResult{
				AgeGroup:  t.AgeGroup,
				Indicator: indicator,
				Year:      sel.Year,
				Summary:   summary,
				Groups:    core.GroupMeans(values, core.GroupRegion),
			}
			return rootOpts.formatter(cmd).Success(res, res.writeText)
		},
	}

	sel.register(cmd)
	return cmd
}

func (r SummaryResult) writeText(w io.Writer) error {
	rate := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

	fmt.Fprintf(w, "Age group:  %s\n", core.AgeGroupLabel(r.AgeGroup))
	fmt.Fprintf(w, "Indicator:  %s\n", r.Indicator)
	fmt.Fprintf(w, "Year:       %d\n", r.Year)
	fmt.Fprintf(w, "Countries:  %d\n", r.Summary.Count)
	fmt.Fprintf(w, "Mean:       %.4f\n", r.Summary.Mean)
	fmt.Fprintf(w, "Highest:    %s (%s)\n", r.Summary.Highest.CountryName, rate(r.Summary.Highest.Rate))
	fmt.Fprintf(w, "Lowest:     %s (%s)\n", r.Summary.Lowest.CountryName, rate(r.Summary.Lowest.Rate))
	fmt.Fprintln(w, "Regions:")
	for _, g := range r.Groups {
		if _, err := fmt.Fprintf(w, "  %-28s %.4f (%d)\n", g.Key, g.Mean, g.Count); err != nil {
			return err
		}
	}
	return nil
}
