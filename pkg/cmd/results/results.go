package results

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	queryservice "github.com/JeroenBertels/glh-timer/pkg/service/query"
	"github.com/JeroenBertels/glh-timer/pkg/timing/results"
)

var (
	groupFilter string
	sexFilter   string
)

func NewResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results raceId stageId",
		Short: "displays the ranked results of a stage",
		Long: `Recomputes the ranking from the raw timing events. The stage id
"Overall" yields the synthetic total over all regular stages.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showResults(cmd, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&groupFilter, "group", "", "restrict to one group")
	cmd.Flags().StringVar(&sexFilter, "sex", "", "restrict to one sex")
	return cmd
}

func showResults(cmd *cobra.Command, raceID, stageID string) error {
	pool, cleanup, err := bootstrap.InitPool(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	rows, err := queryservice.NewQueryService(pool).GetResults(
		cmd.Context(), raceID, stageID,
		results.Filter{Group: groupFilter, Sex: sexFilter})
	if err != nil {
		return err
	}
	for _, row := range rows {
		rank := "-"
		if row.Rank != nil {
			rank = fmt.Sprintf("%d", *row.Rank)
		}
		note := ""
		if row.Note != "" {
			note = "  (" + row.Note + ")"
		}
		fmt.Printf("%3s %4d %-30s %-12s %8s%s\n",
			rank, row.Bib, row.Name, row.Group, row.Formatted, note)
	}
	return nil
}
