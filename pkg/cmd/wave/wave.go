package wave

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	queryservice "github.com/JeroenBertels/glh-timer/pkg/service/query"
	"github.com/JeroenBertels/glh-timer/pkg/timing/target"
)

func NewWaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wave raceId stageId targets",
		Short: "computes staggered start offsets for a stage",
		Long: `For every matching participant the elapsed times over all stages
preceding the target stage are summed. Participants missing a duration
on any preceding stage are left out. The fastest starts first.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showWave(cmd, args[0], args[1], args[2])
		},
	}
}

func showWave(cmd *cobra.Command, raceID, stageID, targetsArg string) error {
	targets, err := target.ParseList(targetsArg)
	if err != nil {
		return err
	}
	pool, cleanup, err := bootstrap.InitPool(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := queryservice.NewQueryService(pool).GetWaveSchedule(
		cmd.Context(), raceID, stageID, targets)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%4d %-30s %-12s +%s\n",
			e.Bib, e.Name, e.Group, e.Formatted)
	}
	return nil
}
