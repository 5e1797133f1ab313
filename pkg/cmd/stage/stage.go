package stage

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	"github.com/JeroenBertels/glh-timer/pkg/model"
	raceservice "github.com/JeroenBertels/glh-timer/pkg/service/race"
)

var (
	stageName  string
	stageMode  string
	startGroup string
)

func NewStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "commands to manage the stages of a race",
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newSetStartCmd())

	return cmd
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add raceId stageId order",
		Short: "adds a regular stage to a race",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addStage(cmd, args[0], args[1], args[2])
		},
	}
	cmd.Flags().StringVar(&stageName, "name", "", "display name of the stage")
	cmd.Flags().StringVar(&stageMode, "mode", string(model.StageModeDuration),
		"timing mode (EXPLICIT_DURATION, START_END_PAIR)")
	return cmd
}

func addStage(cmd *cobra.Command, raceID, stageID, orderArg string) error {
	order, err := strconv.Atoi(orderArg)
	if err != nil {
		return fmt.Errorf("invalid order %q", orderArg)
	}
	pool, cleanup, err := bootstrap.InitPool(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	name := stageName
	if name == "" {
		name = stageID
	}
	created, err := raceservice.NewRaceService(pool).AddStage(cmd.Context(),
		&model.Stage{
			RaceID: raceID,
			ID:     stageID,
			Name:   name,
			Order:  order,
			Mode:   model.StageMode(stageMode),
		})
	if err != nil {
		return err
	}
	log.Info("stage added",
		log.String("race", created.RaceID),
		log.String("stage", created.ID),
		log.Int("order", created.Order),
		log.String("mode", string(created.Mode)))
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list raceId",
		Short: "lists the stages of a race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			stages, err := raceservice.NewRaceService(pool).
				ListStages(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, s := range stages {
				fmt.Printf("%3d %-20s %-30s %s\n", s.Order, s.ID, s.Name, s.Mode)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete raceId stageId",
		Short: "deletes a regular stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			num, err := raceservice.NewRaceService(pool).
				DeleteStage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			log.Info("stage deleted",
				log.String("stage", args[1]), log.Int("num", num))
			return nil
		},
	}
}

func newSetStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-start raceId stageId time",
		Short: "sets the authoritative start time for a stage group",
		Long: `Sets the clock-of-day start used by start/end timed stages when no
start event was captured. The time is "HH:MM:SS" local to the race or
the literal NOW. Without --group the DEFAULT entry is written.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			entry, err := raceservice.NewRaceService(pool).SetStageStart(
				cmd.Context(), args[0], args[1], startGroup, args[2])
			if err != nil {
				return err
			}
			log.Info("stage start set",
				log.String("stage", entry.StageID),
				log.String("group", entry.GroupName),
				log.String("start", entry.StartHMS))
			return nil
		},
	}
	cmd.Flags().StringVar(&startGroup, "group", "",
		"group the start applies to (default: the DEFAULT entry)")
	return cmd
}
