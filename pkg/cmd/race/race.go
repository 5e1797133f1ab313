package race

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	"github.com/JeroenBertels/glh-timer/pkg/model"
	raceservice "github.com/JeroenBertels/glh-timer/pkg/service/race"
)

var (
	raceName string
	raceDate string
	timezone string
)

func NewRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "commands to manage races",
	}

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newEnsureOverallCmd())

	return cmd
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create raceId",
		Short: "creates a race including its overall stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return createRace(cmd, args[0])
		},
	}
	cmd.Flags().StringVar(&raceName, "name", "", "display name of the race")
	cmd.Flags().StringVar(&raceDate, "date", "",
		"race date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&timezone, "timezone", "Europe/Brussels",
		"IANA timezone of the race")
	return cmd
}

func createRace(cmd *cobra.Command, raceID string) error {
	pool, cleanup, err := bootstrap.InitPool(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	date := time.Now()
	if raceDate != "" {
		if date, err = time.Parse("2006-01-02", raceDate); err != nil {
			return fmt.Errorf("invalid date %q", raceDate)
		}
	}
	name := raceName
	if name == "" {
		name = raceID
	}
	svc := raceservice.NewRaceService(pool)
	created, err := svc.CreateRace(cmd.Context(), &model.Race{
		ID:       raceID,
		Name:     name,
		Date:     date,
		Timezone: timezone,
	})
	if err != nil {
		return err
	}
	log.Info("race created",
		log.String("id", created.ID),
		log.Time("date", created.Date),
		log.String("timezone", created.Timezone))
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists all races",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			races, err := raceservice.NewRaceService(pool).ListRaces(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range races {
				fmt.Printf("%-20s %-30s %s %s\n",
					r.ID, r.Name, r.Date.Format("2006-01-02"), r.Timezone)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete raceId",
		Short: "deletes a race and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			num, err := raceservice.NewRaceService(pool).
				DeleteRace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			log.Info("race deleted", log.String("id", args[0]), log.Int("num", num))
			return nil
		},
	}
}

func newEnsureOverallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-overall raceId",
		Short: "re-creates the overall stage when missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			created, err := raceservice.NewRaceService(pool).
				EnsureOverallStage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !created {
				log.Info("overall stage already present", log.String("race", args[0]))
			}
			return nil
		},
	}
}
