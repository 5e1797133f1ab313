package submit

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	"github.com/JeroenBertels/glh-timer/pkg/config"
	ingestservice "github.com/JeroenBertels/glh-timer/pkg/service/ingest"
	"github.com/JeroenBertels/glh-timer/pkg/timing/target"
)

func NewSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "commands to capture timing observations",
	}

	cmd.AddCommand(newDurationCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newEndCmd())
	cmd.AddCommand(newClaimCmd())
	cmd.AddCommand(newPendingCmd())

	return cmd
}

func newDurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duration raceId stageId targets value",
		Short: "captures an explicit duration for each target",
		Long: `Targets is a comma separated token list: numeric tokens address a
bib, any other token a group. The value is "MM:SS", "HH:MM:SS" or raw
seconds. One event per target is created, all with the same payload.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, args,
				ingestservice.Payload{Duration: args[3]})
		},
	}
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start raceId stageId targets time",
		Short: "captures a start moment for each target",
		Long: `The time is "HH:MM:SS" local to the race or the literal NOW. Group
targets record one start for the whole group.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, args,
				ingestservice.Payload{Start: args[3]})
		},
	}
}

func newEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end raceId stageId [targets] time",
		Short: "captures an end moment, with or without targets",
		Long: `With targets, one end event per target is created. Without targets a
pending event is recorded under the calling --operator identity; it can
be claimed later via "submit claim" once the crossing bib is known.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 3 {
				return submitPendingEnd(cmd, args[0], args[1], args[2])
			}
			return submit(cmd, args, ingestservice.Payload{End: args[3]})
		},
	}
}

//nolint:whitespace // can't make both editor and linter happy
func submit(
	cmd *cobra.Command,
	args []string,
	payload ingestservice.Payload,
) error {
	targets, err := target.ParseList(args[2])
	if err != nil {
		return err
	}
	pool, cleanup, err := bootstrap.InitPool(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	svc := ingestservice.NewIngestService(pool)
	ids, err := svc.Submit(cmd.Context(),
		args[0], args[1], targets, payload, config.Operator)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func submitPendingEnd(cmd *cobra.Command, raceID, stageID, clock string) error {
	pool, cleanup, err := bootstrap.InitPool(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	svc := ingestservice.NewIngestService(pool)
	id, err := svc.SubmitPendingEnd(cmd.Context(),
		raceID, stageID, clock, config.Operator)
	if err != nil {
		return err
	}
	log.Info("pending event recorded",
		log.String("id", id.String()),
		log.String("operator", config.Operator))
	return nil
}

func newClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim eventId targets",
		Short: "assigns targets to a pending end capture",
		Long: `The pending event gets the first target, duplicates with identical
payload are created for the rest. Only the identity that recorded the
event may claim it, and only while it is still targetless.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := uuid.FromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid event id %q", args[0])
			}
			targets, err := target.ParseList(args[1])
			if err != nil {
				return err
			}
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			svc := ingestservice.NewIngestService(pool)
			claimed, duplicates, err := svc.Claim(cmd.Context(),
				eventID, config.Operator, targets)
			if err != nil {
				return err
			}
			log.Info("event claimed",
				log.String("id", claimed.String()),
				log.Int("duplicates", len(duplicates)))
			for _, id := range duplicates {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func newPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending raceId stageId",
		Short: "lists the claimable events of the calling operator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			svc := ingestservice.NewIngestService(pool)
			pending, err := svc.ListPending(cmd.Context(),
				args[0], args[1], config.Operator)
			if err != nil {
				return err
			}
			for _, ev := range pending {
				fmt.Printf("%s end=%s captured=%s\n",
					ev.ID,
					ev.EndTime.Format("15:04:05"),
					ev.ServerTime.Format("15:04:05"))
			}
			return nil
		},
	}
}
