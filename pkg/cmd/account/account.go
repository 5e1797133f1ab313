package account

import (
	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	accountservice "github.com/JeroenBertels/glh-timer/pkg/service/account"
)

var (
	password  string
	scopeRace string
)

func NewAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "commands to manage operator accounts",
	}

	cmd.AddCommand(newEnsureAdminCmd())
	cmd.AddCommand(newAddOrganizerCmd())
	cmd.AddCommand(newVerifyCmd())

	return cmd
}

func newEnsureAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensure-admin username",
		Short: "creates the admin account when missing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			created, err := accountservice.NewAccountService(pool).
				EnsureAdmin(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			if !created {
				log.Info("admin account already present",
					log.String("username", args[0]))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password of the account")
	return cmd
}

func newAddOrganizerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-organizer username",
		Short: "creates an organizer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			acc, err := accountservice.NewAccountService(pool).
				CreateOrganizer(cmd.Context(), args[0], password, scopeRace)
			if err != nil {
				return err
			}
			log.Info("organizer created",
				log.String("username", acc.Username),
				log.String("race", acc.RaceID))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password of the account")
	cmd.Flags().StringVar(&scopeRace, "race", "",
		"restrict the account to one race")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify username",
		Short: "checks credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			acc, err := accountservice.NewAccountService(pool).
				Verify(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			log.Info("credentials ok",
				log.String("username", acc.Username),
				log.String("role", acc.Role))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password of the account")
	return cmd
}
