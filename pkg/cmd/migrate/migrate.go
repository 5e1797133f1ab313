package migrate

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	"github.com/JeroenBertels/glh-timer/pkg/config"
	"github.com/JeroenBertels/glh-timer/pkg/db/migrate"
	"github.com/JeroenBertels/glh-timer/pkg/utils"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}
	return cmd
}

func startMigration() error {
	bootstrap.PrepareLogger()
	// wait for database
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("invalid duration value, using default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err = utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}

	if err := migrate.MigrateDb(config.DB); err != nil {
		return err
	}
	log.Info("database schema up to date")
	return nil
}
