package csv

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/cmd/bootstrap"
	"github.com/JeroenBertels/glh-timer/pkg/reconcile"
	csvservice "github.com/JeroenBertels/glh-timer/pkg/service/csvsync"
)

var (
	raceID     string
	confirm    bool
	stagedKeep string
)

func NewCsvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "bulk import and export via csv files",
	}

	cmd.PersistentFlags().StringVar(&raceID, "race", "",
		"race the rows belong to (required for all kinds except races)")

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import kind file",
		Short: "reconciles a csv file against the store",
		Long: `Classifies every incoming row as added, modified or ignored by its
natural key. Rows in the store but absent from the file are never
touched. Without --confirm only the preview is shown, nothing is
written. With --confirm the previewed diff is committed in one
transaction. Kinds: races, stages, participants, events.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false,
		"apply the previewed diff")
	cmd.Flags().StringVar(&stagedKeep, "staged-keep", "5m",
		"duration an unconfirmed preview stays applicable")
	return cmd
}

func runImport(cmd *cobra.Command, kindArg, filename string) error {
	kind, err := reconcile.ParseKind(kindArg)
	if err != nil {
		return err
	}
	keep, err := time.ParseDuration(stagedKeep)
	if err != nil {
		return fmt.Errorf("invalid staged-keep %q", stagedKeep)
	}
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	pool, cleanup, err := bootstrap.InitPool(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	svc := csvservice.NewCsvService(pool, csvservice.WithStagedKeep(keep))
	preview, err := svc.Preview(cmd.Context(), kind, raceID, file)
	if err != nil {
		return err
	}
	log.Info("preview",
		log.String("kind", string(kind)),
		log.Int("added", preview.Added),
		log.Int("modified", preview.Modified),
		log.Int("ignored", preview.Ignored))
	if !confirm {
		log.Info("dry run, pass --confirm to apply")
		return nil
	}
	committed, err := svc.Apply(cmd.Context(), preview.Handle)
	if err != nil {
		return err
	}
	log.Info("applied", log.Int("rows", committed))
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export kind",
		Short: "writes the store content as csv to stdout",
		Long: `Export rows mirror the import shape: re-importing an unchanged
export classifies every row as ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := reconcile.ParseKind(args[0])
			if err != nil {
				return err
			}
			pool, cleanup, err := bootstrap.InitPool(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			svc := csvservice.NewCsvService(pool)
			return svc.Export(cmd.Context(), kind, raceID, os.Stdout)
		},
	}
}
