package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	accountCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/account"
	csvCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/csv"
	migrateCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/migrate"
	raceCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/race"
	resultsCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/results"
	stageCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/stage"
	submitCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/submit"
	waveCmd "github.com/JeroenBertels/glh-timer/pkg/cmd/wave"
	"github.com/JeroenBertels/glh-timer/pkg/config"
	"github.com/JeroenBertels/glh-timer/version"
)

const envPrefix = "GLH"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "glh-timer",
	Short:   "Timing and results backend for multi-stage races",
	Long:    ``,
	Version: version.FullVersion,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.glh-timer.yml)")

	rootCmd.PersistentFlags().StringVar(&config.DB, "db",
		"postgresql://DB_USERNAME:DB_USER_PASSWORD@DB_HOST:5432/glhtimer",
		"connection string for the database")
	rootCmd.PersistentFlags().StringVar(&config.WaitForServices,
		"wait-for-services", "15s",
		"duration to wait for other services to be ready")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel,
		"log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.SQLLogLevel,
		"sql-log-level", "info",
		"controls the log level for sql methods")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat,
		"log-format", "text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry", false,
		"enables telemetry")
	rootCmd.PersistentFlags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint", "localhost:4317",
		"endpoint that receives open telemetry data")
	rootCmd.PersistentFlags().StringVar(&config.Operator,
		"operator", "",
		"identity used when submitting or claiming timing captures")

	// add commands here
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(raceCmd.NewRaceCmd())
	rootCmd.AddCommand(stageCmd.NewStageCmd())
	rootCmd.AddCommand(submitCmd.NewSubmitCmd())
	rootCmd.AddCommand(resultsCmd.NewResultsCmd())
	rootCmd.AddCommand(waveCmd.NewWaveCmd())
	rootCmd.AddCommand(csvCmd.NewCsvCmd())
	rootCmd.AddCommand(accountCmd.NewAccountCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".glh-timer"
		// (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".glh-timer")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --log-level to GLH_LOG_LEVEL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
