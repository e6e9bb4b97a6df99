package main

import (
	"os"

	"github.com/matst80/slask-parts/pkg/config"
	"github.com/matst80/slask-parts/pkg/logx"
	"github.com/spf13/cobra"
)

var (
	envFile string
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Manage the component catalog snapshot",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logx.Init(logx.LoggerOpts{Environment: logx.Development, Level: "info", Output: cmd.ErrOrStderr()})
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Env file to read before the environment")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Snapshot directory (default: DATA_DIR)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
