// Command farfield designs patch elements, synthesizes the far-field pattern of a phased array
// and runs the element workers of a distributed run.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wiless/farfield/config"
)

var (
	cfgFile string
	cfg     config.AppConfig
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "farfield",
		Short:         "phased array far-field pattern synthesis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := v.BindPFlag("log_level", cmd.Flags().Lookup("log-level")); err != nil {
				return err
			}
			var err error
			if cfg, err = config.Load(v, cfgFile); err != nil {
				return err
			}
			lvl, err := cfg.Level()
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./farfield.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "logrus level")
	rootCmd.AddCommand(
		newDesignCmd(),
		newRunCmd(),
		newPrepareCmd(),
		newElementCmd(),
		newAggregateCmd(),
		newWorkerCmd(),
	)
	return rootCmd
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
