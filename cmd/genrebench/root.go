package main

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/genrebench/logging"
)

func newRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "genrebench",
		Short:         "Evaluates pretrained genre classifiers against a labeled dataset",
		Long: `genrebench runs a pretrained genre classifier over a dataset whose
subdirectories name the true genres, and reports exact and
similar-genre accuracy per genre and overall.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			return applyLogLevel()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.genrebench.yaml)")

	rootCmd.PersistentFlags().String("log-level", "error", "log level (debug, info, warn, error, fatal)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("extension", ".wav", "clip filename suffix, matched case-sensitively")
	viper.BindPFlag("extension", rootCmd.PersistentFlags().Lookup("extension"))

	viper.SetDefault("dataset", "./genres_original")

	rootCmd.AddCommand(newLSTMCommand())
	rootCmd.AddCommand(newTaggerCommand())
	rootCmd.AddCommand(newGroupsCommand())

	return rootCmd
}

// initConfig reads in the config file when one is present.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return err
		}

		// Search config in home directory with name ".genrebench" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".genrebench")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
	return nil
}

func applyLogLevel() error {
	level, err := logging.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return err
	}
	logging.SetLevel(level)
	return nil
}

// datasetRoot resolves the dataset path: a positional argument wins
// over the configured default.
func datasetRoot(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return viper.GetString("dataset")
}
