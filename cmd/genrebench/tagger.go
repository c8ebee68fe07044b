package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/genrebench/classify"
	"github.com/RyanBlaney/genrebench/eval"
	"github.com/RyanBlaney/genrebench/tagger"
)

func newTaggerCommand() *cobra.Command {
	config := tagger.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "tagger [dataset]",
		Short: "Evaluates the pretrained audio tagger",
		Long: `Requests the top tags for every clip of the dataset from the external
tagger and takes the first tag belonging to any genre group as the
prediction, tallying exact and similar-genre hits per true genre.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := tagger.NewClient(config)
			if err := client.ValidateConfig(); err != nil {
				return err
			}

			classifier := classify.NewTagClassifier(client, nil)

			runner := eval.NewRunner(classifier, nil, cmd.OutOrStdout(), &eval.RunnerConfig{
				Extension: viper.GetString("extension"),
			})

			stats, err := runner.Run(cmd.Context(), datasetRoot(args))
			if err != nil {
				return err
			}

			runner.Report(stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&config.Command, "command", config.Command, "tagger executable")
	cmd.Flags().StringVar(&config.Model, "tagger-model", config.Model, "tagger model identifier")
	cmd.Flags().IntVar(&config.TopN, "top-n", config.TopN, "number of tags to request per clip")

	return cmd
}
