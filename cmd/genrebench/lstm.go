package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/genrebench/audio"
	"github.com/RyanBlaney/genrebench/classify"
	"github.com/RyanBlaney/genrebench/eval"
	"github.com/RyanBlaney/genrebench/model"
)

func newLSTMCommand() *cobra.Command {
	var topologyPath string
	var weightsPath string

	cmd := &cobra.Command{
		Use:   "lstm [dataset]",
		Short: "Evaluates the pretrained LSTM genre model",
		Long: `Decodes every clip of the dataset, extracts its feature tensor and
runs the pretrained sequence model over it, tallying exact and
similar-genre hits per true genre.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoder := audio.NewDecoder(nil)
			if err := decoder.ValidateConfig(); err != nil {
				return err
			}

			network, err := model.Load(topologyPath, weightsPath)
			if err != nil {
				return err
			}

			classifier, err := classify.NewLSTMClassifier(network, decoder, nil)
			if err != nil {
				return err
			}

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

	cmd.Flags().StringVar(&topologyPath, "model", "./weights/model.json", "model topology file")
	cmd.Flags().StringVar(&weightsPath, "weights", "./weights/model_weights.bin", "model weights file")

	return cmd
}
