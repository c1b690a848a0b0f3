package main

import (
	"fmt"

	"nba_backtest/internal/predict"

	"github.com/spf13/cobra"
)

var predictFlags struct {
	input, output, model, season string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict every game of an existing dataset file",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := predictFlags.input
		if input == "" {
			input = cfg.DataPath(cfg.GameDataFilename)
		}
		output := predictFlags.output
		if output == "" {
			output = cfg.DataPath(cfg.OutputFilename)
		}
		model := predictFlags.model
		if model == "" {
			model = cfg.ModelPath()
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.newRunner(cmd.OutOrStdout()).Run(ctx, predict.RunRequest{
			InputPath:       input,
			OutputPath:      output,
			ModelPath:       model,
			Season:          predictFlags.season,
			CheckpointEvery: cfg.CheckpointEvery,
		})
		if err != nil {
			return err
		}

		if a.recorder != nil {
			if err := a.recorder.SaveRun(ctx, report.Run, report.Records); err != nil {
				return fmt.Errorf("failed to save prediction run %s: %w", report.Run.ID, err)
			}
		}
		return nil
	},
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictFlags.input, "input", "", "dataset CSV (default DATA_DIR/GAME_DATA_FILENAME)")
	f.StringVar(&predictFlags.output, "output", "", "predictions CSV (default DATA_DIR/OUTPUT_FILENAME)")
	f.StringVar(&predictFlags.model, "model", "", "serialized classifier (default MODEL_DIR/MODEL_FILE)")
	f.StringVar(&predictFlags.season, "season", "", "season label for logs and metrics")
}
