package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nrsim/internal/dataset"
	"nrsim/internal/logging"
)

var (
	exportInput     string
	exportOutPrefix string
	exportWidth     int
	exportStride    int
	exportHorizon   int
	exportTrainFrac float64
	exportSeed      int64
	exportNoScale   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Prepare a generated dataset for training",
	Long:  "export scales a telemetry CSV, cuts labeled sliding windows and writes shuffled train/test window files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.Load(exportInput)
		if err != nil {
			return err
		}
		if !exportNoScale {
			ds.Scale()
		}
		windows, err := ds.Windows(exportWidth, exportStride, exportHorizon)
		if err != nil {
			return err
		}
		train, test, err := dataset.Split(windows, exportTrainFrac, exportSeed)
		if err != nil {
			return err
		}

		trainPath := exportOutPrefix + "_train.csv"
		testPath := exportOutPrefix + "_test.csv"
		if err := dataset.WriteWindowsFile(trainPath, train); err != nil {
			return fmt.Errorf("write train set: %w", err)
		}
		if err := dataset.WriteWindowsFile(testPath, test); err != nil {
			return fmt.Errorf("write test set: %w", err)
		}
		logging.New().Info("export complete",
			"train", trainPath, "train_windows", len(train),
			"test", testPath, "test_windows", len(test))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "Path to a generated telemetry CSV")
	exportCmd.Flags().StringVar(&exportOutPrefix, "out", "windows", "Output file prefix")
	exportCmd.Flags().IntVar(&exportWidth, "width", 60, "Window width in samples")
	exportCmd.Flags().IntVar(&exportStride, "stride", 1, "Window stride in samples")
	exportCmd.Flags().IntVar(&exportHorizon, "horizon", 0, "Forecast horizon in samples (0 for classification windows)")
	exportCmd.Flags().Float64Var(&exportTrainFrac, "train-frac", 0.8, "Fraction of windows in the training set")
	exportCmd.Flags().Int64Var(&exportSeed, "seed", 1, "Shuffle seed")
	exportCmd.Flags().BoolVar(&exportNoScale, "no-scale", false, "Skip min-max scaling of feature channels")
	exportCmd.MarkFlagRequired("input")
}
