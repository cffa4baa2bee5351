package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"wordlewatch/internal/config"
	"wordlewatch/internal/grid"
	imageInternal "wordlewatch/internal/image"
	"wordlewatch/internal/screenshot"
	"wordlewatch/internal/types"

	"github.com/spf13/cobra"
)

func newCalibrateCmd() *cobra.Command {
	var (
		fromScreen bool
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "calibrate [image.png]",
		Short: "Показать найденные плитки и их цвета на одном кадре",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !fromScreen && len(args) == 0 {
				return fmt.Errorf("нужен путь к изображению или --screen")
			}
			c, err := config.InitConfig(configPath)
			if err != nil {
				return err
			}

			var frame *imageInternal.MatRaster
			if fromScreen {
				img, err := screenshot.CaptureScreenshot(c.Screenshot)
				if err != nil {
					return err
				}
				if frame, err = imageInternal.FromImage(img); err != nil {
					return err
				}
			} else if frame, err = imageInternal.LoadImage(args[0]); err != nil {
				return err
			}
			defer frame.Close()

			return calibrate(c, frame, outPath)
		},
	}
	cmd.Flags().BoolVar(&fromScreen, "screen", false, "взять кадр с экрана (область screenshot из конфига)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "calibrate.png", "куда сохранить кадр с разметкой")
	return cmd
}

func calibrate(c config.Config, frame *imageInternal.MatRaster, outPath string) error {
	locator := imageInternal.NewTileLocator(imageInternal.LocatorParamsFromConfig(c))
	classifier := imageInternal.NewTileClassifierFromConfig(c.Classifier)

	boxes, err := locator.Locate(frame)
	if err != nil {
		return err
	}

	cols := c.Grid.ColumnsExpected
	labels := make([]types.TileLabel, len(boxes))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tROW\tCOL\tX\tY\tW\tH\tLABEL\tMEAN\tHSV")
	for i, box := range boxes {
		label, err := classifier.Label(frame, box)
		if err != nil {
			return err
		}
		labels[i] = label
		mean, err := imageInternal.MeanColor(frame, box)
		if err != nil {
			return err
		}
		h, s, v := imageInternal.OpenCVHSV(mean)
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%.0f,%.0f,%.0f\n",
			i, i/cols+1, i%cols+1, box.X, box.Y, box.Width, box.Height, label, mean.Hex(), h, s, v)
	}
	w.Flush()

	need := c.Grid.RowsExpected * cols
	fmt.Printf("\nНайдено плиток: %d из %d\n", len(boxes), need)
	if len(boxes) >= need {
		snap, err := grid.BuildSnapshot(grid.Partition(boxes, cols, c.Grid.RowsExpected), func(b types.TileBox) (types.TileLabel, error) {
			return classifier.Label(frame, b)
		})
		if err != nil {
			return err
		}
		for row := 0; row < len(snap); row++ {
			state := snap[row]
			mark := ""
			if grid.IsSolved(state, cols) {
				mark = " ✅"
			}
			fmt.Printf("Row %d: %s%s\n", row+1, state, mark)
		}
	} else {
		fmt.Println("⚠️ Сетка не видна полностью, проверьте grid.min_tile_dim / grid.max_tile_dim")
	}

	overlay, err := imageInternal.DrawOverlay(frame, boxes, labels, cols)
	if err != nil {
		return err
	}
	if err := imageInternal.SaveImage(overlay, outPath); err != nil {
		return err
	}
	fmt.Printf("🖼️ Разметка сохранена: %s\n", outPath)
	return nil
}
