package main

import (
	"context"
	"errors"
	"fmt"

	"wordlewatch/internal/arduino"
	"wordlewatch/internal/config"
	"wordlewatch/internal/database"
	imageInternal "wordlewatch/internal/image"
	"wordlewatch/internal/interrupt"
	"wordlewatch/internal/logger"
	"wordlewatch/internal/metrics"
	"wordlewatch/internal/pipeline"
	"wordlewatch/internal/video"

	"github.com/spf13/cobra"
)

type analyzeFlags struct {
	startDelay  float64
	theme       string
	threshold   float64
	metricsFile string
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Прогнать видео и найти момент решения",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.InitConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("start-delay") {
				c.StartDelaySeconds = f.startDelay
			}
			if cmd.Flags().Changed("theme") {
				c.Classifier.Theme = f.theme
			}
			if cmd.Flags().Changed("threshold") {
				c.Classifier.MatchThreshold = f.threshold
			}
			if err := c.Validate(); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), c, args[0], f)
		},
	}
	cmd.Flags().Float64Var(&f.startDelay, "start-delay", 1.0, "пропустить первые N секунд видео")
	cmd.Flags().StringVar(&f.theme, "theme", "dark", "тема игры: dark или light")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0.70, "доля пикселей плитки в диапазоне цвета")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "записать метрики Prometheus в файл")
	return cmd
}

func runAnalyze(ctx context.Context, c config.Config, path string, f analyzeFlags) error {
	loggerManager, err := logger.NewLoggerManager(c.LogFilePath)
	if err != nil {
		return fmt.Errorf("error initializing logger: %v", err)
	}
	defer loggerManager.Close()
	loggerManager.SetDebug(debug)

	loggerManager.Info("🚀 Запуск анализа: %s", path)

	src, err := video.Open(path)
	if err != nil {
		loggerManager.LogError(err, "Error opening video")
		return err
	}
	info := src.Info()
	loggerManager.Info("🎞️ Видео: %dx%d, %.2f fps, %d кадров, %.2f с", info.Width, info.Height, info.FPS, info.FrameCount, info.Duration())

	collector := metrics.NewCollector()
	sinks := []pipeline.EventSink{collector}

	var recorder *database.RunRecorder
	if c.SaveToDB == 1 {
		recorder = database.NewRunRecorder(imageInternal.RasterToBytes, loggerManager)
		sinks = append(sinks, recorder)
	}

	if c.Serial.Port != "" {
		port, err := arduino.InitializePort(c.Serial.Port, c.Serial.BaudRate)
		if err != nil {
			loggerManager.LogError(err, "Error opening arduino port")
		} else {
			defer port.Close()
			notifier := arduino.NewNotifier(port, loggerManager)
			if err := notifier.Reset(); err != nil {
				loggerManager.LogError(err, "Индикатор не ответил на reset")
			}
			sinks = append(sinks, notifier)
		}
	}

	im := interrupt.NewInterruptManager(loggerManager)
	runCtx := im.StartMonitoring(ctx)
	defer im.Stop()

	driver := pipeline.NewDriver(
		pipeline.OptionsFromConfig(c),
		imageInternal.NewTileLocator(imageInternal.LocatorParamsFromConfig(c)),
		imageInternal.NewTileClassifierFromConfig(c.Classifier),
		loggerManager,
		sinks...,
	)

	res, runErr := driver.Run(runCtx, src)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	collector.ObserveResult(res)
	if f.metricsFile != "" {
		if err := collector.WriteTextfile(f.metricsFile); err != nil {
			loggerManager.LogError(err, "Ошибка записи метрик")
		}
	}

	if recorder != nil {
		saveRun(c, loggerManager, recorder, res)
	}

	return runErr
}

// saveRun: ошибки БД не влияют на результат анализа
func saveRun(c config.Config, loggerManager *logger.LoggerManager, recorder *database.RunRecorder, res *pipeline.Result) {
	db, err := database.Open(c.Database)
	if err != nil {
		loggerManager.LogError(err, "Error connecting to database")
		return
	}
	defer db.Close()
	loggerManager.Info("✅ Успешное подключение к базе данных")

	manager := database.NewDatabaseManager(db, loggerManager)
	if _, err := manager.SaveRun(recorder.Record(res.Info, res.Solve, res.FramesRead), &c); err != nil {
		loggerManager.LogError(err, "Ошибка сохранения прогона")
	}
	manager.WaitForAsyncOperations()
}
