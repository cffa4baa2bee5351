package pipeline

import (
	"context"
	"io"

	"wordlewatch/internal/config"
	"wordlewatch/internal/grid"
	"wordlewatch/internal/logger"
	"wordlewatch/internal/types"
)

// Source последовательный источник кадров
type Source interface {
	Info() types.VideoInfo
	// Next возвращает io.EOF, когда кадры закончились
	Next() (*types.Frame, error)
	Close() error
}

// Locator находит плитки на кадре в порядке чтения
type Locator interface {
	Locate(frame types.Raster) ([]types.TileBox, error)
}

// Classifier определяет цвет одной плитки кадра
type Classifier interface {
	Label(frame types.Raster, box types.TileBox) (types.TileLabel, error)
}

// EventSink получает события прогона: БД, плата-индикатор и т.п.
// Ошибки получателей логируются и не прерывают анализ.
type EventSink interface {
	OnChange(ev types.ChangeEvent) error
	// frame еще открыт на момент вызова
	OnSolved(res types.SolveResult, frame *types.Frame) error
}

// State состояние драйвера
type State int

const (
	Scanning State = iota
	Solved
)

func (s State) String() string {
	if s == Solved {
		return "solved"
	}
	return "scanning"
}

// Options параметры прогона
type Options struct {
	StartDelaySeconds float64
	RowsExpected      int
	ColumnsExpected   int
}

// OptionsFromConfig собирает параметры из конфигурации
func OptionsFromConfig(c config.Config) Options {
	return Options{
		StartDelaySeconds: c.StartDelaySeconds,
		RowsExpected:      c.Grid.RowsExpected,
		ColumnsExpected:   c.Grid.ColumnsExpected,
	}
}

// Result итог одного прогона
type Result struct {
	Info             types.VideoInfo
	Solve            types.SolveResult
	Events           []types.ChangeEvent
	LastRowStates    types.Snapshot
	FramesRead       int
	FramesSkipped    int // до start_delay_seconds
	FramesNotVisible int
}

// Driver прогоняет кадры через поиск плиток, классификацию и трекер
// и останавливается на первой полностью зеленой строке
type Driver struct {
	opts       Options
	locator    Locator
	classifier Classifier
	logger     *logger.LoggerManager
	sinks      []EventSink
	state      State
}

// NewDriver создает новый экземпляр Driver
func NewDriver(opts Options, locator Locator, classifier Classifier, loggerManager *logger.LoggerManager, sinks ...EventSink) *Driver {
	return &Driver{
		opts:       opts,
		locator:    locator,
		classifier: classifier,
		logger:     loggerManager,
		sinks:      sinks,
	}
}

// State текущее состояние
func (d *Driver) State() State {
	return d.state
}

// Run читает кадры до решения или конца видео. Источник закрывается в любом случае.
// Ошибку возвращает только отмена ctx; "решение не найдено" ошибкой не является.
func (d *Driver) Run(ctx context.Context, src Source) (*Result, error) {
	defer func() {
		if err := src.Close(); err != nil {
			d.logger.LogError(err, "Ошибка закрытия видео")
		}
	}()

	info := src.Info()
	skipFrames := int(d.opts.StartDelaySeconds * info.FPS)
	tracker := grid.NewTracker(d.opts.RowsExpected, d.opts.ColumnsExpected)
	res := &Result{Info: info}
	d.state = Scanning

	for d.state == Scanning {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("⏹️ Анализ прерван на кадре %d", res.FramesRead)
			res.LastRowStates = tracker.Snapshot()
			return res, err
		}

		frame, err := src.Next()
		if err != nil {
			if err != io.EOF {
				// битый кадр считается концом потока
				d.logger.Warn("⚠️ Ошибка чтения кадра %d, считаем видео законченным: %v", res.FramesRead+1, err)
			}
			break
		}
		res.FramesRead++

		if frame.Index < skipFrames {
			res.FramesSkipped++
			frame.Close()
			continue
		}

		d.processFrame(frame, tracker, res)
		frame.Close()
	}

	res.LastRowStates = tracker.Snapshot()
	if !res.Solve.Found {
		d.logger.Info("No fully green row detected (кадров прочитано: %d)", res.FramesRead)
	}
	return res, nil
}

// processFrame: кадр без полной сетки или с ошибкой классификации ничего не меняет
func (d *Driver) processFrame(frame *types.Frame, tracker *grid.Tracker, res *Result) {
	boxes, err := d.locator.Locate(frame.Image)
	if err != nil {
		res.FramesNotVisible++
		d.logger.Debug("Кадр %d: ошибка поиска плиток: %v", frame.Index, err)
		return
	}

	events, err := tracker.Observe(frame, boxes, func(box types.TileBox) (types.TileLabel, error) {
		return d.classifier.Label(frame.Image, box)
	})
	if err != nil {
		res.FramesNotVisible++
		d.logger.Debug("Кадр %d пропущен: %v", frame.Index, err)
		return
	}

	for _, ev := range events {
		res.Events = append(res.Events, ev)
		d.logger.Info("%s", ev)
		d.notifyChange(ev)

		if grid.IsSolved(ev.New, tracker.Columns()) {
			res.Solve = types.SolveResult{
				Found:      true,
				Timestamp:  frame.Timestamp,
				FrameIndex: frame.Index,
			}
			d.state = Solved
			d.logger.Info("✅ Wordle solved at %.2f seconds!", frame.Timestamp)
			d.notifySolved(res.Solve, frame)
			return
		}
	}
}

func (d *Driver) notifyChange(ev types.ChangeEvent) {
	for _, s := range d.sinks {
		if err := s.OnChange(ev); err != nil {
			d.logger.LogError(err, "Ошибка отправки события")
		}
	}
}

func (d *Driver) notifySolved(res types.SolveResult, frame *types.Frame) {
	for _, s := range d.sinks {
		if err := s.OnSolved(res, frame); err != nil {
			d.logger.LogError(err, "Ошибка отправки результата")
		}
	}
}
