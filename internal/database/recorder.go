package database

import (
	"database/sql"

	"wordlewatch/internal/logger"
	"wordlewatch/internal/types"

	"github.com/google/uuid"
)

// FrameEncoder кодирует кадр в PNG
type FrameEncoder func(frame types.Raster) ([]byte, error)

// RunRecorder собирает события прогона в памяти, запись в БД делается после Run
type RunRecorder struct {
	encode FrameEncoder
	logger *logger.LoggerManager
	events []types.ChangeEvent
	image  []byte
}

// NewRunRecorder создает новый экземпляр RunRecorder; encode может быть nil
func NewRunRecorder(encode FrameEncoder, loggerManager *logger.LoggerManager) *RunRecorder {
	return &RunRecorder{encode: encode, logger: loggerManager}
}

func (r *RunRecorder) OnChange(ev types.ChangeEvent) error {
	r.events = append(r.events, ev)
	return nil
}

// OnSolved сохраняет снимок кадра решения, пока кадр еще открыт
func (r *RunRecorder) OnSolved(res types.SolveResult, frame *types.Frame) error {
	if r.encode == nil || frame == nil || frame.Image == nil {
		return nil
	}
	img, err := r.encode(frame.Image)
	if err != nil {
		return err
	}
	r.image = img
	return nil
}

// Record собирает запись прогона с новым UUID
func (r *RunRecorder) Record(info types.VideoInfo, res types.SolveResult, framesRead int) *RunRecord {
	run := &RunRecord{
		RunUUID:    uuid.NewString(),
		VideoPath:  info.Path,
		Width:      info.Width,
		Height:     info.Height,
		FPS:        info.FPS,
		FrameCount: info.FrameCount,
		FramesRead: framesRead,
		Solved:     res.Found,
		FrameImage: r.image,
		Changes:    ChangesFromEvents(r.events),
	}
	if res.Found {
		run.SolveTimestamp = sql.NullFloat64{Float64: res.Timestamp, Valid: true}
		run.SolveFrame = sql.NullInt64{Int64: int64(res.FrameIndex), Valid: true}
	}
	r.logger.Debug("Прогон %s: %d изменений", run.RunUUID, len(run.Changes))
	return run
}

// ChangesFromEvents переводит события в строки таблицы row_changes
func ChangesFromEvents(events []types.ChangeEvent) []RowChange {
	changes := make([]RowChange, 0, len(events))
	for _, ev := range events {
		c := RowChange{
			FrameIndex: ev.FrameIndex,
			Timestamp:  ev.Timestamp,
			Row:        ev.Row,
			NewFull:    ev.New.FullMatch,
			NewPartial: ev.New.PartialMatch,
		}
		if ev.Old != nil {
			c.OldFull = sql.NullInt64{Int64: int64(ev.Old.FullMatch), Valid: true}
			c.OldPartial = sql.NullInt64{Int64: int64(ev.Old.PartialMatch), Valid: true}
		}
		changes = append(changes, c)
	}
	return changes
}
