package database

import (
	"errors"
	"strings"
	"testing"

	"wordlewatch/internal/config"
	"wordlewatch/internal/logger"
	"wordlewatch/internal/types"

	"github.com/google/uuid"
)

func TestDSN(t *testing.T) {
	cfg := config.Database{Host: "10.0.0.5", Port: "3307", User: "wl", Password: "secret", Name: "wordlewatch"}

	got := DSN(cfg, true)
	if !strings.HasPrefix(got, "wl:secret@tcp(10.0.0.5:3307)/wordlewatch") {
		t.Errorf("DSN = %q", got)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Errorf("DSN without parseTime: %q", got)
	}

	noName := DSN(cfg, false)
	if !strings.HasPrefix(noName, "wl:secret@tcp(10.0.0.5:3307)/") || strings.Contains(noName, "wordlewatch") {
		t.Errorf("DSN without db = %q", noName)
	}
}

func TestChangesFromEvents(t *testing.T) {
	old := types.RowState{FullMatch: 1, PartialMatch: 2}
	events := []types.ChangeEvent{
		{Timestamp: 0.5, FrameIndex: 1, Row: 0, New: types.RowState{}},
		{Timestamp: 4.5, FrameIndex: 9, Row: 3, Old: &old, New: types.RowState{FullMatch: 5}},
	}

	changes := ChangesFromEvents(events)
	if len(changes) != 2 {
		t.Fatalf("got %d changes", len(changes))
	}
	if changes[0].OldFull.Valid || changes[0].OldPartial.Valid {
		t.Errorf("first record of a row must have NULL old state: %+v", changes[0])
	}
	c := changes[1]
	if c.FrameIndex != 9 || c.Row != 3 || c.NewFull != 5 || c.OldFull.Int64 != 1 || c.OldPartial.Int64 != 2 {
		t.Errorf("change = %+v", c)
	}
}

func TestRunRecorder(t *testing.T) {
	encoded := 0
	rec := NewRunRecorder(func(types.Raster) ([]byte, error) {
		encoded++
		return []byte("png"), nil
	}, logger.NewWriterLogger(nil))

	rec.OnChange(types.ChangeEvent{FrameIndex: 1, Row: 0})
	rec.OnChange(types.ChangeEvent{FrameIndex: 9, Row: 3, New: types.RowState{FullMatch: 5}})
	res := types.SolveResult{Found: true, Timestamp: 4.5, FrameIndex: 9}
	if err := rec.OnSolved(res, &types.Frame{Index: 9, Image: stubRaster{}}); err != nil {
		t.Fatalf("OnSolved: %v", err)
	}

	info := types.VideoInfo{Path: "clip.mp4", Width: 1280, Height: 720, FPS: 2, FrameCount: 10}
	run := rec.Record(info, res, 9)

	if _, err := uuid.Parse(run.RunUUID); err != nil {
		t.Errorf("bad uuid %q: %v", run.RunUUID, err)
	}
	if !run.Solved || run.SolveTimestamp.Float64 != 4.5 || run.SolveFrame.Int64 != 9 {
		t.Errorf("solve fields = %+v %+v", run.SolveTimestamp, run.SolveFrame)
	}
	if string(run.FrameImage) != "png" || encoded != 1 {
		t.Errorf("frame image = %q, encoded %d", run.FrameImage, encoded)
	}
	if len(run.Changes) != 2 || run.VideoPath != "clip.mp4" || run.FramesRead != 9 {
		t.Errorf("run = %+v", run)
	}
}

func TestRunRecorderNotSolved(t *testing.T) {
	rec := NewRunRecorder(nil, nil)
	run := rec.Record(types.VideoInfo{Path: "x.mp4"}, types.SolveResult{}, 3)
	if run.Solved || run.SolveTimestamp.Valid || run.SolveFrame.Valid || run.FrameImage != nil {
		t.Errorf("unsolved run = %+v", run)
	}
}

func TestRunRecorderEncodeError(t *testing.T) {
	boom := errors.New("encode failed")
	rec := NewRunRecorder(func(types.Raster) ([]byte, error) { return nil, boom }, nil)
	err := rec.OnSolved(types.SolveResult{Found: true}, &types.Frame{Image: stubRaster{}})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

type stubRaster struct{}

func (stubRaster) Close() error { return nil }
