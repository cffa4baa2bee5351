package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"wordlewatch/internal/logger"
	"wordlewatch/internal/types"
)

const (
	testRows    = 6
	testColumns = 5
)

// fakeRaster помнит, к какому кадру относится, и считает закрытия
type fakeRaster struct {
	index  int
	closes int
}

func (r *fakeRaster) Close() error {
	r.closes++
	return nil
}

type fakeSource struct {
	fps     float64
	total   int
	next    int
	calls   int
	closes  int
	failAt  int // Next вернет ошибку декодирования на этом кадре
	rasters []*fakeRaster
}

func (s *fakeSource) Info() types.VideoInfo {
	return types.VideoInfo{Path: "fake.mp4", FPS: s.fps, FrameCount: s.total}
}

func (s *fakeSource) Next() (*types.Frame, error) {
	s.calls++
	if s.next >= s.total {
		return nil, io.EOF
	}
	s.next++
	if s.failAt != 0 && s.next == s.failAt {
		return nil, errors.New("decode failed")
	}
	r := &fakeRaster{index: s.next}
	s.rasters = append(s.rasters, r)
	return &types.Frame{Index: s.next, Timestamp: float64(s.next) / s.fps, Image: r}, nil
}

func (s *fakeSource) Close() error {
	s.closes++
	return nil
}

// fakeLocator отдает сетку плиток; для кадров из short отдает на одну меньше
type fakeLocator struct {
	short map[int]bool
	calls []int
}

func (l *fakeLocator) Locate(frame types.Raster) ([]types.TileBox, error) {
	idx := frame.(*fakeRaster).index
	l.calls = append(l.calls, idx)
	n := testRows * testColumns
	if l.short[idx] {
		n--
	}
	boxes := make([]types.TileBox, 0, n)
	for i := 0; i < n; i++ {
		boxes = append(boxes, types.TileBox{X: (i % testColumns) * 70, Y: (i / testColumns) * 70, Width: 60, Height: 60})
	}
	return boxes, nil
}

// fakeClassifier: states[кадр][строка] задает состояние строки начиная с этого кадра
type fakeClassifier struct {
	states map[int]map[int]types.RowState
	failAt map[int]bool
}

func (c *fakeClassifier) stateAt(frame, row int) types.RowState {
	var cur types.RowState
	for f := 1; f <= frame; f++ {
		if s, ok := c.states[f][row]; ok {
			cur = s
		}
	}
	return cur
}

func (c *fakeClassifier) Label(frame types.Raster, box types.TileBox) (types.TileLabel, error) {
	idx := frame.(*fakeRaster).index
	if c.failAt[idx] {
		return types.Unmatched, errors.New("bad crop")
	}
	row, col := box.Y/70, box.X/70
	s := c.stateAt(idx, row)
	switch {
	case col < s.FullMatch:
		return types.FullMatch, nil
	case col < s.FullMatch+s.PartialMatch:
		return types.PartialMatch, nil
	}
	return types.Unmatched, nil
}

type recordingSink struct {
	changes []types.ChangeEvent
	solved  []types.SolveResult
}

func (s *recordingSink) OnChange(ev types.ChangeEvent) error {
	s.changes = append(s.changes, ev)
	return nil
}

func (s *recordingSink) OnSolved(res types.SolveResult, frame *types.Frame) error {
	s.solved = append(s.solved, res)
	return nil
}

func newTestDriver(delay float64, cl *fakeClassifier, loc *fakeLocator, out *bytes.Buffer, sinks ...EventSink) *Driver {
	opts := Options{StartDelaySeconds: delay, RowsExpected: testRows, ColumnsExpected: testColumns}
	return NewDriver(opts, loc, cl, logger.NewWriterLogger(out), sinks...)
}

func TestRunSolvesAtFirstGreenRow(t *testing.T) {
	src := &fakeSource{fps: 2, total: 10}
	cl := &fakeClassifier{states: map[int]map[int]types.RowState{
		9: {3: {FullMatch: 5}},
	}}
	sink := &recordingSink{}
	var out bytes.Buffer
	d := newTestDriver(0, cl, &fakeLocator{}, &out, sink)

	res, err := d.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Solve.Found || res.Solve.FrameIndex != 9 || math.Abs(res.Solve.Timestamp-4.5) > 1e-9 {
		t.Fatalf("solve = %+v, want frame 9 at 4.50", res.Solve)
	}
	if d.State() != Solved {
		t.Errorf("state = %v", d.State())
	}
	// первый кадр записывает все строки, дальше одно изменение на кадре 9
	if len(res.Events) != testRows+1 {
		t.Fatalf("events = %d, want %d", len(res.Events), testRows+1)
	}
	last := res.Events[len(res.Events)-1]
	if last.FrameIndex != 9 || last.Row != 3 || last.Old == nil || *last.Old != (types.RowState{}) {
		t.Errorf("last event = %+v", last)
	}
	if src.calls != 9 {
		t.Errorf("Next called %d times, want 9", src.calls)
	}
	if src.closes != 1 {
		t.Errorf("source closed %d times", src.closes)
	}
	for _, r := range src.rasters {
		if r.closes != 1 {
			t.Errorf("raster %d closed %d times", r.index, r.closes)
		}
	}
	if len(sink.changes) != len(res.Events) || len(sink.solved) != 1 {
		t.Errorf("sink got %d changes, %d solved", len(sink.changes), len(sink.solved))
	}
	if !strings.Contains(out.String(), "Time 4.50s - Row 4: 5 green, 0 yellow") {
		t.Errorf("log misses change line:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Wordle solved at 4.50 seconds!") {
		t.Errorf("log misses result line:\n%s", out.String())
	}
	if got := res.LastRowStates[3]; got.FullMatch != 5 {
		t.Errorf("last row state = %+v", got)
	}
}

func TestRunNeverSolved(t *testing.T) {
	src := &fakeSource{fps: 30, total: 12}
	cl := &fakeClassifier{states: map[int]map[int]types.RowState{
		4: {0: {FullMatch: 2, PartialMatch: 1}},
		8: {1: {FullMatch: 4}},
	}}
	var out bytes.Buffer
	d := newTestDriver(0, cl, &fakeLocator{}, &out)

	res, err := d.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Solve.Found {
		t.Fatalf("unexpected solve %+v", res.Solve)
	}
	if res.FramesRead != 12 || src.closes != 1 {
		t.Errorf("read %d frames, closes %d", res.FramesRead, src.closes)
	}
	if len(res.Events) != testRows+2 {
		t.Errorf("events = %d, want %d", len(res.Events), testRows+2)
	}
	if !strings.Contains(out.String(), "No fully green row detected") {
		t.Errorf("log misses no-solve line:\n%s", out.String())
	}
}

func TestRunSkipsIncompleteGrid(t *testing.T) {
	src := &fakeSource{fps: 1, total: 6}
	cl := &fakeClassifier{states: map[int]map[int]types.RowState{
		3: {0: {PartialMatch: 2}},
	}}
	loc := &fakeLocator{short: map[int]bool{3: true}}
	d := newTestDriver(0, cl, loc, &bytes.Buffer{})

	res, err := d.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.FramesNotVisible != 1 {
		t.Errorf("not visible = %d", res.FramesNotVisible)
	}
	for _, ev := range res.Events {
		if ev.FrameIndex == 3 {
			t.Fatalf("event from 29-box frame: %+v", ev)
		}
	}
	last := res.Events[len(res.Events)-1]
	if last.FrameIndex != 4 || last.Row != 0 || last.New.PartialMatch != 2 {
		t.Errorf("change should surface on frame 4, got %+v", last)
	}
}

func TestRunSkipsClassificationFailure(t *testing.T) {
	src := &fakeSource{fps: 1, total: 4}
	cl := &fakeClassifier{
		states: map[int]map[int]types.RowState{2: {5: {FullMatch: 5}}},
		failAt: map[int]bool{2: true},
	}
	d := newTestDriver(0, cl, &fakeLocator{}, &bytes.Buffer{})

	res, err := d.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Solve.Found || res.Solve.FrameIndex != 3 {
		t.Fatalf("solve = %+v, want frame 3", res.Solve)
	}
	if res.FramesNotVisible != 1 {
		t.Errorf("not visible = %d", res.FramesNotVisible)
	}
}

func TestRunHonorsStartDelay(t *testing.T) {
	src := &fakeSource{fps: 2, total: 6}
	cl := &fakeClassifier{states: map[int]map[int]types.RowState{
		1: {0: {FullMatch: 5}},
	}}
	loc := &fakeLocator{}
	d := newTestDriver(1.5, cl, loc, &bytes.Buffer{})

	res, err := d.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// int(1.5*2) = 3: кадры 1 и 2 пропущены
	if res.FramesSkipped != 2 {
		t.Errorf("skipped = %d, want 2", res.FramesSkipped)
	}
	if len(loc.calls) == 0 || loc.calls[0] != 3 {
		t.Errorf("locator calls = %v", loc.calls)
	}
	if !res.Solve.Found || res.Solve.FrameIndex != 3 || res.Solve.Timestamp != 1.5 {
		t.Errorf("solve = %+v", res.Solve)
	}
	for _, r := range src.rasters {
		if r.closes != 1 {
			t.Errorf("raster %d closed %d times", r.index, r.closes)
		}
	}
}

func TestRunDecodeFailureEndsStream(t *testing.T) {
	src := &fakeSource{fps: 1, total: 8, failAt: 4}
	cl := &fakeClassifier{states: map[int]map[int]types.RowState{
		6: {0: {FullMatch: 5}},
	}}
	d := newTestDriver(0, cl, &fakeLocator{}, &bytes.Buffer{})

	res, err := d.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Solve.Found || res.FramesRead != 3 {
		t.Errorf("solve = %+v, read = %d", res.Solve, res.FramesRead)
	}
	if src.closes != 1 {
		t.Errorf("source closed %d times", src.closes)
	}
}

func TestRunCanceled(t *testing.T) {
	src := &fakeSource{fps: 1, total: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := newTestDriver(0, &fakeClassifier{}, &fakeLocator{}, &bytes.Buffer{})

	res, err := d.Run(ctx, src)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.FramesRead != 0 || src.closes != 1 {
		t.Errorf("read %d, closes %d", res.FramesRead, src.closes)
	}
}
