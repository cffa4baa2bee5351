package grid

import (
	"sort"

	"wordlewatch/internal/types"

	"github.com/pkg/errors"
)

// Labeler определяет цвет одной плитки текущего кадра
type Labeler func(box types.TileBox) (types.TileLabel, error)

// Tracker хранит последнее известное состояние каждой строки за весь прогон.
// Строки пересчитываются с нуля на каждом кадре, между кадрами живет только эта карта.
type Tracker struct {
	rows    int
	columns int
	last    map[int]types.RowState
}

// NewTracker создает трекер для сетки rows x columns
func NewTracker(rows, columns int) *Tracker {
	return &Tracker{
		rows:    rows,
		columns: columns,
		last:    make(map[int]types.RowState),
	}
}

// Columns количество плиток в строке
func (t *Tracker) Columns() int {
	return t.columns
}

// Last возвращает последнее записанное состояние строки
func (t *Tracker) Last(row int) (types.RowState, bool) {
	s, ok := t.last[row]
	return s, ok
}

// Snapshot возвращает копию карты последних состояний
func (t *Tracker) Snapshot() types.Snapshot {
	snap := make(types.Snapshot, len(t.last))
	for row, s := range t.last {
		snap[row] = s
	}
	return snap
}

// Reset очищает состояние
func (t *Tracker) Reset() {
	t.last = make(map[int]types.RowState)
}

// Observe обрабатывает упорядоченные плитки одного кадра. Если плиток меньше
// rows*columns или какую-то плитку не удалось классифицировать, состояние не меняется.
func (t *Tracker) Observe(frame *types.Frame, boxes []types.TileBox, label Labeler) ([]types.ChangeEvent, error) {
	if len(boxes) < t.rows*t.columns {
		return nil, errors.Wrapf(types.ErrGridNotVisible, "найдено %d плиток из %d", len(boxes), t.rows*t.columns)
	}

	snap, err := BuildSnapshot(Partition(boxes, t.columns, t.rows), label)
	if err != nil {
		return nil, err
	}

	return t.Apply(frame.Timestamp, frame.Index, snap), nil
}

// Apply сравнивает снимок с последними состояниями и заменяет отличающиеся записи.
// События возвращаются в порядке строк.
func (t *Tracker) Apply(timestamp float64, frameIndex int, snap types.Snapshot) []types.ChangeEvent {
	rows := make([]int, 0, len(snap))
	for row := range snap {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	var events []types.ChangeEvent
	for _, row := range rows {
		state := snap[row]
		prev, known := t.last[row]
		if known && prev == state {
			continue
		}

		ev := types.ChangeEvent{
			Timestamp:  timestamp,
			FrameIndex: frameIndex,
			Row:        row,
			New:        state,
		}
		if known {
			old := prev
			ev.Old = &old
		}
		t.last[row] = state
		events = append(events, ev)
	}
	return events
}

// Partition режет плитки в порядке чтения на строки по columns штук.
// Неполная последняя строка отбрасывается, строки сверх maxRows тоже
// (ниже сетки на экране находится клавиатура с похожими по размеру клавишами).
func Partition(boxes []types.TileBox, columns, maxRows int) [][]types.TileBox {
	if columns <= 0 {
		return nil
	}
	var rows [][]types.TileBox
	for i := 0; i+columns <= len(boxes); i += columns {
		if maxRows > 0 && len(rows) == maxRows {
			break
		}
		rows = append(rows, boxes[i:i+columns])
	}
	return rows
}

// BuildSnapshot классифицирует все плитки и считает зеленые и желтые по строкам.
// Снимок строится целиком до того, как трекер что-либо изменит.
func BuildSnapshot(rows [][]types.TileBox, label Labeler) (types.Snapshot, error) {
	snap := make(types.Snapshot, len(rows))
	for i, row := range rows {
		var state types.RowState
		for _, box := range row {
			l, err := label(box)
			if err != nil {
				return nil, errors.Wrapf(types.ErrClassification, "строка %d, плитка %+v: %v", i+1, box, err)
			}
			switch l {
			case types.FullMatch:
				state.FullMatch++
			case types.PartialMatch:
				state.PartialMatch++
			}
		}
		snap[i] = state
	}
	return snap, nil
}
