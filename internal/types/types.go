package types

import "fmt"

// Raster декодированное изображение кадра. Конкретный тип зависит от источника
// (для видео это обертка над gocv.Mat), поэтому здесь нужен только Close.
type Raster interface {
	Close() error
}

// Frame кадр видео с порядковым номером (с 1) и временем в секундах
type Frame struct {
	Index     int
	Timestamp float64
	Image     Raster
}

// Close освобождает изображение кадра
func (f *Frame) Close() error {
	if f == nil || f.Image == nil {
		return nil
	}
	return f.Image.Close()
}

// VideoInfo параметры открытого видео
type VideoInfo struct {
	Path       string
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// Duration длительность видео в секундах
func (v VideoInfo) Duration() float64 {
	if v.FPS <= 0 {
		return 0
	}
	return float64(v.FrameCount) / v.FPS
}

// TileBox прямоугольник плитки в координатах кадра
type TileBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// TileLabel цвет плитки
type TileLabel int

const (
	Unmatched TileLabel = iota
	PartialMatch
	FullMatch
)

func (l TileLabel) String() string {
	switch l {
	case PartialMatch:
		return "yellow"
	case FullMatch:
		return "green"
	default:
		return "none"
	}
}

// RowState количество зеленых и желтых плиток в строке
type RowState struct {
	FullMatch    int
	PartialMatch int
}

func (s RowState) String() string {
	return fmt.Sprintf("%d green, %d yellow", s.FullMatch, s.PartialMatch)
}

// Snapshot состояние всех видимых строк на одном кадре: индекс строки -> RowState
type Snapshot map[int]RowState

// ChangeEvent изменение состояния строки. Old == nil, если строка встречается впервые.
type ChangeEvent struct {
	Timestamp  float64
	FrameIndex int
	Row        int
	Old        *RowState
	New        RowState
}

// String формат как в логе анализа; строки нумеруются с 1
func (e ChangeEvent) String() string {
	return fmt.Sprintf("Time %.2fs - Row %d: %d green, %d yellow", e.Timestamp, e.Row+1, e.New.FullMatch, e.New.PartialMatch)
}

// SolveResult итог прогона. Found == false означает "решение не найдено".
type SolveResult struct {
	Found      bool
	Timestamp  float64
	FrameIndex int
}

func (r SolveResult) String() string {
	if !r.Found {
		return "not found"
	}
	return fmt.Sprintf("%.2fs", r.Timestamp)
}
