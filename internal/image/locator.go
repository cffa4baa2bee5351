package image

import (
	"fmt"
	"image"
	"sort"

	"wordlewatch/internal/config"
	"wordlewatch/internal/types"

	"gocv.io/x/gocv"
)

// LocatorParams параметры поиска плиток
type LocatorParams struct {
	BlurKernel   int
	CannyLow     float32
	CannyHigh    float32
	DilateKernel int // 0 отключает расширение границ
	MinTileDim   int
	MaxTileDim   int
	RowTolerance int
}

// LocatorParamsFromConfig собирает параметры из конфигурации
func LocatorParamsFromConfig(c config.Config) LocatorParams {
	return LocatorParams{
		BlurKernel:   c.Locator.BlurKernel,
		CannyLow:     float32(c.Locator.CannyLow),
		CannyHigh:    float32(c.Locator.CannyHigh),
		DilateKernel: c.Locator.DilateKernel,
		MinTileDim:   c.Grid.MinTileDim,
		MaxTileDim:   c.Grid.MaxTileDim,
		RowTolerance: c.Grid.RowTolerance,
	}
}

// TileLocator ищет плитки сетки по контурам
type TileLocator struct {
	params LocatorParams
}

// NewTileLocator создает новый экземпляр TileLocator
func NewTileLocator(params LocatorParams) *TileLocator {
	return &TileLocator{params: params}
}

// Locate находит плитки на кадре и возвращает их в порядке чтения
func (l *TileLocator) Locate(frame types.Raster) ([]types.TileBox, error) {
	m, err := matOf(frame)
	if err != nil {
		return nil, err
	}
	return l.LocateMat(m)
}

// LocateMat: серый -> размытие -> Canny -> расширение -> внешние контуры -> фильтр по размеру
func (l *TileLocator) LocateMat(frame gocv.Mat) ([]types.TileBox, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("пустой кадр")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if k := l.params.BlurKernel; k > 0 {
		gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	} else {
		gray.CopyTo(&blurred)
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, l.params.CannyLow, l.params.CannyHigh)

	if d := l.params.DilateKernel; d > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(d, d))
		defer kernel.Close()
		gocv.Dilate(edges, &edges, kernel)
	}

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	rects := make([]image.Rectangle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rects = append(rects, gocv.BoundingRect(contours.At(i)))
	}

	boxes := FilterBoxes(rects, l.params.MinTileDim, l.params.MaxTileDim)
	SortReadingOrder(boxes, l.params.RowTolerance)
	return boxes, nil
}

// FilterBoxes оставляет прямоугольники, у которых ширина и высота в [minDim, maxDim]
func FilterBoxes(rects []image.Rectangle, minDim, maxDim int) []types.TileBox {
	boxes := make([]types.TileBox, 0, len(rects))
	for _, r := range rects {
		w, h := r.Dx(), r.Dy()
		if w < minDim || w > maxDim || h < minDim || h > maxDim {
			continue
		}
		boxes = append(boxes, types.TileBox{X: r.Min.X, Y: r.Min.Y, Width: w, Height: h})
	}
	return boxes
}

// SortReadingOrder сортирует плитки сверху вниз, затем слева направо.
// Плитки, чей Y отличается от начала полосы не больше чем на tolerance, считаются одной строкой.
func SortReadingOrder(boxes []types.TileBox, tolerance int) {
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].Y != boxes[j].Y {
			return boxes[i].Y < boxes[j].Y
		}
		return boxes[i].X < boxes[j].X
	})

	start := 0
	for i := 1; i <= len(boxes); i++ {
		if i < len(boxes) && boxes[i].Y-boxes[start].Y <= tolerance {
			continue
		}
		band := boxes[start:i]
		sort.SliceStable(band, func(a, b int) bool {
			return band[a].X < band[b].X
		})
		start = i
	}
}
