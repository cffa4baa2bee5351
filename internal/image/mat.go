package image

import (
	"fmt"
	"image"

	"wordlewatch/internal/types"

	"gocv.io/x/gocv"
)

// MatRaster кадр в формате OpenCV (BGR)
type MatRaster struct {
	mat gocv.Mat
}

// NewMatRaster оборачивает Mat; владение переходит к MatRaster
func NewMatRaster(m gocv.Mat) *MatRaster {
	return &MatRaster{mat: m}
}

// FromImage конвертирует image.Image в BGR Mat
func FromImage(img image.Image) (*MatRaster, error) {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("ошибка конвертации изображения в Mat: %v", err)
	}
	return NewMatRaster(m), nil
}

// LoadImage читает PNG/JPEG с диска
func LoadImage(path string) (*MatRaster, error) {
	m := gocv.IMRead(path, gocv.IMReadColor)
	if m.Empty() {
		m.Close()
		return nil, fmt.Errorf("не удалось прочитать изображение %s", path)
	}
	return NewMatRaster(m), nil
}

// Mat возвращает матрицу кадра без копирования
func (r *MatRaster) Mat() gocv.Mat {
	return r.mat
}

// Close освобождает память OpenCV
func (r *MatRaster) Close() error {
	return r.mat.Close()
}

func matOf(r types.Raster) (gocv.Mat, error) {
	mr, ok := r.(*MatRaster)
	if !ok || mr == nil {
		return gocv.Mat{}, fmt.Errorf("неподдерживаемый тип кадра %T", r)
	}
	if mr.mat.Empty() {
		return gocv.Mat{}, fmt.Errorf("пустой кадр")
	}
	return mr.mat, nil
}

// clipRect обрезает прямоугольник плитки по границам кадра
func clipRect(box types.TileBox, m gocv.Mat) (image.Rectangle, error) {
	rect := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height).
		Intersect(image.Rect(0, 0, m.Cols(), m.Rows()))
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("плитка %+v вне кадра %dx%d", box, m.Cols(), m.Rows())
	}
	return rect, nil
}
