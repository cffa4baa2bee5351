package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"wordlewatch/internal/types"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"
)

// Цвета рамок на отладочном изображении
var labelColors = map[types.TileLabel]color.RGBA{
	types.Unmatched:    {R: 200, G: 200, B: 200, A: 255},
	types.PartialMatch: {R: 255, G: 200, B: 0, A: 255},
	types.FullMatch:    {R: 0, G: 255, B: 0, A: 255},
}

// SaveImage сохраняет изображение в PNG, создавая директорию при необходимости
func SaveImage(img image.Image, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dir: %v", err)
		}
	}

	outFile, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer outFile.Close()

	// Сохраняем изображение в PNG формате
	if err := png.Encode(outFile, img); err != nil {
		return fmt.Errorf("failed to save image: %v", err)
	}
	return nil
}

// ImageToBytes конвертирует изображение в байты в формате PNG
func ImageToBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования изображения: %v", err)
	}
	return buf.Bytes(), nil
}

// RasterToBytes кодирует кадр в PNG
func RasterToBytes(frame types.Raster) ([]byte, error) {
	m, err := matOf(frame)
	if err != nil {
		return nil, err
	}
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("ошибка конвертации Mat в изображение: %v", err)
	}
	return ImageToBytes(img)
}

// MeanColor средний цвет плитки
func MeanColor(frame types.Raster, box types.TileBox) (colorful.Color, error) {
	m, err := matOf(frame)
	if err != nil {
		return colorful.Color{}, err
	}
	rect, err := clipRect(box, m)
	if err != nil {
		return colorful.Color{}, err
	}

	tile := m.Region(rect)
	defer tile.Close()
	mean := tile.Mean() // BGR
	return colorful.Color{R: mean.Val3 / 255, G: mean.Val2 / 255, B: mean.Val1 / 255}.Clamped(), nil
}

// OpenCVHSV переводит цвет в шкалу OpenCV: H 0-180, S и V 0-255
func OpenCVHSV(c colorful.Color) (h, s, v float64) {
	h, s, v = c.Hsv()
	return h / 2, s * 255, v * 255
}

// DrawOverlay рисует рамки плиток цветом их метки и номер строки, возвращает копию кадра
func DrawOverlay(frame types.Raster, boxes []types.TileBox, labels []types.TileLabel, columns int) (image.Image, error) {
	m, err := matOf(frame)
	if err != nil {
		return nil, err
	}
	canvas := m.Clone()
	defer canvas.Close()

	for i, box := range boxes {
		label := types.Unmatched
		if i < len(labels) {
			label = labels[i]
		}
		rect := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height)
		gocv.Rectangle(&canvas, rect, labelColors[label], 2)
		if columns > 0 && i%columns == 0 {
			gocv.PutText(&canvas, fmt.Sprintf("%d", i/columns+1), image.Pt(box.X-20, box.Y+box.Height/2),
				gocv.FontHersheySimplex, 0.6, labelColors[types.FullMatch], 2)
		}
	}

	img, err := canvas.ToImage()
	if err != nil {
		return nil, fmt.Errorf("ошибка конвертации Mat в изображение: %v", err)
	}
	return img, nil
}
