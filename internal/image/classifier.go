package image

import (
	"fmt"

	"wordlewatch/internal/config"
	"wordlewatch/internal/types"

	"gocv.io/x/gocv"
)

// TileClass целевой цвет плитки
type TileClass int

const (
	Green TileClass = iota
	Yellow
)

func (c TileClass) String() string {
	if c == Yellow {
		return "yellow"
	}
	return "green"
}

// TileClassifier определяет цвет плитки по доле пикселей в HSV диапазоне
type TileClassifier struct {
	green     config.HSVRange
	yellow    config.HSVRange
	threshold float64
}

// NewTileClassifier создает новый экземпляр TileClassifier
func NewTileClassifier(green, yellow config.HSVRange, threshold float64) *TileClassifier {
	return &TileClassifier{
		green:     green,
		yellow:    yellow,
		threshold: threshold,
	}
}

// NewTileClassifierFromConfig берет диапазоны с учетом выбранной темы
func NewTileClassifierFromConfig(c config.Classifier) *TileClassifier {
	green, yellow := c.Ranges()
	return NewTileClassifier(green, yellow, c.MatchThreshold)
}

// ExceedsThreshold совпадение, только если доля строго больше порога
func ExceedsThreshold(fraction, threshold float64) bool {
	return fraction > threshold
}

func (c *TileClassifier) rangeOf(class TileClass) config.HSVRange {
	if class == Yellow {
		return c.yellow
	}
	return c.green
}

// Fraction доля пикселей плитки (BGR), попавших в диапазон
func (c *TileClassifier) Fraction(tile gocv.Mat, r config.HSVRange) (float64, error) {
	if tile.Empty() {
		return 0, fmt.Errorf("пустая область плитки")
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(tile, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0)
	upper := gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0, fmt.Errorf("пустая маска")
	}
	return float64(gocv.CountNonZero(mask)) / float64(total), nil
}

// Matches проверяет плитку на один цвет
func (c *TileClassifier) Matches(tile gocv.Mat, class TileClass) (bool, error) {
	fraction, err := c.Fraction(tile, c.rangeOf(class))
	if err != nil {
		return false, err
	}
	return ExceedsThreshold(fraction, c.threshold), nil
}

// LabelMat проверяет плитку на оба цвета независимо. Плитка без цвета считается Unmatched.
func (c *TileClassifier) LabelMat(tile gocv.Mat) (types.TileLabel, error) {
	green, err := c.Matches(tile, Green)
	if err != nil {
		return types.Unmatched, err
	}
	yellow, err := c.Matches(tile, Yellow)
	if err != nil {
		return types.Unmatched, err
	}

	switch {
	case green:
		return types.FullMatch, nil
	case yellow:
		return types.PartialMatch, nil
	}
	return types.Unmatched, nil
}

// Label вырезает плитку из кадра и классифицирует её
func (c *TileClassifier) Label(frame types.Raster, box types.TileBox) (types.TileLabel, error) {
	m, err := matOf(frame)
	if err != nil {
		return types.Unmatched, err
	}
	rect, err := clipRect(box, m)
	if err != nil {
		return types.Unmatched, err
	}

	tile := m.Region(rect)
	defer tile.Close()
	return c.LabelMat(tile)
}
