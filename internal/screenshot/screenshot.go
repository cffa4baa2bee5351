package screenshot

import (
	"fmt"
	"image"

	"wordlewatch/internal/config"

	"github.com/kbinani/screenshot"
)

// CaptureScreenshot захватывает область экрана; пустая область означает весь основной дисплей
func CaptureScreenshot(c config.CoordinatesWithSize) (image.Image, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return CaptureFullScreen()
	}

	bounds := image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %v", err)
	}
	return img, nil
}

// CaptureFullScreen захватывает основной дисплей
func CaptureFullScreen() (image.Image, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("failed to capture full screen: нет активных дисплеев")
	}
	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		return nil, fmt.Errorf("failed to capture full screen: %v", err)
	}
	return img, nil
}
