package types

import "github.com/pkg/errors"

var (
	// ErrSourceUnavailable видео невозможно открыть, прогон прерывается до начала обработки
	ErrSourceUnavailable = errors.New("video source unavailable")
	// ErrGridNotVisible на кадре найдено меньше плиток, чем rows*columns
	ErrGridNotVisible = errors.New("grid not visible")
	// ErrClassification плитку не удалось классифицировать; кадр считается пустым
	ErrClassification = errors.New("tile classification failed")
)
