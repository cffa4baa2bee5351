package video

import (
	"io"

	imageInternal "wordlewatch/internal/image"
	"wordlewatch/internal/types"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// VideoFile последовательно читает кадры записанного видео.
// Назад не перематывает и кадры повторно не читает.
type VideoFile struct {
	capture *gocv.VideoCapture
	info    types.VideoInfo
	index   int
	done    bool
}

// Open открывает видео; любая ошибка здесь оборачивает ErrSourceUnavailable
func Open(path string) (*VideoFile, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(types.ErrSourceUnavailable, "%s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(types.ErrSourceUnavailable, "%s: не удалось открыть", path)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		capture.Close()
		return nil, errors.Wrapf(types.ErrSourceUnavailable, "%s: некорректный FPS %v", path, fps)
	}

	return &VideoFile{
		capture: capture,
		info: types.VideoInfo{
			Path:       path,
			Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
			Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
			FPS:        fps,
			FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
		},
	}, nil
}

// Info параметры видео
func (v *VideoFile) Info() types.VideoInfo {
	return v.info
}

// Next читает следующий кадр. Конец потока и ошибка декодирования одинаково дают io.EOF.
func (v *VideoFile) Next() (*types.Frame, error) {
	if v.done {
		return nil, io.EOF
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		v.done = true
		return nil, io.EOF
	}

	v.index++
	return &types.Frame{
		Index:     v.index,
		Timestamp: float64(v.index) / v.info.FPS,
		Image:     imageInternal.NewMatRaster(mat),
	}, nil
}

// Close освобождает декодер
func (v *VideoFile) Close() error {
	v.done = true
	return v.capture.Close()
}
