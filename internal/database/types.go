package database

import (
	"database/sql"
	"time"
)

// RunRecord один прогон анализа видео
type RunRecord struct {
	ID             int64
	RunUUID        string
	VideoPath      string
	Width          int
	Height         int
	FPS            float64
	FrameCount     int
	FramesRead     int
	Solved         bool
	SolveTimestamp sql.NullFloat64
	SolveFrame     sql.NullInt64
	FrameImage     []byte // PNG кадра решения
	CreatedAt      time.Time
	Changes        []RowChange
}

// RowChange изменение состояния строки
type RowChange struct {
	ID         int64
	RunID      int64
	FrameIndex int
	Timestamp  float64
	Row        int
	OldFull    sql.NullInt64 // NULL, если строка до этого не встречалась
	OldPartial sql.NullInt64
	NewFull    int
	NewPartial int
	CreatedAt  time.Time
}
