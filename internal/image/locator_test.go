package image

import (
	"image"
	"testing"

	"wordlewatch/internal/config"
	"wordlewatch/internal/types"

	"gocv.io/x/gocv"
)

const (
	tileSize  = 60
	tilePitch = 70
	gridLeft  = 20
	gridTop   = 20
)

// syntheticGrid рисует сетку светлых плиток на черном фоне, skip содержит индексы пропущенных плиток
func syntheticGrid(t *testing.T, rows, cols int, skip map[int]bool) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 460, 400, gocv.MatTypeCV8UC3)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if skip[r*cols+c] {
				continue
			}
			x, y := gridLeft+c*tilePitch, gridTop+r*tilePitch
			fill(frame, image.Rect(x, y, x+tileSize, y+tileSize), gocv.NewScalar(200, 200, 200, 0))
		}
	}
	return frame
}

func fill(m gocv.Mat, r image.Rectangle, s gocv.Scalar) {
	region := m.Region(r)
	region.SetTo(s)
	region.Close()
}

func defaultLocator() *TileLocator {
	return NewTileLocator(LocatorParamsFromConfig(config.Default()))
}

func TestLocateFullGrid(t *testing.T) {
	frame := syntheticGrid(t, 6, 5, nil)
	defer frame.Close()

	boxes, err := defaultLocator().LocateMat(frame)
	if err != nil {
		t.Fatalf("LocateMat: %v", err)
	}
	if len(boxes) != 30 {
		t.Fatalf("found %d boxes, want 30", len(boxes))
	}
	for i, b := range boxes {
		wantX, wantY := gridLeft+(i%5)*tilePitch, gridTop+(i/5)*tilePitch
		if abs(b.X-wantX) > 3 || abs(b.Y-wantY) > 3 {
			t.Errorf("box %d at (%d,%d), want near (%d,%d)", i, b.X, b.Y, wantX, wantY)
		}
		if abs(b.Width-tileSize) > 5 || abs(b.Height-tileSize) > 5 {
			t.Errorf("box %d size %dx%d", i, b.Width, b.Height)
		}
	}
}

func TestLocateOccludedTile(t *testing.T) {
	frame := syntheticGrid(t, 6, 5, map[int]bool{17: true})
	defer frame.Close()

	boxes, err := defaultLocator().LocateMat(frame)
	if err != nil {
		t.Fatalf("LocateMat: %v", err)
	}
	if len(boxes) != 29 {
		t.Fatalf("found %d boxes, want 29", len(boxes))
	}
}

func TestLocateRejectsUnsupportedRaster(t *testing.T) {
	if _, err := defaultLocator().Locate(nil); err == nil {
		t.Fatal("expected error for nil raster")
	}
}

func TestFilterBoxes(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 60, 60),    // плитка
		image.Rect(0, 0, 39, 60),    // узкая
		image.Rect(0, 0, 40, 100),   // границы включительно
		image.Rect(0, 0, 300, 60),   // широкая полоса
		image.Rect(10, 10, 12, 12),  // шум
		image.Rect(5, 7, 105, 106),  // 100x99
		image.Rect(0, 0, 100, 101),  // слишком высокая
	}
	got := FilterBoxes(rects, 40, 100)
	want := []types.TileBox{
		{X: 0, Y: 0, Width: 60, Height: 60},
		{X: 0, Y: 0, Width: 40, Height: 100},
		{X: 5, Y: 7, Width: 100, Height: 99},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("box %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSortReadingOrder(t *testing.T) {
	boxes := []types.TileBox{
		{X: 140, Y: 101}, {X: 0, Y: 170}, {X: 70, Y: 99},
		{X: 0, Y: 100}, {X: 70, Y: 172},
	}
	SortReadingOrder(boxes, 10)

	want := []types.TileBox{
		{X: 0, Y: 100}, {X: 70, Y: 99}, {X: 140, Y: 101},
		{X: 0, Y: 170}, {X: 70, Y: 172},
	}
	for i := range want {
		if boxes[i] != want[i] {
			t.Fatalf("order = %v, want %v", boxes, want)
		}
	}
}

func TestSortReadingOrderStrict(t *testing.T) {
	boxes := []types.TileBox{{X: 10, Y: 5}, {X: 0, Y: 6}}
	SortReadingOrder(boxes, 0)
	if boxes[0].Y != 5 || boxes[1].Y != 6 {
		t.Fatalf("order = %v", boxes)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
