package volume

import (
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// TestGray8Indexing verifies row-major addressing, x fastest.
func TestGray8Indexing(t *testing.T) {
	vol := NewGray8(3, 4, 5)

	if vol.Width() != 3 || vol.Height() != 4 || vol.Slices() != 5 {
		t.Fatalf("Unexpected dimensions %dx%dx%d", vol.Width(), vol.Height(), vol.Slices())
	}
	if vol.BitsPerSample() != 8 {
		t.Errorf("Expected 8 bits per sample, got %d", vol.BitsPerSample())
	}
	if len(vol.Data) != 60 {
		t.Fatalf("Expected 60 voxels, got %d", len(vol.Data))
	}

	// Voxel (1, 2, 3) lives at 1 + 3*(2 + 4*3)
	vol.Data[1+3*(2+4*3)] = 42
	if vol.ValueAt(1, 2, 3) != 42 {
		t.Errorf("Expected 42 at (1,2,3), got %d", vol.ValueAt(1, 2, 3))
	}
}

// TestGray16Indexing verifies addressing and bit depth of the 16-bit type.
func TestGray16Indexing(t *testing.T) {
	vol := NewGray16(2, 2, 2)

	if vol.BitsPerSample() != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", vol.BitsPerSample())
	}

	vol.Data[1+2*(1+2*1)] = 40000
	if vol.ValueAt(1, 1, 1) != 40000 {
		t.Errorf("Expected 40000 at (1,1,1), got %d", vol.ValueAt(1, 1, 1))
	}
}

// TestWrapLengthCheck verifies that wrapping rejects mismatched data lengths.
func TestWrapLengthCheck(t *testing.T) {
	if _, err := WrapGray8(make([]uint8, 7), 2, 2, 2); err == nil {
		t.Error("Expected an error for mismatched data length")
	}
	if _, err := WrapGray8(make([]uint8, 8), 2, 2, 2); err != nil {
		t.Errorf("Unexpected error for matching data length: %v", err)
	}
	if _, err := WrapGray16(make([]uint16, 9), 2, 2, 2); err == nil {
		t.Error("Expected an error for mismatched data length")
	}
}

// TestMaxValue verifies the representable intensity limits.
func TestMaxValue(t *testing.T) {
	if got := MaxValue(NewGray8(1, 1, 1)); got != 255 {
		t.Errorf("Expected 255, got %d", got)
	}
	if got := MaxValue(NewGray16(1, 1, 1)); got != 65535 {
		t.Errorf("Expected 65535, got %d", got)
	}
}

// TestFromImages verifies stacking 2D images into a 16-bit volume.
func TestFromImages(t *testing.T) {
	images := make([]image.Image, 2)
	for z := range images {
		img := image.NewGray16(image.Rect(0, 0, 2, 2))
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(1000*z + 10*y + x)})
			}
		}
		images[z] = img
	}

	vol, err := FromImages(images)
	if err != nil {
		t.Fatalf("FromImages failed: %v", err)
	}

	if vol.Width() != 2 || vol.Height() != 2 || vol.Slices() != 2 {
		t.Fatalf("Unexpected dimensions %dx%dx%d", vol.Width(), vol.Height(), vol.Slices())
	}
	if got := vol.ValueAt(1, 1, 1); got != 1011 {
		t.Errorf("Expected 1011 at (1,1,1), got %d", got)
	}
}

// TestFromImagesMismatchedSizes verifies rejection of inconsistent slices.
func TestFromImagesMismatchedSizes(t *testing.T) {
	images := []image.Image{
		image.NewGray16(image.Rect(0, 0, 2, 2)),
		image.NewGray16(image.Rect(0, 0, 3, 2)),
	}
	if _, err := FromImages(images); err == nil {
		t.Error("Expected an error for mismatched slice dimensions")
	}

	if _, err := FromImages(nil); err == nil {
		t.Error("Expected an error for an empty image list")
	}
}

// TestExtractNumber verifies slice ordering by filename number.
func TestExtractNumber(t *testing.T) {
	cases := map[string]int{
		"slice_001.jpg": 1,
		"slice_010.jpg": 10,
		"7.jpeg":        7,
		"noslice.jpg":   0,
	}
	for name, want := range cases {
		if got := extractNumber(name); got != want {
			t.Errorf("extractNumber(%q): expected %d, got %d", name, want, got)
		}
	}
}

// TestFromSliceDir verifies loading a JPEG slice stack in filename-number
// order. Uniform slices survive JPEG compression nearly unchanged, so the
// per-slice intensity ordering is checked with a generous tolerance.
func TestFromSliceDir(t *testing.T) {
	dir := t.TempDir()

	// Written out of order on purpose; numeric sort must restore z order.
	levels := map[string]uint8{
		"slice_2.jpg":  128,
		"slice_10.jpg": 250,
		"slice_1.jpg":  10,
	}
	for name, level := range levels {
		img := image.NewGray(image.Rect(0, 0, 4, 4))
		for i := range img.Pix {
			img.Pix[i] = level
		}
		file, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
		if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 100}); err != nil {
			t.Fatalf("Failed to encode %s: %v", name, err)
		}
		file.Close()
	}

	vol, err := FromSliceDir(dir)
	if err != nil {
		t.Fatalf("FromSliceDir failed: %v", err)
	}

	if vol.Width() != 4 || vol.Height() != 4 || vol.Slices() != 3 {
		t.Fatalf("Unexpected dimensions %dx%dx%d", vol.Width(), vol.Height(), vol.Slices())
	}

	// Slices must come back ordered 1, 2, 10 by intensity.
	prev := -1
	for z := 0; z < 3; z++ {
		val := vol.ValueAt(0, 0, z)
		if val <= prev {
			t.Errorf("Slice %d intensity %d not greater than previous %d", z, val, prev)
		}
		prev = val
	}
}

// TestFromSliceDirEmpty verifies the no-images error path.
func TestFromSliceDirEmpty(t *testing.T) {
	if _, err := FromSliceDir(t.TempDir()); err == nil {
		t.Error("Expected an error for a directory without JPEG images")
	}
}

// TestStats verifies mean, deviation and extremes against hand-computed
// values.
func TestStats(t *testing.T) {
	vol := NewGray8(2, 2, 1)
	copy(vol.Data, []uint8{10, 20, 30, 40})

	s := Stats(vol)

	if s.Mean != 25 {
		t.Errorf("Expected mean 25, got %f", s.Mean)
	}
	if s.Min != 10 || s.Max != 40 {
		t.Errorf("Expected extremes [10..40], got [%d..%d]", s.Min, s.Max)
	}
	// Sample standard deviation of {10,20,30,40}
	want := math.Sqrt((225 + 25 + 25 + 225) / 3.0)
	if math.Abs(s.StdDev-want) > 1e-9 {
		t.Errorf("Expected stddev %f, got %f", want, s.StdDev)
	}
}

// TestSuggestRange verifies clamping to the representable domain.
func TestSuggestRange(t *testing.T) {
	vol := NewGray8(2, 2, 1)
	copy(vol.Data, []uint8{0, 0, 255, 255})

	min, max := SuggestRange(vol, 3)
	if min != 0 {
		t.Errorf("Expected clamped min 0, got %d", min)
	}
	if max != 255 {
		t.Errorf("Expected clamped max 255, got %d", max)
	}

	// A tight factor stays inside the domain.
	min, max = SuggestRange(vol, 0.5)
	if min < 0 || max > 255 || min > max {
		t.Errorf("Suggested range [%d..%d] is not a valid sub-range", min, max)
	}
}
