package volume

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FromImages stacks a sequence of 2D images into a 16-bit volume. All images
// must share the dimensions of the first one; the i-th image becomes slice
// z = i. Intensities are taken from the red channel of the image's 16-bit
// color representation, which equals the gray value for grayscale inputs.
func FromImages(images []image.Image) (*Gray16, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("volume: no images to stack")
	}

	bounds := images[0].Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	vol := NewGray16(width, height, len(images))

	for z, img := range images {
		b := img.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("volume: slice %d is %dx%d, expected %dx%d",
				z, b.Dx(), b.Dy(), width, height)
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				vol.Data[x+width*(y+height*z)] = uint16(r)
			}
		}
	}

	return vol, nil
}

// FromSliceDir loads all JPEG images in a directory as a volume. Files are
// ordered by the numeric part of their filenames so that slice order matches
// the acquisition order regardless of zero padding.
func FromSliceDir(dir string) (*Gray16, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("volume: reading slice directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("volume: no JPEG images found in %s", dir)
	}

	sort.Slice(names, func(i, j int) bool {
		return extractNumber(names[i]) < extractNumber(names[j])
	})

	images := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := loadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("volume: loading slice %s: %w", name, err)
		}
		images = append(images, img)
	}

	return FromImages(images)
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

// loadImage loads a JPEG image from a file
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return jpeg.Decode(file)
}
