// Package visualization renders slices of a scalar volume and visualizes the
// skip decisions an octree box list implies for a renderer.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"voloctree/pkg/octree"
	"voloctree/pkg/volume"
)

// Viewer extracts 2D views from a volume. When given a box list it can also
// render masked slices, where every voxel outside the inside region is
// blanked, and report how much of the volume the boxes cover.
type Viewer struct {
	vol   volume.Volume
	boxes []octree.Box
}

// NewViewer creates a viewer over the given volume and box list. The box
// list may be nil if only plain slice extraction is needed.
func NewViewer(vol volume.Volume, boxes []octree.Box) *Viewer {
	return &Viewer{vol: vol, boxes: boxes}
}

// SetBoxes replaces the box list, e.g. after a range change re-enumeration.
func (v *Viewer) SetBoxes(boxes []octree.Box) {
	v.boxes = boxes
}

// gray16At maps a voxel intensity to the full 16-bit grayscale range.
func (v *Viewer) gray16At(x, y, z int) color.Gray16 {
	val := v.vol.ValueAt(x, y, z) * 65535 / volume.MaxValue(v.vol)
	return color.Gray16{Y: uint16(val)}
}

// ExtractSlice extracts a 2D slice from the volume along the specified axis.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	width := v.vol.Width()
	height := v.vol.Height()
	depth := v.vol.Slices()

	var img *image.Gray16

	switch axis {
	case "x", "X":
		// Slice along the YZ plane
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		img = image.NewGray16(image.Rect(0, 0, depth, height))
		for y := 0; y < height; y++ {
			for z := 0; z < depth; z++ {
				img.SetGray16(z, y, v.gray16At(position, y, z))
			}
		}

	case "y", "Y":
		// Slice along the XZ plane
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		img = image.NewGray16(image.Rect(0, 0, width, depth))
		for z := 0; z < depth; z++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, z, v.gray16At(x, position, z))
			}
		}

	case "z", "Z":
		// Slice along the XY plane
		if position >= depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, depth)
		}
		img = image.NewGray16(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray16(x, y, v.gray16At(x, y, position))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// ExtractMaskedSlice renders the XY slice at the given z position with every
// voxel not covered by the box list blanked to black. The result shows which
// parts of the slice a renderer would actually visit.
func (v *Viewer) ExtractMaskedSlice(position int) (image.Image, error) {
	width := v.vol.Width()
	height := v.vol.Height()

	if position < 0 || position >= v.vol.Slices() {
		return nil, fmt.Errorf("position %d exceeds depth %d", position, v.vol.Slices())
	}

	// Coverage mask of the slice from the boxes intersecting it.
	mask := make([]bool, width*height)
	for _, b := range v.boxes {
		if position < b.Z || position >= b.Z+b.SizeZ {
			continue
		}
		for y := b.Y; y < b.Y+b.SizeY; y++ {
			for x := b.X; x < b.X+b.SizeX; x++ {
				mask[y*width+x] = true
			}
		}
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y*width+x] {
				img.SetGray16(x, y, v.gray16At(x, y, position))
			}
		}
	}

	return img, nil
}

// CullStats summarizes how much of the volume a box list covers.
type CullStats struct {
	// Boxes is the number of boxes in the list.
	Boxes int

	// CoveredVoxels is the total number of voxels the boxes span.
	CoveredVoxels int

	// CoveredFraction is CoveredVoxels over the volume's voxel count.
	CoveredFraction float64
}

// CullStats computes coverage statistics for the viewer's box list. Boxes
// from an octree enumeration never overlap, so extents sum directly.
func (v *Viewer) CullStats() CullStats {
	covered := 0
	for _, b := range v.boxes {
		covered += b.SizeX * b.SizeY * b.SizeZ
	}

	total := v.vol.Width() * v.vol.Height() * v.vol.Slices()
	stats := CullStats{Boxes: len(v.boxes), CoveredVoxels: covered}
	if total > 0 {
		stats.CoveredFraction = float64(covered) / float64(total)
	}
	return stats
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves a sequence of slices along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.vol.Width()
	case "y", "Y":
		maxPos = v.vol.Height()
	case "z", "Z":
		maxPos = v.vol.Slices()
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}

// SaveMaskedSequence renders and saves every XY slice with the box mask
// applied.
func (v *Viewer) SaveMaskedSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < v.vol.Slices(); pos++ {
		img, err := v.ExtractMaskedSlice(pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("masked_z_%03d.jpg", pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
