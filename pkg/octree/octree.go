// Package octree implements a hierarchical spatial index over a dense scalar
// volume. Every tree cell stores the minimum and maximum intensity of the
// voxels it spans, so sub-regions can be classified as entirely inside,
// entirely outside, or mixed with respect to an intensity range without
// re-reading voxel data. A renderer uses the resulting box list to skip
// regions irrelevant to the current threshold.
//
// The tree is not a pointer-linked structure. Each layer is one flat element
// array indexed by a linearized (x, y, z) grid coordinate, and each axis has
// its own per-layer cell extents. Axes subdivide independently until their
// cells reach the minimum cube size, so a node has 1, 2, 4 or 8 children
// depending on which axes still split at that layer.
package octree

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"voloctree/pkg/volume"
)

// Fill outcomes. A fill either succeeds, is cooperatively aborted, or is
// rejected before any scanning happens.
var (
	// ErrFillAborted reports a fill abandoned after Close requested
	// cancellation. The tree is not usable until the next SetVolume.
	ErrFillAborted = errors.New("octree: fill aborted")

	// ErrUnsupportedVolume reports a volume whose element type the fill
	// cannot scan. Only the 8-bit and 16-bit volume types are supported.
	ErrUnsupportedVolume = errors.New("octree: unsupported volume element type")

	// ErrEmptyVolume reports a nil volume or one with a non-positive
	// dimension.
	ErrEmptyVolume = errors.New("octree: volume has no voxels")

	// ErrInvalidCubeSize reports a non-positive minimum cube size.
	ErrInvalidCubeSize = errors.New("octree: minimum cube size must be positive")
)

type classification uint8

const (
	mixedNode classification = iota // children with mixed conditions
	leafIn                          // the whole cell satisfies the range
	leafOut                         // the whole cell violates the range
)

// element is one tree cell. min and max bound the intensities of every voxel
// the cell spans; class is transient and recomputed on each range change.
type element struct {
	min   int
	max   int
	class classification
}

// Tree is the spatial index. Classification and enumeration are defined only
// after a fill has completed without error; poll Usable to find out.
//
// A Tree is a single-writer structure: one fill may run at a time (concurrent
// SetVolume calls are serialized), and readers must not call SetInsideRange
// or Enumerate while a fill is in flight. The fill goroutine publishes
// usable=true only after its last write, so a reader that observed Usable()
// == true never races a running fill.
type Tree struct {
	minCubeSize int
	numLayers   int

	// Cell extents and cell start coordinates per layer, per axis.
	gridX, gridY, gridZ       [][]int
	originX, originY, originZ [][]int

	// One flat element array per layer, length |gridX|*|gridY|*|gridZ|.
	data [][]element

	scale        float64 // conversion from normalized to integer intensities
	rangeMin     int
	rangeMax     int
	voxelsInside int
	boxes        []Box

	log zerolog.Logger

	fillMu sync.Mutex // serializes fills, including rebinds during background work
	wg     sync.WaitGroup
	abort  atomic.Bool
	usable atomic.Bool

	errMu   sync.Mutex
	fillErr error
}

// New creates an empty tree with the given smallest allowed cell dimension.
// Bind a volume with SetVolume before using it.
func New(minCubeSize int) *Tree {
	return &Tree{
		minCubeSize: minCubeSize,
		scale:       1.0,
		rangeMin:    math.MinInt,
		rangeMax:    math.MaxInt,
		log:         zerolog.Nop(),
	}
}

// NewFromVolume creates a tree and fills it from the volume on a background
// goroutine. The constructor returns immediately; callers poll Usable and
// only classify or enumerate once it reports true. A fill failure is
// retrievable through FillErr. Close must be called to release the worker.
func NewFromVolume(vol volume.Volume, minCubeSize int) *Tree {
	t := New(minCubeSize)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.SetVolume(vol); err != nil {
			t.log.Debug().Err(err).Msg("octree background fill did not complete")
		}
	}()
	return t
}

// SetLogger routes the tree's timing diagnostics to the given logger. Set it
// before binding a volume, or after Usable reports true; logger replacement
// is not synchronized with a running fill.
func (t *Tree) SetLogger(log zerolog.Logger) {
	t.log = log
}

// Usable reports whether the tree is filled and ready for classification and
// enumeration. It is false during any (re)construction and becomes true only
// after a fill completes without error.
func (t *Tree) Usable() bool {
	return t.usable.Load()
}

// FillErr returns the outcome of the most recently finished fill, nil if it
// succeeded or none has run yet.
func (t *Tree) FillErr() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.fillErr
}

// NumLayers returns the number of subdivision layers, the maximum over the
// three axes.
func (t *Tree) NumLayers() int {
	return t.numLayers
}

// VoxelsInside returns the number of voxels satisfying the range condition
// as counted by the last classification pass.
func (t *Tree) VoxelsInside() int {
	return t.voxelsInside
}

// InsideRange returns the current integer intensity bounds.
func (t *Tree) InsideRange() (min, max int) {
	return t.rangeMin, t.rangeMax
}

// Close requests cancellation of any in-flight background fill and waits for
// the worker to observe it and exit. Teardown latency is bounded by one depth
// slice of scanning, the granularity at which the fill checks the flag.
func (t *Tree) Close() {
	t.abort.Store(true)
	t.wg.Wait()
}

// SetVolume (re)builds the tree from the given volume. It blocks until the
// fill finishes and returns nil on success, ErrFillAborted if cancellation
// was requested, ErrUnsupportedVolume or ErrEmptyVolume if the input cannot
// be scanned. All layer grids and element arrays are reallocated; nothing of
// the previous binding survives.
func (t *Tree) SetVolume(vol volume.Volume) error {
	t.fillMu.Lock()
	defer t.fillMu.Unlock()

	t.usable.Store(false)
	err := t.rebuild(vol)

	t.errMu.Lock()
	t.fillErr = err
	t.errMu.Unlock()
	return err
}

func (t *Tree) rebuild(vol volume.Volume) error {
	if t.minCubeSize <= 0 {
		t.data = nil
		return ErrInvalidCubeSize
	}
	if vol == nil || vol.Width() <= 0 || vol.Height() <= 0 || vol.Slices() <= 0 {
		t.data = nil
		return ErrEmptyVolume
	}

	start := time.Now()
	t.scale = float64(int(1)<<vol.BitsPerSample() - 1)

	// Classification state does not survive a rebind; reset the range so the
	// next SetInsideRange call always reclassifies.
	t.rangeMin = math.MinInt
	t.rangeMax = math.MaxInt
	t.voxelsInside = 0

	t.gridX = buildLayerGrid(vol.Width(), t.minCubeSize)
	t.gridY = buildLayerGrid(vol.Height(), t.minCubeSize)
	t.gridZ = buildLayerGrid(vol.Slices(), t.minCubeSize)
	nx, ny, nz := len(t.gridX), len(t.gridY), len(t.gridZ)

	t.numLayers = nx
	if ny > t.numLayers {
		t.numLayers = ny
	}
	if nz > t.numLayers {
		t.numLayers = nz
	}
	t.log.Debug().Int("x", nx).Int("y", ny).Int("z", nz).Msg("octree axis layers")

	// Pad shorter axes by repeating their final layer, freezing that axis's
	// subdivision for deeper layers.
	for len(t.gridX) < t.numLayers {
		t.gridX = append(t.gridX, t.gridX[len(t.gridX)-1])
	}
	for len(t.gridY) < t.numLayers {
		t.gridY = append(t.gridY, t.gridY[len(t.gridY)-1])
	}
	for len(t.gridZ) < t.numLayers {
		t.gridZ = append(t.gridZ, t.gridZ[len(t.gridZ)-1])
	}

	t.originX = make([][]int, t.numLayers)
	t.originY = make([][]int, t.numLayers)
	t.originZ = make([][]int, t.numLayers)
	t.data = make([][]element, t.numLayers)
	for i := 0; i < t.numLayers; i++ {
		t.originX[i] = cellOrigins(t.gridX[i])
		t.originY[i] = cellOrigins(t.gridY[i])
		t.originZ[i] = cellOrigins(t.gridZ[i])
		t.data[i] = make([]element, len(t.gridX[i])*len(t.gridY[i])*len(t.gridZ[i]))
	}

	var err error
	switch v := vol.(type) {
	case *volume.Gray8:
		err = fillData(t, v.Data, vol.Width(), vol.Height())
	case *volume.Gray16:
		err = fillData(t, v.Data, vol.Width(), vol.Height())
	default:
		err = ErrUnsupportedVolume
	}
	if err != nil {
		t.data = nil
		return err
	}

	// Log before publishing so that a caller who observed Usable() == true
	// can safely swap the logger without racing this read.
	t.log.Debug().
		Int("layers", t.numLayers).
		Dur("elapsed", time.Since(start)).
		Msg("octree fill completed")
	t.usable.Store(true)
	return nil
}

// fillData scans the finest layer from raw voxel data and aggregates every
// coarser layer strictly bottom-up. The abort flag is checked before each
// outer z scan line in both phases; on abort nothing is committed.
func fillData[T uint8 | uint16](t *Tree, data []T, width, height int) error {
	finest := t.numLayers - 1
	lx, ly, lz := t.gridX[finest], t.gridY[finest], t.gridZ[finest]
	nx, ny, nz := len(lx), len(ly), len(lz)

	// Per-cell min/max over the constituent voxels.
	pos := 0
	pz := 0
	for z := 0; z < nz; z++ {
		if t.abort.Load() {
			return ErrFillAborted
		}
		py := 0
		for y := 0; y < ny; y++ {
			px := 0
			for x := 0; x < nx; x++ {
				vmin, vmax := math.MaxInt, math.MinInt
				for zz := 0; zz < lz[z]; zz++ {
					for yy := 0; yy < ly[y]; yy++ {
						row := px + width*(py+yy+height*(pz+zz))
						for xx := 0; xx < lx[x]; xx++ {
							val := int(data[row+xx])
							if val < vmin {
								vmin = val
							}
							if val > vmax {
								vmax = val
							}
						}
					}
				}
				t.data[finest][pos] = element{min: vmin, max: vmax}
				pos++
				px += lx[x]
			}
			py += ly[y]
		}
		pz += lz[z]
	}

	// Propagate up, reading only the already-computed next-finer layer.
	for layer := t.numLayers - 2; layer >= 0; layer-- {
		nx = len(t.gridX[layer])
		ny = len(t.gridY[layer])
		nz = len(t.gridZ[layer])
		sx, sy, sz := t.split(layer)
		pos = 0
		for z := 0; z < nz; z++ {
			if t.abort.Load() {
				return ErrFillAborted
			}
			for y := 0; y < ny; y++ {
				for x := 0; x < nx; x++ {
					vmin, vmax := math.MaxInt, math.MinInt
					for zz := 0; zz < sz; zz++ {
						for yy := 0; yy < sy; yy++ {
							for xx := 0; xx < sx; xx++ {
								down := t.data[layer+1][sx*x+xx+nx*sx*(sy*y+yy+ny*sy*(sz*z+zz))]
								if down.min < vmin {
									vmin = down.min
								}
								if down.max > vmax {
									vmax = down.max
								}
							}
						}
					}
					t.data[layer][pos] = element{min: vmin, max: vmax}
					pos++
				}
			}
		}
	}

	return nil
}

// split returns the per-axis child count between layer and layer+1. Each
// count is 1 or 2 depending on whether the axis still subdivides there,
// giving a node 1, 2, 4 or 8 children.
func (t *Tree) split(layer int) (sx, sy, sz int) {
	sx = len(t.gridX[layer+1]) / len(t.gridX[layer])
	sy = len(t.gridY[layer+1]) / len(t.gridY[layer])
	sz = len(t.gridZ[layer+1]) / len(t.gridZ[layer])
	return sx, sy, sz
}
