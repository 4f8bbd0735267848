package asefile

import (
	"context"
	"image"
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/setanarut/asefile/aseparser"
	"github.com/setanarut/v"
)

// Frame is a flattened frame in a Sprite atlas.
type Frame struct {
	// Bounds is the image bounds of the frame in the atlas.
	Bounds image.Rectangle

	// Duration is how long the frame is shown in a tag animation.
	Duration time.Duration

	// UserData lists the user data of the painted cels that make up the frame.
	// Hidden and reference layers are left out unless the options include them.
	UserData []*aseparser.UserData
}

// Slice is a slice with one key per frame.
type Slice struct {
	// Name is the name of the slice. Can be duplicate.
	Name string

	// Keys holds the slice geometry of each frame, expanded from the sparse
	// keys in the file.
	Keys []aseparser.SliceKey

	// HasPivot reports whether the keys carry a pivot.
	HasPivot bool

	UserData *aseparser.UserData
}

// Sprite holds all frames of a document flattened into one atlas image.
type Sprite struct {
	// Image is the atlas. Frame bounds locate the frames inside it.
	image.Image

	Frames []Frame
	Tags   []aseparser.Tag
	Slices []Slice

	frameImages []image.Image
}

// NewSprite flattens every frame of ase into an atlas.
func NewSprite(ase *aseparser.Aseprite, opts *Options) (*Sprite, error) {
	n := len(ase.Frames)
	if n == 0 {
		return nil, errors.New("sprite has no frames")
	}
	atlasr, framesr := makeAtlasFrames(n, ase.Width(), ase.Height())
	atlas := image.NewNRGBA(atlasr)

	c := newCompositor(ase, opts)
	err := c.each(context.Background(), 0, n, func(i int) error {
		return c.draw(atlas, framesr[i].Min, i)
	})
	if err != nil {
		return nil, err
	}

	s := &Sprite{
		Image:       atlas,
		Frames:      make([]Frame, n),
		Tags:        ase.Tags(),
		frameImages: make([]image.Image, n),
	}
	for i, f := range ase.Frames {
		s.Frames[i] = Frame{Bounds: framesr[i], Duration: f.Duration}
		s.frameImages[i] = atlas.SubImage(framesr[i])
		for _, cel := range f.Cels {
			if li := int(cel.LayerIndex); li < len(c.paint) && c.paint[li] && cel.UserData != nil {
				s.Frames[i].UserData = append(s.Frames[i].UserData, cel.UserData)
			}
		}
	}
	for _, sl := range ase.Slices() {
		s.Slices = append(s.Slices, Slice{
			Name:     sl.Name,
			Keys:     sl.Expand(n),
			HasPivot: sl.HasPivot(),
			UserData: sl.UserData,
		})
	}
	return s, nil
}

// GetFrameImage returns the image of frame i. Repeated calls return the same
// image.
func (s *Sprite) GetFrameImage(i int) image.Image {
	return s.frameImages[i]
}

// GetSliceImage returns the part of frame i covered by the named slice, or
// nil if there is no such slice.
func (s *Sprite) GetSliceImage(name string, i int) image.Image {
	j := slices.IndexFunc(s.Slices, func(e Slice) bool {
		return e.Name == name
	})
	if j == -1 || i >= len(s.Slices[j].Keys) {
		return nil
	}
	r := s.Slices[j].Keys[i].Bounds.Add(s.Frames[i].Bounds.Min)
	return s.Image.(*image.NRGBA).SubImage(r)
}

// Pivot returns the pivot of the first slice that has one, in frame i,
// relative to the frame origin.
func (s *Sprite) Pivot(i int) (pivot v.Vec, ok bool) {
	for _, sl := range s.Slices {
		if !sl.HasPivot || i >= len(sl.Keys) {
			continue
		}
		p := sl.Keys[i].Bounds.Min.Add(sl.Keys[i].Pivot)
		return v.Vec{X: float64(p.X), Y: float64(p.Y)}, true
	}
	return v.Vec{}, false
}

func makeAtlasFrames(nframes, framew, frameh int) (atlasr image.Rectangle, framesr []image.Rectangle) {
	fw, fh := factorPowerOfTwo(nframes)
	if framew > frameh {
		fw, fh = fh, fw
	}

	atlasr = image.Rect(0, 0, fw*framew, fh*frameh)

	for i := range nframes {
		x, y := i%fw, i/fw
		framesr = append(framesr, image.Rectangle{
			Min: image.Pt(x*framew, y*frameh),
			Max: image.Pt((x+1)*framew, (y+1)*frameh),
		})
	}
	return
}

// factorPowerOfTwo computes the smallest a*b >= n, where a, b are powers of
// two and a >= b.
func factorPowerOfTwo(n int) (a, b int) {
	if n <= 1 {
		return 1, 1
	}
	x := int(math.Ceil(math.Log2(float64(n))))
	a = 1 << (x - x/2)
	b = 1 << (x / 2)
	return
}
