// Package asefile renders decoded Aseprite documents into images and plays
// their tag animations.
//
// Frames are flattened by painting every visible cel, in file order, over a
// transparent canvas with the blend mode of its layer. Sprite lays all frames
// out in one atlas, and AnimPlayer steps through the frames of a tag.
package asefile

import (
	"context"
	"image"
	"image/color"
	"runtime"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/setanarut/asefile/aseparser"
	"github.com/setanarut/asefile/aseparser/blend"
	"golang.org/x/sync/errgroup"
)

// Options control how frames are flattened. A nil *Options uses the zero
// value.
type Options struct {
	// IncludeHidden also paints hidden layers and layers inside hidden groups.
	IncludeHidden bool

	// IncludeReference also paints reference layers.
	IncludeReference bool

	// Workers limits how many frames are flattened at once.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int
}

// ComposeFrame flattens a single frame into a new image the size of the
// sprite.
func ComposeFrame(ase *aseparser.Aseprite, frame int, opts *Options) (*image.NRGBA, error) {
	if err := checkRange(ase, frame, frame+1); err != nil {
		return nil, err
	}
	c := newCompositor(ase, opts)
	dst := image.NewNRGBA(image.Rect(0, 0, ase.Width(), ase.Height()))
	if err := c.draw(dst, image.Point{}, frame); err != nil {
		return nil, err
	}
	return dst, nil
}

// ComposeFrames flattens frames [from, to) concurrently. It stops at the
// first error or when ctx is done.
func ComposeFrames(ctx context.Context, ase *aseparser.Aseprite, from, to int, opts *Options) ([]*image.NRGBA, error) {
	if err := checkRange(ase, from, to); err != nil {
		return nil, err
	}
	c := newCompositor(ase, opts)
	out := make([]*image.NRGBA, to-from)
	bounds := image.Rect(0, 0, ase.Width(), ase.Height())
	err := c.each(ctx, from, to, func(i int) error {
		dst := image.NewNRGBA(bounds)
		if err := c.draw(dst, image.Point{}, i); err != nil {
			return err
		}
		out[i-from] = dst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ComposeStrip flattens frames [from, to) side by side into one image,
// width*(to-from) pixels wide.
func ComposeStrip(ase *aseparser.Aseprite, from, to int, opts *Options) (*image.NRGBA, error) {
	if err := checkRange(ase, from, to); err != nil {
		return nil, err
	}
	c := newCompositor(ase, opts)
	w, h := ase.Width(), ase.Height()
	dst := image.NewNRGBA(image.Rect(0, 0, w*(to-from), h))
	err := c.each(context.Background(), from, to, func(i int) error {
		return c.draw(dst, image.Pt((i-from)*w, 0), i)
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// ComposeTag flattens the frames of the named tag into a strip.
func ComposeTag(ase *aseparser.Aseprite, name string, opts *Options) (*image.NRGBA, error) {
	tag, err := ase.Tag(name)
	if err != nil {
		return nil, err
	}
	return ComposeStrip(ase, int(tag.Lo), int(tag.Hi)+1, opts)
}

func checkRange(ase *aseparser.Aseprite, from, to int) error {
	if from < 0 || to > len(ase.Frames) || from >= to {
		return errors.Errorf("frame range [%d, %d) outside [0, %d)", from, to, len(ase.Frames))
	}
	return nil
}

// compositor is read-only after construction and safe for concurrent draws
// into disjoint regions.
type compositor struct {
	ase      *aseparser.Aseprite
	layers   []*aseparser.Layer
	paint    []bool
	blenders []blend.Func
	errs     []error
	palette  []color.NRGBA
	workers  int
	layerOp  bool
}

func newCompositor(ase *aseparser.Aseprite, opts *Options) *compositor {
	if opts == nil {
		opts = &Options{}
	}
	layers := ase.Layers()
	c := &compositor{
		ase:      ase,
		layers:   layers,
		paint:    make([]bool, len(layers)),
		blenders: make([]blend.Func, len(layers)),
		errs:     make([]error, len(layers)),
		workers:  opts.Workers,
		layerOp:  ase.Header.Flags&aseparser.HeaderLayerOpacity != 0,
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}

	for i, l := range layers {
		c.paint[i] = !l.Group() &&
			(opts.IncludeReference || !l.Reference()) &&
			(opts.IncludeHidden || ase.LayerVisible(i))
		if c.paint[i] {
			c.blenders[i], c.errs[i] = blend.GetBlender(l.BlendMode)
		}
	}

	if ase.ColorDepth() == aseparser.ColorDepthIndexed {
		pal := ase.Palette()
		c.palette = make([]color.NRGBA, len(pal))
		for i, col := range pal {
			c.palette[i] = color.NRGBAModel.Convert(col).(color.NRGBA)
		}
	}
	return c
}

func (c *compositor) each(ctx context.Context, from, to int, fn func(i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := from; i < to; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i)
		})
	}
	return g.Wait()
}

// draw paints frame into the sprite-sized region of dst at off.
func (c *compositor) draw(dst *image.NRGBA, off image.Point, frame int) error {
	clip := image.Rectangle{Min: off, Max: off.Add(image.Pt(c.ase.Width(), c.ase.Height()))}

	for _, cel := range c.ase.Frames[frame].Cels {
		li := int(cel.LayerIndex)
		if li >= len(c.layers) {
			return errors.Errorf("frame %d: cel on layer %d, sprite has %d layers", frame, li, len(c.layers))
		}
		if !c.paint[li] {
			continue
		}
		if err := c.errs[li]; err != nil {
			return errors.Wrapf(err, "layer %q", c.layers[li].Name)
		}

		src, err := c.ase.ResolveCel(frame, li)
		if err != nil {
			return err
		}
		opacity := src.Opacity
		if c.layerOp {
			opacity = blend.MulUn8(opacity, c.layers[li].Opacity)
		}
		if opacity == 0 {
			continue
		}

		origin := off.Add(image.Pt(int(src.X), int(src.Y)))
		if src.Tilemap != nil {
			if err := c.drawTilemap(dst, clip, origin, src, li, opacity); err != nil {
				return err
			}
			continue
		}
		c.drawPixels(dst, clip, origin, src.Pixels, int(src.Width), int(src.Height), c.blenders[li], opacity)
	}
	glog.V(3).Infof("frame %d drawn at %v", frame, off)
	return nil
}

func (c *compositor) drawPixels(dst *image.NRGBA, clip image.Rectangle, origin image.Point, pix []color.NRGBA, w, h int, fn blend.Func, opacity uint8) {
	for y := range h {
		for x := range w {
			p := image.Pt(origin.X+x, origin.Y+y)
			if !p.In(clip) {
				continue
			}
			c.blendAt(dst, p, c.lookup(pix[y*w+x]), fn, opacity)
		}
	}
}

func (c *compositor) drawTilemap(dst *image.NRGBA, clip image.Rectangle, origin image.Point, cel *aseparser.Cel, li int, opacity uint8) error {
	ts := c.ase.Tileset(c.layers[li].TilesetIndex)
	if ts == nil {
		return errors.Errorf("layer %q: no tileset %d", c.layers[li].Name, c.layers[li].TilesetIndex)
	}
	tw, th := int(ts.TileWidth), int(ts.TileHeight)
	fn := c.blenders[li]
	tm := cel.Tilemap

	for ty := range int(cel.Height) {
		for tx := range int(cel.Width) {
			id, xflip, yflip, dflip := tm.Tile(ty*int(cel.Width) + tx)
			tile := ts.Tile(id)
			if tile == nil {
				continue
			}
			at := origin.Add(image.Pt(tx*tw, ty*th))
			for y := range th {
				for x := range tw {
					p := at.Add(image.Pt(x, y))
					if !p.In(clip) {
						continue
					}
					sx, sy := x, y
					if xflip {
						sx = tw - 1 - sx
					}
					if yflip {
						sy = th - 1 - sy
					}
					if dflip && tw == th {
						sx, sy = sy, sx
					}
					c.blendAt(dst, p, c.lookup(tile[sy*tw+sx]), fn, opacity)
				}
			}
		}
	}
	return nil
}

// lookup resolves a palette index in indexed sprites. Indices outside the
// palette are transparent.
func (c *compositor) lookup(px color.NRGBA) color.NRGBA {
	if c.palette == nil {
		return px
	}
	if int(px.R) >= len(c.palette) {
		return color.NRGBA{}
	}
	return c.palette[px.R]
}

func (c *compositor) blendAt(dst *image.NRGBA, p image.Point, src color.NRGBA, fn blend.Func, opacity uint8) {
	if src.A == 0 {
		return
	}
	i := dst.PixOffset(p.X, p.Y)
	s := dst.Pix[i : i+4 : i+4]
	r := fn(src, color.NRGBA{s[0], s[1], s[2], s[3]}, opacity)
	s[0], s[1], s[2], s[3] = r.R, r.G, r.B, r.A
}
