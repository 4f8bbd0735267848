package blend

import (
	"image/color"
	"math"
)

func softLight(b, s int) int {
	bf, sf := float64(b)/255, float64(s)/255

	var d float64
	if bf <= 0.25 {
		d = ((16*bf-12)*bf + 4) * bf
	} else {
		d = math.Sqrt(bf)
	}

	var r float64
	if sf <= 0.5 {
		r = bf - (1-2*sf)*bf*(1-bf)
	} else {
		r = bf + (2*sf-1)*(d-bf)
	}
	return int(r*255 + 0.5)
}

// hue keeps the luminosity and saturation of the backdrop and takes the hue
// of the source.
func hue(b, s color.NRGBA) color.NRGBA {
	bc := toFloat(b)
	sc := toFloat(s)

	c := setLum(setSat(sc, sat(bc)), lum(bc))
	return color.NRGBA{R: unit(c[0]), G: unit(c[1]), B: unit(c[2])}
}

func unit(v float64) uint8 {
	return uint8(255 * math.Max(0, math.Min(1, v)))
}

type rgb [3]float64

func toFloat(c color.NRGBA) rgb {
	return rgb{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

func lum(c rgb) float64 {
	return 0.3*c[0] + 0.59*c[1] + 0.11*c[2]
}

func sat(c rgb) float64 {
	return max(c[0], c[1], c[2]) - min(c[0], c[1], c[2])
}

func clipColor(c rgb) rgb {
	l := lum(c)
	n := min(c[0], c[1], c[2])
	x := max(c[0], c[1], c[2])
	for i := range c {
		if n < 0 {
			c[i] = l + (c[i]-l)*l/(l-n)
		}
		if x > 1 {
			c[i] = l + (c[i]-l)*(1-l)/(x-l)
		}
	}
	return c
}

func setLum(c rgb, l float64) rgb {
	d := l - lum(c)
	for i := range c {
		c[i] += d
	}
	return clipColor(c)
}

func setSat(c rgb, s float64) rgb {
	// order the channels: lo, mid, hi
	lo, mid, hi := 0, 1, 2
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}
	if c[mid] > c[hi] {
		mid, hi = hi, mid
	}
	if c[lo] > c[mid] {
		lo, mid = mid, lo
	}

	if c[hi] > c[lo] {
		c[mid] = (c[mid] - c[lo]) * s / (c[hi] - c[lo])
		c[hi] = s
	} else {
		c[mid], c[hi] = 0, 0
	}
	c[lo] = 0
	return c
}
