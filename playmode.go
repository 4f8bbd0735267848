package asefile

import "github.com/setanarut/asefile/aseparser"

// PlayMode steps a frame index through the frames of an animation.
//
// Forward and Reverse wrap around. PingPong and PingPongReverse turn at
// either end, showing the end frame twice. The machine never stops; callers
// stop calling Update.
type PlayMode struct {
	frame     int
	frames    int
	direction aseparser.LoopDirection
	backward  bool
	laps      int
}

// NewPlayMode returns a PlayMode over frames frames starting at start.
func NewPlayMode(dir aseparser.LoopDirection, frames, start int) *PlayMode {
	return &PlayMode{
		frame:     start,
		frames:    frames,
		direction: dir,
		backward:  dir == aseparser.PingPongReverse,
	}
}

// Frame returns the current frame index.
func (p *PlayMode) Frame() int { return p.frame }

// Frames returns the number of frames.
func (p *PlayMode) Frames() int { return p.frames }

func (p *PlayMode) Direction() aseparser.LoopDirection { return p.direction }

// Laps returns how many times the animation wrapped around or turned.
func (p *PlayMode) Laps() int { return p.laps }

// Update advances one frame.
func (p *PlayMode) Update() {
	switch p.direction {
	case aseparser.Forward:
		p.frame++
		if p.frame >= p.frames {
			p.frame = 0
			p.laps++
		}
	case aseparser.Reverse:
		p.frame--
		if p.frame < 0 {
			p.frame = p.frames - 1
			p.laps++
		}
	default:
		if p.backward {
			p.frame--
			if p.frame < 0 {
				p.backward = false
				p.frame++
				p.laps++
			}
		} else {
			p.frame++
			if p.frame >= p.frames {
				p.backward = true
				p.frame--
				p.laps++
			}
		}
	}
}
