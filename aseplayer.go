package asefile

import (
	"fmt"
	"image"
	"io/fs"
	"time"

	"github.com/pkg/errors"
	"github.com/setanarut/asefile/aseparser"
	"github.com/setanarut/v"
)

const Delta = time.Second / 60

const debugFormat = "Tag: %v\nDirection: %v\nRepeat: %v/%v\nIsEnded: %v\nFrame: %v\nElapsed: %v\nPaused: %v"

// AnimPlayer plays and manages Aseprite tag animations.
type AnimPlayer struct {

	// The frame of the animation currently being played
	CurrentFrame *AnimFrame

	// The animation currently being played
	CurrentAnimation *Animation

	// Animations accessible by their Aseprite tag names
	Animations map[string]*Animation

	// Sprite atlas containing all animations
	Atlas *Sprite

	// If true, the animation is paused
	Paused bool

	frameElapsedTime time.Duration
	frameIndex       int
	mode             *PlayMode
	isEnded          bool
}

// Update advances the animation by dt.
func (a *AnimPlayer) Update(dt time.Duration) {
	if a.Paused || a.isEnded {
		return
	}
	anim := a.CurrentAnimation
	a.frameElapsedTime += dt
	if a.frameElapsedTime < anim.Frames[a.frameIndex].Duration {
		return
	}
	a.frameElapsedTime = 0

	laps := a.mode.Laps()
	a.mode.Update()
	if anim.Repeat > 0 && a.mode.Laps() > laps && a.mode.Laps() >= int(anim.Repeat) {
		// hold the last frame shown
		a.isEnded = true
		return
	}
	a.frameIndex = a.mode.Frame()
	a.CurrentFrame = &anim.Frames[a.frameIndex]
}

// If Animation.Repeat is not zero, it returns true when the animation ends. If it is zero, it is always false.
func (a *AnimPlayer) IsEnded() bool {
	return a.isEnded
}

// Play rewinds and plays the animation with the given tag.
func (a *AnimPlayer) Play(tag string) error {
	anim, ok := a.Animations[tag]
	if !ok {
		return errors.Wrapf(aseparser.ErrUnknownTagReference, "%q", tag)
	}
	a.CurrentAnimation = anim
	a.Rewind()
	return nil
}

// PlayIfNotCurrent rewinds and plays the animation with the given tag if it's not already playing
func (a *AnimPlayer) PlayIfNotCurrent(tag string) error {
	if tag != a.CurrentAnimation.Tag {
		return a.Play(tag)
	}
	return nil
}

// Rewinds animation
func (a *AnimPlayer) Rewind() {
	anim := a.CurrentAnimation
	a.mode = NewPlayMode(anim.LoopDirection, len(anim.Frames), anim.start())
	a.frameIndex = a.mode.Frame()
	a.frameElapsedTime = 0
	a.CurrentFrame = &anim.Frames[a.frameIndex]
	a.isEnded = false
}

func (a *AnimPlayer) String() string {
	return fmt.Sprintf(debugFormat, a.CurrentAnimation.Tag,
		a.CurrentAnimation.LoopDirection,
		a.mode.Laps(),
		a.CurrentAnimation.Repeat,
		a.IsEnded(),
		a.frameIndex,
		a.frameElapsedTime,
		a.Paused)
}

// AnimFrame is a frame of an Animation.
type AnimFrame struct {
	// Image is the frame in the sprite atlas.
	Image image.Image

	// Duration retrieved from the Aseprite file
	Duration time.Duration

	// Pivot is the pivot of the first slice with a pivot, relative to the
	// frame. Zero if there is none.
	Pivot v.Vec
}

// Animation for AnimPlayer
type Animation struct {

	// The animation tag name is identical to the Aseprite file
	Tag string

	// Animation frames in file order. The player walks them in LoopDirection.
	Frames []AnimFrame

	// Repeat specifies how many times the animation should loop.
	// A value of 0 means infinite looping.
	Repeat uint16

	LoopDirection aseparser.LoopDirection

	// UserData of the tag.
	UserData *aseparser.UserData
}

func (anim *Animation) start() int {
	if anim.LoopDirection == aseparser.Reverse || anim.LoopDirection == aseparser.PingPongReverse {
		return len(anim.Frames) - 1
	}
	return 0
}

// The first Aseprite tag will be assigned as CurrentAnimation.
//
// It panics if the file cannot be read or does not have a tag.
func NewAnimPlayerFromAsepriteFileSystem(fsys fs.FS, asePath string) *AnimPlayer {
	return mustAnimPlayer(aseparser.NewAsepriteFromFileSystem(fsys, asePath))
}

// The first Aseprite tag will be assigned as CurrentAnimation.
//
// It panics if the file cannot be read or does not have a tag.
func NewAnimPlayerFromAsepriteFile(asePath string) *AnimPlayer {
	return mustAnimPlayer(aseparser.NewAsepriteFromFile(asePath))
}

func mustAnimPlayer(ase *aseparser.Aseprite) *AnimPlayer {
	s, err := NewSprite(ase, nil)
	if err != nil {
		panic(err)
	}
	ap, err := NewAnimPlayer(s)
	if err != nil {
		panic(err)
	}
	return ap
}

// NewAnimPlayer builds one Animation per tag of s. The first tag becomes
// CurrentAnimation.
func NewAnimPlayer(s *Sprite) (*AnimPlayer, error) {
	if len(s.Tags) == 0 {
		return nil, errors.New("the Aseprite file does not have a tag")
	}

	ap := &AnimPlayer{
		Animations: make(map[string]*Animation),
		Atlas:      s,
	}
	for _, tag := range s.Tags {
		if int(tag.Hi) >= len(s.Frames) || tag.Lo > tag.Hi {
			return nil, errors.Errorf("tag %q: frames %d-%d outside sprite", tag.Name, tag.Lo, tag.Hi)
		}
		frames := make([]AnimFrame, 0, tag.Hi-tag.Lo+1)
		for i := int(tag.Lo); i <= int(tag.Hi); i++ {
			pivot, _ := s.Pivot(i)
			frames = append(frames, AnimFrame{
				Image:    s.GetFrameImage(i),
				Duration: s.Frames[i].Duration,
				Pivot:    pivot,
			})
		}
		ap.Animations[tag.Name] = &Animation{
			Tag:           tag.Name,
			Frames:        frames,
			Repeat:        tag.Repeat,
			LoopDirection: tag.LoopDirection,
			UserData:      tag.UserData,
		}
	}
	ap.CurrentAnimation = ap.Animations[s.Tags[0].Name]
	ap.Rewind()
	return ap, nil
}
