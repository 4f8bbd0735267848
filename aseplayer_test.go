package asefile

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/setanarut/asefile/aseparser"
	"github.com/setanarut/asefile/internal/asetest"
	"github.com/setanarut/asefile/internal/require"
)

const (
	tagFly    = "fly"
	tagSubFly = "sub_fly"
)

func newPlayer(t *testing.T) *AnimPlayer {
	t.Helper()
	s, err := NewSprite(parse(t, playerFile()), nil)
	require.NoError(t, err)
	ap, err := NewAnimPlayer(s)
	require.NoError(t, err)
	return ap
}

func TestAnimationWorkflow(t *testing.T) {
	ase := newPlayer(t)

	// 1. tags
	t.Run("Check Tags", func(t *testing.T) {
		anim1 := ase.Animations[tagFly]
		anim2 := ase.Animations[tagSubFly]
		if anim1 == nil || anim2 == nil {
			t.Fatal("Tags missing")
		}
		if ase.CurrentAnimation != anim1 {
			t.Errorf("first tag is not current")
		}
		if anim1.UserData == nil || anim1.UserData.Text != "flying" {
			t.Errorf("tag user data missing")
		}
	})

	// 2. frame pointers
	t.Run("Frame Image Pointers", func(t *testing.T) {
		if ase.Animations[tagFly].Frames[2].Image != ase.Animations[tagSubFly].Frames[0].Image {
			t.Errorf("Sub-tag images are not equal!")
		}
	})

	// 3. Durations
	t.Run("Durations", func(t *testing.T) {
		want := 100 * time.Millisecond
		dur := ase.Animations[tagSubFly].Frames[0].Duration
		if dur != want {
			t.Errorf("Duration is wrong! Got %v, want %v", dur, want)
		}

		dur = ase.Animations[tagFly].Frames[0].Duration
		want = 62 * time.Millisecond
		if dur != want {
			t.Errorf("Duration is wrong! Got %v, want %v", dur, want)
		}
	})
}

func TestAnimPlayerUpdate(t *testing.T) {
	ap := newPlayer(t)
	fly := ap.Animations[tagFly]

	ap.Update(62 * time.Millisecond)
	require.True(t, ap.CurrentFrame == &fly.Frames[1], "frame 1 after the first duration")
	ap.Update(61 * time.Millisecond)
	require.True(t, ap.CurrentFrame == &fly.Frames[1], "frame 1 before the second duration")
	ap.Update(time.Millisecond)
	require.True(t, ap.CurrentFrame == &fly.Frames[2], "frame 2 after the second duration")

	ap.Paused = true
	ap.Update(time.Second)
	require.True(t, ap.CurrentFrame == &fly.Frames[2], "paused player advanced")
	ap.Paused = false

	ap.Update(100 * time.Millisecond)
	ap.Update(100 * time.Millisecond)
	require.True(t, ap.CurrentFrame == &fly.Frames[0], "forward animation wraps")
	require.True(t, !ap.IsEnded(), "infinite animation ended")

	for range 3 {
		ap.Update(Delta)
	}
	require.True(t, ap.CurrentFrame == &fly.Frames[0], "three ticks are shorter than 62ms")
	ap.Update(Delta)
	require.True(t, ap.CurrentFrame == &fly.Frames[1], "four ticks are longer than 62ms")
}

func TestAnimPlayerDirections(t *testing.T) {
	ap := newPlayer(t)

	require.NoError(t, ap.Play("back"))
	back := ap.CurrentAnimation
	require.True(t, ap.CurrentFrame == &back.Frames[2], "reverse starts at the last frame")
	ap.Update(100 * time.Millisecond)
	require.True(t, ap.CurrentFrame == &back.Frames[1], "reverse steps backward")

	require.NoError(t, ap.Play(tagSubFly))
	sub := ap.CurrentAnimation
	var got []int
	for range 4 {
		ap.Update(100 * time.Millisecond)
		for i := range sub.Frames {
			if ap.CurrentFrame == &sub.Frames[i] {
				got = append(got, i)
			}
		}
	}
	require.Equal(t, got, []int{1, 1, 0, 0})
}

func TestAnimPlayerRepeat(t *testing.T) {
	ap := newPlayer(t)
	require.NoError(t, ap.Play("once"))
	once := ap.CurrentAnimation

	ap.Update(62 * time.Millisecond)
	require.True(t, ap.CurrentFrame == &once.Frames[1], "frame 1")
	ap.Update(62 * time.Millisecond)
	require.True(t, ap.IsEnded(), "animation did not end")
	require.True(t, ap.CurrentFrame == &once.Frames[1], "ended animation holds its last frame")
	ap.Update(time.Second)
	require.True(t, ap.CurrentFrame == &once.Frames[1], "ended animation advanced")

	ap.Rewind()
	require.True(t, !ap.IsEnded(), "rewind keeps the animation ended")
	require.True(t, ap.CurrentFrame == &once.Frames[0], "rewind")
}

func TestAnimPlayerPlay(t *testing.T) {
	ap := newPlayer(t)

	err := ap.Play("missing")
	require.ErrorIs(t, err, aseparser.ErrUnknownTagReference)
	require.Equal(t, ap.CurrentAnimation.Tag, tagFly)

	ap.Update(62 * time.Millisecond)
	require.NoError(t, ap.PlayIfNotCurrent(tagFly))
	require.True(t, ap.CurrentFrame == &ap.CurrentAnimation.Frames[1], "PlayIfNotCurrent rewound the current tag")
	require.NoError(t, ap.PlayIfNotCurrent(tagSubFly))
	require.Equal(t, ap.CurrentAnimation.Tag, tagSubFly)

	require.True(t, strings.HasPrefix(ap.String(), "Tag: sub_fly\n"), ap.String())
}

func TestNewAnimPlayerWithoutTags(t *testing.T) {
	s, err := NewSprite(parse(t, rgbaFile(1, 1, asetest.Frame(100, layer(visible, "a")))), nil)
	require.NoError(t, err)
	_, err = NewAnimPlayer(s)
	require.True(t, err != nil, "sprite without tags")
}

func TestNewAnimPlayerFromAsepriteFileSystem(t *testing.T) {
	fsys := fstest.MapFS{
		"bird.ase": &fstest.MapFile{Data: playerFile()},
		"bad.ase":  &fstest.MapFile{Data: []byte("not aseprite")},
	}

	ap := NewAnimPlayerFromAsepriteFileSystem(fsys, "bird.ase")
	require.Equal(t, len(ap.Animations), 4)
	require.Equal(t, ap.CurrentAnimation.Tag, tagFly)

	defer func() {
		require.True(t, recover() != nil, "bad file did not panic")
	}()
	NewAnimPlayerFromAsepriteFileSystem(fsys, "bad.ase")
}
