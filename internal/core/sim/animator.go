package sim

// Animator plays one clip at a time and crossfades between clips.
type Animator struct {
	current string
	pending string
	fade    float64
	plays   int
}

func (a *Animator) Current() string { return a.current }

// InTransition reports whether a crossfade is in progress.
func (a *Animator) InTransition() bool { return a.pending != "" }

// CrossFade blends into clip over d seconds. A non-positive d switches at
// once.
func (a *Animator) CrossFade(clip string, d float64) {
	if d <= 0 {
		a.current, a.pending, a.fade = clip, "", 0
		return
	}
	a.pending, a.fade = clip, d
}

// Play restarts clip from its first frame.
func (a *Animator) Play(clip string) {
	a.current, a.pending, a.fade = clip, "", 0
	a.plays++
}

// Plays counts forced restarts.
func (a *Animator) Plays() int { return a.plays }

func (a *Animator) advance(dt float64) {
	if a.pending == "" {
		return
	}
	a.fade -= dt
	if a.fade <= 0 {
		a.current, a.pending, a.fade = a.pending, "", 0
	}
}

// Clip names used by the built-in trees.
const (
	ClipIdle       = "Idle"
	ClipCrouchIdle = "Crouch Idle"
	ClipWalk       = "Walk"
	ClipCrouchWalk = "Crouch Walk"
	ClipRun        = "Run"
	ClipThrow      = "Throw"
)
