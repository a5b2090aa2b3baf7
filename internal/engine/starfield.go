package engine

import (
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
)

// starfieldSeed keeps the backdrop identical across rebuilds so resizes and
// zoom changes do not make the stars jump.
const starfieldSeed = 1969

const starsPerMegapixel = 450

// ensureBackground rebuilds the cached starfield texture when the screen
// size changed. The texture is written once and blitted every frame.
func (a *App) ensureBackground() {
	if !a.bgDirty && a.background != nil {
		return
	}
	if a.width <= 0 || a.height <= 0 {
		return
	}

	w, h := a.width, a.height
	pix := make([]byte, 4*w*h)
	// Near-black blue base.
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = 2
		pix[i+1] = 3
		pix[i+2] = 8
		pix[i+3] = 255
	}

	rng := rand.New(rand.NewSource(starfieldSeed))
	n := w * h * starsPerMegapixel / 1_000_000
	for i := 0; i < n; i++ {
		x := rng.Intn(w)
		y := rng.Intn(h)
		// Mostly faint stars with a few bright ones.
		v := byte(60 + rng.Intn(120))
		if rng.Intn(12) == 0 {
			v = 255
		}
		o := 4 * (y*w + x)
		pix[o+0] = v
		pix[o+1] = v
		pix[o+2] = v
	}

	if a.background == nil || a.background.Bounds().Dx() != w || a.background.Bounds().Dy() != h {
		a.background = ebiten.NewImage(w, h)
	}
	a.background.WritePixels(pix)
	a.bgDirty = false
}
