package export

import (
	"sae/internal/archive"
	"sae/internal/models"
)

// Canvas geometry is fixed to the story portrait format. The overlay
// constants mirror the viewer chrome: an 80px avatar circle at (40,60)
// with a 4px white ring, the username to its right, and an optional
// attribution line 40px below.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1920

	profileSize = 80
	profileX    = 40
	profileY    = 60
	ringWidth   = 4

	textGap          = 20
	usernameFontSize = 36
	reshareFontSize  = 30
	reshareOffsetY   = 40
	reshareIconSize  = 24

	// Image entries render as a fixed-length clip.
	ImageClipSeconds = 6

	captureFPS = 30
)

// Rect is a placement inside the canvas.
type Rect struct {
	X, Y, W, H float64
}

// FitRect scales (srcW, srcH) to fit the canvas preserving aspect
// ratio, centered: letterboxed when wider, pillarboxed when taller.
// Never cropped.
func FitRect(srcW, srcH, dstW, dstH float64) Rect {
	if srcW <= 0 || srcH <= 0 {
		return Rect{X: 0, Y: 0, W: dstW, H: dstH}
	}

	srcRatio := srcW / srcH
	dstRatio := dstW / dstH

	var r Rect
	if srcRatio > dstRatio {
		r.W = dstW
		r.H = dstW / srcRatio
		r.X = 0
		r.Y = (dstH - r.H) / 2
	} else {
		r.W = dstH * srcRatio
		r.H = dstH
		r.X = (dstW - r.W) / 2
		r.Y = 0
	}
	return r
}

// OverlaySpec is everything the compositor needs to draw the chrome for
// one entry. A nil Avatar means the deterministic placeholder circle.
type OverlaySpec struct {
	Username    string
	ReshareUser string
	Avatar      models.ContentRef
}

// BuildOverlaySpec resolves the avatar through the matcher chain and
// carries the attribution only when the entry has one.
func BuildOverlaySpec(entry *models.MediaEntry, avatars *models.AvatarSet) OverlaySpec {
	spec := OverlaySpec{Username: entry.Username}
	if ref, ok := archive.ResolveAvatar(entry.Username, avatars); ok {
		spec.Avatar = ref
	}
	if entry.ReshareInfo != nil {
		spec.ReshareUser = entry.ReshareInfo.OriginalUser
	}
	return spec
}
