package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"sae/internal/models"
	"sae/internal/structures"

	_ "image/gif"

	_ "golang.org/x/image/webp"
)

// Compositor draws the viewer chrome onto transparent overlays and
// composes full frames for the raster fallback path.
type Compositor struct {
	fontPath string
}

func NewCompositor(conf *structures.Config) *Compositor {
	return &Compositor{fontPath: conf.Export.FontPath}
}

func (c *Compositor) setFont(dc *gg.Context, size float64) {
	if c.fontPath == "" {
		return
	}
	// Falls back to the built-in face when the configured font is
	// missing, keeping exports working on bare hosts.
	_ = dc.LoadFontFace(c.fontPath, size)
}

// RenderOverlay draws the chrome for one entry on a transparent canvas.
// The result is rendered once per entry and reused for every frame of
// its segment.
func (c *Compositor) RenderOverlay(spec OverlaySpec) (image.Image, error) {
	dc := gg.NewContext(CanvasWidth, CanvasHeight)

	cx := float64(profileX + profileSize/2)
	cy := float64(profileY + profileSize/2)
	r := float64(profileSize / 2)

	if spec.Avatar != nil {
		avatar, err := loadRefImage(spec.Avatar)
		if err == nil {
			scaled := scaleImage(avatar, profileSize, profileSize)
			dc.Push()
			dc.DrawCircle(cx, cy, r)
			dc.Clip()
			dc.DrawImage(scaled, profileX, profileY)
			dc.Pop()
		} else {
			drawPlaceholderCircle(dc, cx, cy, r)
		}
	} else {
		drawPlaceholderCircle(dc, cx, cy, r)
	}

	dc.SetLineWidth(ringWidth)
	dc.SetColor(color.White)
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()

	textX := float64(profileX+profileSize) + textGap

	c.setFont(dc, usernameFontSize)
	dc.SetRGBA(0, 0, 0, 0.8)
	dc.DrawStringAnchored(spec.Username, textX+2, cy+2, 0, 0.35)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(spec.Username, textX, cy, 0, 0.35)

	if spec.ReshareUser != "" {
		ry := float64(profileY+profileSize) + reshareOffsetY
		drawReshareIcon(dc, textX, ry)

		c.setFont(dc, reshareFontSize)
		label := "@" + spec.ReshareUser
		dc.SetRGBA(0, 0, 0, 0.8)
		dc.DrawStringAnchored(label, textX+reshareIconSize+12+2, ry+2, 0, 0.35)
		dc.SetRGBA(1, 1, 1, 0.9)
		dc.DrawStringAnchored(label, textX+reshareIconSize+12, ry, 0, 0.35)
	}

	return dc.Image(), nil
}

// ComposeFrame letterboxes the media onto a black canvas and stamps the
// overlay on top.
func (c *Compositor) ComposeFrame(media image.Image, overlay image.Image) image.Image {
	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	dc.SetColor(color.Black)
	dc.Clear()

	b := media.Bounds()
	fit := FitRect(float64(b.Dx()), float64(b.Dy()), CanvasWidth, CanvasHeight)
	scaled := scaleImage(media, int(math.Round(fit.W)), int(math.Round(fit.H)))
	dc.DrawImage(scaled, int(math.Round(fit.X)), int(math.Round(fit.Y)))

	dc.DrawImage(overlay, 0, 0)
	return dc.Image()
}

func (c *Compositor) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Compositor) EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// stampOverlay draws the overlay over an already canvas-sized frame.
func stampOverlay(frame image.Image, overlay image.Image) image.Image {
	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	dc.SetColor(color.Black)
	dc.Clear()
	dc.DrawImage(frame, 0, 0)
	dc.DrawImage(overlay, 0, 0)
	return dc.Image()
}

func drawPlaceholderCircle(dc *gg.Context, cx, cy, r float64) {
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawCircle(cx, cy, r)
	dc.Fill()
}

// drawReshareIcon strokes a small curved arrow left of the attribution
// text.
func drawReshareIcon(dc *gg.Context, x, y float64) {
	r := float64(reshareIconSize) / 2
	cx := x + r
	cy := y

	dc.SetRGBA(1, 1, 1, 0.8)
	dc.SetLineWidth(3)
	dc.DrawArc(cx, cy, r, math.Pi*0.25, math.Pi*1.5)
	dc.Stroke()

	// Arrowhead at the end of the arc.
	tipX := cx + r*math.Cos(math.Pi*0.25)
	tipY := cy + r*math.Sin(math.Pi*0.25)
	dc.DrawLine(tipX, tipY, tipX-6, tipY-2)
	dc.Stroke()
	dc.DrawLine(tipX, tipY, tipX+2, tipY-7)
	dc.Stroke()
}

func scaleImage(src image.Image, w, h int) image.Image {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func loadRefImage(ref models.ContentRef) (image.Image, error) {
	rc, err := ref.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ref.RelPath(), err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.RelPath(), err)
	}
	return img, nil
}
