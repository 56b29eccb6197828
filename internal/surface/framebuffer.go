package surface

import (
	"fmt"
	"image"
	"image/draw"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Framebuffer draws into an offscreen panel-sized canvas and scales it onto
// a Linux framebuffer device on Flush.
type Framebuffer struct {
	dev    *fb.Device
	canvas *image.RGBA
	face   font.Face
}

// OpenFramebuffer opens the device at path, e.g. /dev/fb0.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	return newFramebuffer(dev), nil
}

func newFramebuffer(dev *fb.Device) *Framebuffer {
	return &Framebuffer{
		dev:    dev,
		canvas: image.NewRGBA(image.Rect(0, 0, Width, Height)),
		face:   basicfont.Face7x13,
	}
}

// Close releases the device.
func (f *Framebuffer) Close() error {
	if f.dev != nil {
		f.dev.Close()
	}
	return nil
}

// Image exposes the offscreen canvas.
func (f *Framebuffer) Image() *image.RGBA {
	return f.canvas
}

func (f *Framebuffer) Clear(bg Color) {
	f.FillRect(bg, Rect{0, 0, Width - 1, Height - 1})
}

func (f *Framebuffer) FillRect(c Color, r Rect) {
	rect := image.Rect(r.X0, r.Y0, r.X1+1, r.Y1+1).Intersect(f.canvas.Bounds())
	draw.Draw(f.canvas, rect, &image.Uniform{C: c.RGBA()}, image.Point{}, draw.Src)
}

func (f *Framebuffer) Line(c Color, x0, y0, x1, y1 int) {
	rgba := c.RGBA()
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		f.canvas.SetRGBA(x0, y0, rgba)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (f *Framebuffer) Text(fg, bg Color, x, y int, s string) {
	runes := []rune(s)
	if len(runes) == 0 {
		return
	}
	f.FillRect(bg, Rect{x, y, x + len(runes)*CellWidth - 1, y + CellHeight - 1})
	drawer := &font.Drawer{
		Dst:  f.canvas,
		Src:  image.NewUniform(fg.RGBA()),
		Face: f.face,
	}
	baseline := y + f.face.Metrics().Ascent.Ceil() + 2
	for i, r := range runes {
		drawer.Dot = fixed.P(x+i*CellWidth, baseline)
		drawer.DrawString(string(r))
	}
}

func (f *Framebuffer) Int(fg, bg Color, x, y, width int, zeroFill bool, v int) {
	f.Text(fg, bg, x, y, FormatInt(width, zeroFill, v))
}

func (f *Framebuffer) Float(fg, bg Color, x, y, width, frac int, v float64) {
	f.Text(fg, bg, x, y, FormatFloat(width, frac, v))
}

func (f *Framebuffer) Icon(id Icon, x, y int) {
	f.FillRect(Highlight, Rect{x, y, x + CellHeight - 1, y + CellHeight - 1})
	f.Text(BgBlack, Highlight, x+(CellHeight-CellWidth)/2, y, id.Glyph())
}

func (f *Framebuffer) Scroll(r Rect, dy int) {
	if dy == 0 {
		return
	}
	b := f.canvas.Bounds()
	rect := image.Rect(r.X0, r.Y0, r.X1+1, r.Y1+1).Intersect(b)
	width := rect.Dx() * 4
	copyRow := func(dst, src int) {
		d := f.canvas.PixOffset(rect.Min.X, dst)
		s := f.canvas.PixOffset(rect.Min.X, src)
		copy(f.canvas.Pix[d:d+width], f.canvas.Pix[s:s+width])
	}
	if dy < 0 {
		for y := rect.Min.Y; y-dy < rect.Max.Y; y++ {
			copyRow(y, y-dy)
		}
		return
	}
	for y := rect.Max.Y - 1; y-dy >= rect.Min.Y; y-- {
		copyRow(y, y-dy)
	}
}

// Flush scales the canvas onto the device.
func (f *Framebuffer) Flush() error {
	if f.dev == nil {
		return nil
	}
	xdraw.NearestNeighbor.Scale(f.dev, f.dev.Bounds(), f.canvas, f.canvas.Bounds(), xdraw.Src, nil)
	return nil
}
