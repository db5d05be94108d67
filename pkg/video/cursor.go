package video

import (
	"image"
	"image/color"
)

// cursorReferenceWidth is the surface width at which the cursor renders at
// full scale; other widths scale proportionally so the cursor stays the
// same apparent size regardless of stream resolution.
const cursorReferenceWidth = 1920.0

// cursorState is the last known pointer position in normalized [0,1]
// coordinates.
type cursorState struct {
	X       float64
	Y       float64
	Visible bool
}

// cursorOutline is the arrow shape in a 16x24 reference box, as an
// even-odd-filled polygon.
var cursorOutline = [][2]float64{
	{0, 0},
	{0, 21},
	{5.5, 16.5},
	{9, 24},
	{12, 22.5},
	{8.5, 15.5},
	{15, 15},
}

// drawCursor composites the synthetic arrow onto dst at the cursor's
// normalized position, scaled by dst width against the reference width.
func drawCursor(dst *image.RGBA, cur cursorState) {
	if !cur.Visible {
		return
	}

	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	scale := float64(w) / cursorReferenceWidth
	ox := float64(b.Min.X) + cur.X*float64(w)
	oy := float64(b.Min.Y) + cur.Y*float64(h)

	// Scaled polygon in destination space.
	pts := make([][2]float64, len(cursorOutline))
	maxX, maxY := ox, oy
	for i, p := range cursorOutline {
		pts[i] = [2]float64{ox + p[0]*scale, oy + p[1]*scale}
		if pts[i][0] > maxX {
			maxX = pts[i][0]
		}
		if pts[i][1] > maxY {
			maxY = pts[i][1]
		}
	}

	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	for y := int(oy); y <= int(maxY)+1; y++ {
		for x := int(ox); x <= int(maxX)+1; x++ {
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if !pointInPolygon(fx, fy, pts) {
				continue
			}
			// Border pixels are black, interior white, so the
			// arrow reads against any background.
			if onPolygonEdge(fx, fy, pts, 1+scale) {
				dst.SetRGBA(x, y, black)
			} else {
				dst.SetRGBA(x, y, white)
			}
		}
	}
}

// pointInPolygon tests (x, y) against a polygon by ray casting.
func pointInPolygon(x, y float64, pts [][2]float64) bool {
	inside := false
	n := len(pts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := pts[i][0], pts[i][1]
		xj, yj := pts[j][0], pts[j][1]
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// onPolygonEdge reports whether (x, y) lies within dist of any polygon edge.
func onPolygonEdge(x, y float64, pts [][2]float64, dist float64) bool {
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if pointSegmentDistSq(x, y, pts[i], pts[j]) <= dist*dist {
			return true
		}
	}
	return false
}

// pointSegmentDistSq returns the squared distance from (x, y) to segment ab.
func pointSegmentDistSq(x, y float64, a, b [2]float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((x-a[0])*dx + (y-a[1])*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	px, py := a[0]+t*dx, a[1]+t*dy
	return (x-px)*(x-px) + (y-py)*(y-py)
}
