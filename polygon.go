// polygon.go - Polygon resource parser and rasterizer

package vm

import "sort"

// maxPolygonVertices is the largest vertex count a single colored polygon
// may declare, per spec.md §4.5.
const maxPolygonVertices = 50

// Point is a transformed, absolute screen coordinate.
type Point struct {
	X, Y int
}

// LeafPolygon is a single colored polygon with its final, transformed
// vertex list, ready to rasterize.
type LeafPolygon struct {
	Color  byte
	Width  int
	Height int
	Points []Point
}

// PolygonVisitor receives each leaf polygon IteratePolygons reaches, with
// coordinates already transformed into the caller's origin/scale.
type PolygonVisitor func(LeafPolygon)

// polygonGroupFlag marks a primitive header as a group; leaf when clear.
const polygonGroupFlag = 0x80

// IteratePolygons recursively walks the primitive tree rooted at address
// within resource, transforming every leaf polygon's vertices by scale
// (scale/64, 64 == 1x) and the accumulated origin, per spec.md §4.5.
func IteratePolygons(resource []byte, address int, origin Point, scale int, visit PolygonVisitor) error {
	if address < 0 || address >= len(resource) {
		return ErrInvalidAddress
	}
	header := resource[address]
	if header&polygonGroupFlag != 0 {
		return iterateGroup(resource, address, origin, scale, visit)
	}
	return iterateLeaf(resource, address, origin, scale, visit)
}

func scalePoint(x, y, scale int) (int, int) {
	return x * scale / 64, y * scale / 64
}

func iterateLeaf(resource []byte, address int, origin Point, scale int, visit PolygonVisitor) error {
	need := address + 5
	if need > len(resource) {
		return ErrInvalidPolygonData
	}
	color := resource[address+1]
	width := int(resource[address+2])
	height := int(resource[address+3])
	count := int(resource[address+4])
	if count > maxPolygonVertices {
		return ErrInvalidPolygonData
	}
	pointsStart := address + 5
	if pointsStart+count*2 > len(resource) {
		return ErrInvalidPolygonData
	}

	points := make([]Point, count)
	for i := 0; i < count; i++ {
		px := int(resource[pointsStart+i*2])
		py := int(resource[pointsStart+i*2+1])
		sx, sy := scalePoint(px, py, scale)
		points[i] = Point{X: origin.X + sx, Y: origin.Y + sy}
	}
	sw, sh := scalePoint(width, height, scale)
	visit(LeafPolygon{Color: color, Width: sw, Height: sh, Points: points})
	return nil
}

func iterateGroup(resource []byte, address int, origin Point, scale int, visit PolygonVisitor) error {
	need := address + 3
	if need > len(resource) {
		return ErrInvalidPolygonData
	}
	count := int(resource[address+2])
	entryStart := address + 3
	for i := 0; i < count; i++ {
		off := entryStart + i*4
		if off+4 > len(resource) {
			return ErrInvalidPolygonData
		}
		subOffset := int(resource[off])<<8 | int(resource[off+1])
		x := int(resource[off+2])
		y := int(resource[off+3])
		sx, sy := scalePoint(x, y, scale)
		childOrigin := Point{X: origin.X + sx, Y: origin.Y + sy}
		if err := IteratePolygons(resource, subOffset, childOrigin, scale, visit); err != nil {
			return err
		}
	}
	return nil
}

// Rasterize draws a leaf polygon into target's current buffer using mode.
// Degenerate (0x0) bounding boxes draw as a single dot; boxes at most one
// pixel tall draw as a horizontal span; everything else scanline-fills
// the polygon outline with the even-odd rule. All draws clip silently to
// the 320x200 bounds.
func Rasterize(target *VideoModel, poly LeafPolygon, mode DrawMode) {
	if len(poly.Points) == 0 {
		return
	}
	if poly.Width == 0 && poly.Height == 0 {
		p := poly.Points[0]
		target.drawDot(p.X, p.Y, mode)
		return
	}
	if poly.Height <= 1 {
		minX, maxX, y := poly.Points[0].X, poly.Points[0].X, poly.Points[0].Y
		for _, p := range poly.Points {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
		}
		target.drawSpan(minX, maxX, y, mode)
		return
	}

	minY, maxY := poly.Points[0].Y, poly.Points[0].Y
	for _, p := range poly.Points {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	n := len(poly.Points)
	for y := minY; y <= maxY; y++ {
		var xs []int
		for i := 0; i < n; i++ {
			a, b := poly.Points[i], poly.Points[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			lo, hi := a, b
			if lo.Y > hi.Y {
				lo, hi = hi, lo
			}
			if y < lo.Y || y >= hi.Y {
				continue
			}
			t := float64(y-lo.Y) / float64(hi.Y-lo.Y)
			xs = append(xs, lo.X+int(t*float64(hi.X-lo.X)))
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x1, x2 := xs[i], xs[i+1]
			if x1 > x2 {
				x1, x2 = x2, x1
			}
			target.drawSpan(x1, x2, y, mode)
		}
	}
}
