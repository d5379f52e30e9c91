package sdfx

import (
	"errors"
	"math"

	"github.com/chazu/tenon/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
)

// meshSDF lifts a closed triangle mesh to a signed distance field so sdfx
// CSG operators can combine arbitrary meshes, not just parametric SDFs.
//
// Distance: exact unsigned distance to the nearest triangle, found with an
// R-tree (k-nearest candidates, then an exact search within that radius).
// Sign: ray-crossing parity along +X. Requires a closed mesh; an open mesh
// produces undefined sign near its boundary, which is the accepted bar for
// intermediate boolean inputs.
type meshSDF struct {
	tree *rtreego.Rtree
	bb   sdf.Box3
	// ray length and slab half-width for the parity test
	rayEnd  float64
	slabPad float64
}

// Compile-time interface check.
var _ sdf.SDF3 = (*meshSDF)(nil)

// nearCandidates is how many nearest triangles seed the distance search.
const nearCandidates = 8

// meshTri is one triangle indexed in the R-tree.
type meshTri struct {
	a, b, c [3]float64
	rect    rtreego.Rect
}

func (t *meshTri) Bounds() rtreego.Rect { return t.rect }

// newMeshSDF builds a signed distance field over a non-empty closed mesh.
func newMeshSDF(m *kernel.Mesh) (sdf.SDF3, error) {
	if m == nil || m.IsEmpty() {
		return nil, errors.New("cannot lift an empty mesh to a distance field")
	}

	tree := rtreego.NewTree(3, 25, 50)
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		rect, err := triRect(a, b, c)
		if err != nil {
			return nil, err
		}
		tree.Insert(&meshTri{a: a, b: b, c: c, rect: rect})
	}

	min, max := kernel.Bounds(m)
	// Pad the box so marching cubes samples strictly enclose the surface.
	// The odd fraction keeps grid planes off the mesh's own planes.
	extent := math.Max(max[0]-min[0], math.Max(max[1]-min[1], max[2]-min[2]))
	pad := extent*0.021 + 0.05

	return &meshSDF{
		tree: tree,
		bb: sdf.Box3{
			Min: v3.Vec{X: min[0] - pad, Y: min[1] - pad, Z: min[2] - pad},
			Max: v3.Vec{X: max[0] + pad, Y: max[1] + pad, Z: max[2] + pad},
		},
		rayEnd:  max[0] + pad + 1,
		slabPad: extent*1e-5 + 1e-9,
	}, nil
}

// BoundingBox returns the padded axis-aligned bounds of the mesh.
func (s *meshSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// Evaluate returns the signed distance from p to the mesh surface,
// negative inside.
func (s *meshSDF) Evaluate(p v3.Vec) float64 {
	q := [3]float64{p.X, p.Y, p.Z}

	// Seed with the k nearest triangles by bounding rect.
	best := math.Inf(1)
	for _, sp := range s.tree.NearestNeighbors(nearCandidates, rtreego.Point{q[0], q[1], q[2]}) {
		tri := sp.(*meshTri)
		if d := pointTriDist(q, tri.a, tri.b, tri.c); d < best {
			best = d
		}
	}

	// Any triangle closer than best must intersect the box of half-width
	// best around p; refine against those for the exact minimum.
	if !math.IsInf(best, 1) && best > 0 {
		if rect, err := rtreego.NewRect(
			rtreego.Point{q[0] - best, q[1] - best, q[2] - best},
			[]float64{2 * best, 2 * best, 2 * best},
		); err == nil {
			for _, sp := range s.tree.SearchIntersect(rect) {
				tri := sp.(*meshTri)
				if d := pointTriDist(q, tri.a, tri.b, tri.c); d < best {
					best = d
				}
			}
		}
	}

	if s.inside(q) {
		return -best
	}
	return best
}

// inside reports whether q is interior by parity of ray crossings along +X.
func (s *meshSDF) inside(q [3]float64) bool {
	length := s.rayEnd - q[0]
	if length <= 0 {
		return false
	}
	pad := s.slabPad
	rect, err := rtreego.NewRect(
		rtreego.Point{q[0], q[1] - pad, q[2] - pad},
		[]float64{length, 2 * pad, 2 * pad},
	)
	if err != nil {
		return false
	}

	// Slightly tilted ray direction to dodge exact edge and vertex hits.
	dir := [3]float64{1, 7.3e-7, 3.1e-7}

	crossings := 0
	for _, sp := range s.tree.SearchIntersect(rect) {
		tri := sp.(*meshTri)
		if t, hit := rayTri(q, dir, tri.a, tri.b, tri.c); hit && t > 0 {
			crossings++
		}
	}
	return crossings%2 == 1
}

// triRect returns the axis-aligned R-tree rect of a triangle. Degenerate
// extents are widened so the rect stays valid.
func triRect(a, b, c [3]float64) (rtreego.Rect, error) {
	var lo, hi [3]float64
	for i := 0; i < 3; i++ {
		lo[i] = math.Min(a[i], math.Min(b[i], c[i]))
		hi[i] = math.Max(a[i], math.Max(b[i], c[i]))
	}
	const eps = 1e-9
	lengths := make([]float64, 3)
	for i := 0; i < 3; i++ {
		lengths[i] = hi[i] - lo[i]
		if lengths[i] < eps {
			lengths[i] = eps
		}
	}
	return rtreego.NewRect(rtreego.Point{lo[0], lo[1], lo[2]}, lengths)
}

// pointTriDist returns the distance from p to triangle (a, b, c).
// Closest-point-on-triangle after Ericson, "Real-Time Collision Detection".
func pointTriDist(p, a, b, c [3]float64) float64 {
	ab := sub(b, a)
	ac := sub(c, a)
	ap := sub(p, a)

	d1 := dot(ab, ap)
	d2 := dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return norm(ap) // vertex a
	}

	bp := sub(p, b)
	d3 := dot(ab, bp)
	d4 := dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return norm(bp) // vertex b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return norm(sub(p, add(a, scale(ab, v)))) // edge ab
	}

	cp := sub(p, c)
	d5 := dot(ab, cp)
	d6 := dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return norm(cp) // vertex c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return norm(sub(p, add(a, scale(ac, w)))) // edge ac
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return norm(sub(p, add(b, scale(sub(c, b), w)))) // edge bc
	}

	// Interior: project onto the triangle plane.
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	closest := add(a, add(scale(ab, v), scale(ac, w)))
	return norm(sub(p, closest))
}

// rayTri is the Moller-Trumbore ray/triangle intersection test.
func rayTri(orig, dir, a, b, c [3]float64) (float64, bool) {
	const eps = 1e-12

	e1 := sub(b, a)
	e2 := sub(c, a)
	pvec := cross(dir, e2)
	det := dot(e1, pvec)
	if det > -eps && det < eps {
		return 0, false // parallel
	}
	inv := 1 / det

	tvec := sub(orig, a)
	u := dot(tvec, pvec) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := cross(tvec, e1)
	v := dot(dir, qvec) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := dot(e2, qvec) * inv
	return t, true
}

func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}
func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
func norm(a [3]float64) float64 { return math.Sqrt(dot(a, a)) }
