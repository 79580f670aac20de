package armature

import "math"

// FABRIK defaults used by IK Constraint nodes.
const (
	DefaultIKIterations = 20
	DefaultIKTolerance  = 1e-3
)

// IKOptions configures SolveFABRIK.
type IKOptions struct {
	// Clockwise selects the side interior joints bend toward. When false
	// the chain bends counter-clockwise.
	Clockwise     bool
	MaxIterations int     // DefaultIKIterations when <= 0
	Tolerance     float64 // DefaultIKTolerance when <= 0
}

// IKResult is the outcome of SolveFABRIK.
type IKResult struct {
	Joints     []Vec2
	Iterations int
	Distance   float64 // from the end joint to the target
	Reached    bool
}

// SolveFABRIK moves the joints of a chain so its last joint reaches target
// while the first joint stays fixed and segment lengths are preserved. A
// target out of reach stretches the chain straight toward it. The input
// slice is not modified.
func SolveFABRIK(joints []Vec2, target Vec2, opts IKOptions) IKResult {
	iters := opts.MaxIterations
	if iters <= 0 {
		iters = DefaultIKIterations
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultIKTolerance
	}

	j := make([]Vec2, len(joints))
	copy(j, joints)
	res := IKResult{Joints: j}
	if len(j) < 2 {
		return res
	}

	lens := make([]float64, len(j)-1)
	var total float64
	for i := range lens {
		lens[i] = j[i].Dist(j[i+1])
		total += lens[i]
	}
	root := j[0]
	if total == 0 {
		res.Distance = root.Dist(target)
		res.Reached = res.Distance <= tol
		return res
	}

	if d := root.Dist(target); d >= total {
		dir := target.Sub(root).Scale(1 / d)
		var acc float64
		for i := 1; i < len(j); i++ {
			acc += lens[i-1]
			j[i] = root.Add(dir.Scale(acc))
		}
		res.Distance = j[len(j)-1].Dist(target)
		res.Reached = res.Distance <= tol
		return res
	}

	sign := 1.0
	if opts.Clockwise {
		sign = -1
	}
	last := len(j) - 1
	bendJoints(j, lens, sign)
	for res.Iterations = 0; res.Iterations < iters; res.Iterations++ {
		if j[last].Dist(target) <= tol {
			break
		}
		// backward: pin the end to the target
		j[last] = target
		for i := last - 1; i >= 0; i-- {
			j[i] = placeAt(j[i+1], j[i], lens[i])
		}
		// forward: pin the root back
		j[0] = root
		for i := 0; i < last; i++ {
			j[i+1] = placeAt(j[i], j[i+1], lens[i])
		}
		bendJoints(j, lens, sign)
	}
	res.Distance = j[last].Dist(target)
	res.Reached = res.Distance <= tol
	return res
}

// placeAt returns the point at distance l from anchor in the direction of p.
func placeAt(anchor, p Vec2, l float64) Vec2 {
	d := anchor.Dist(p)
	if d == 0 {
		d = 1e-9
	}
	return anchor.Add(p.Sub(anchor).Scale(l / d))
}

// bendJoints keeps every interior joint turning toward sign (positive is
// counter-clockwise). A joint on the wrong side is mirrored across the line
// joining its neighbours; a straight joint gets a small nudge so the next
// pass has a side to fold toward.
func bendJoints(j []Vec2, lens []float64, sign float64) {
	for i := 1; i < len(j)-1; i++ {
		a, b, c := j[i-1], j[i], j[i+1]
		turn := b.Sub(a).Cross(c.Sub(b))
		switch {
		case turn*sign < 0:
			ac := c.Sub(a)
			l2 := ac.X*ac.X + ac.Y*ac.Y
			if l2 < 1e-12 {
				continue
			}
			ab := b.Sub(a)
			t := (ab.X*ac.X + ab.Y*ac.Y) / l2
			foot := a.Add(ac.Scale(t))
			j[i] = foot.Scale(2).Sub(b)
		case math.Abs(turn) <= 1e-9*lens[i-1]*lens[i]:
			j[i] = a.Add(b.Sub(a).Rotate(-sign * 0.1))
		}
	}
}
