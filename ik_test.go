package armature

import (
	"math"
	"testing"
)

func TestSolveFABRIKReachable(t *testing.T) {
	joints := []Vec2{{0, 0}, {0, 100}, {0, 200}}
	for _, cw := range []bool{false, true} {
		for k := range 8 {
			a := float64(k) * math.Pi / 4
			for _, d := range []float64{150, 120, 100} {
				target := Vec2{d * math.Cos(a), d * math.Sin(a)}
				res := SolveFABRIK(joints, target, IKOptions{Clockwise: cw})
				if !res.Reached {
					t.Errorf("cw=%v target %v: not reached, distance %v", cw, target, res.Distance)
				}
				assertVec(t, "root", res.Joints[0], joints[0], 1e-9)
				assertNearTol(t, "segment 0", res.Joints[0].Dist(res.Joints[1]), 100, 1e-6)
				assertNearTol(t, "segment 1", res.Joints[1].Dist(res.Joints[2]), 100, 1e-6)
			}
		}
	}
}

func TestSolveFABRIKBendSide(t *testing.T) {
	joints := []Vec2{{0, 0}, {0, 100}, {0, 200}}
	target := Vec2{150, 0}
	for _, cw := range []bool{false, true} {
		res := SolveFABRIK(joints, target, IKOptions{Clockwise: cw})
		turn := res.Joints[1].Sub(res.Joints[0]).Cross(res.Joints[2].Sub(res.Joints[1]))
		if cw && turn >= 0 {
			t.Errorf("clockwise chain turns counter-clockwise (%v)", turn)
		}
		if !cw && turn <= 0 {
			t.Errorf("counter-clockwise chain turns clockwise (%v)", turn)
		}
	}
}

func TestSolveFABRIKStraightChainStart(t *testing.T) {
	// a fully extended chain has no bend side until it is nudged
	joints := []Vec2{{0, 0}, {50, 0}, {100, 0}, {150, 0}}
	res := SolveFABRIK(joints, Vec2{0, 100}, IKOptions{})
	if !res.Reached {
		t.Errorf("not reached, distance %v after %d iterations", res.Distance, res.Iterations)
	}
}

func TestSolveFABRIKUnreachableStretches(t *testing.T) {
	joints := []Vec2{{0, 0}, {0, 100}, {0, 200}}
	res := SolveFABRIK(joints, Vec2{500, 0}, IKOptions{})
	if res.Reached || res.Iterations != 0 {
		t.Errorf("res = %+v", res)
	}
	assertVec(t, "middle", res.Joints[1], Vec2{100, 0}, 1e-9)
	assertVec(t, "end", res.Joints[2], Vec2{200, 0}, 1e-9)
	assertNearTol(t, "distance", res.Distance, 300, 1e-9)
}

func TestSolveFABRIKDoesNotModifyInput(t *testing.T) {
	joints := []Vec2{{0, 0}, {0, 100}, {0, 200}}
	_ = SolveFABRIK(joints, Vec2{120, 0}, IKOptions{})
	if joints[1] != (Vec2{0, 100}) {
		t.Errorf("input modified: %v", joints)
	}
}

func TestSolveFABRIKDegenerate(t *testing.T) {
	res := SolveFABRIK([]Vec2{{1, 1}}, Vec2{5, 5}, IKOptions{})
	if len(res.Joints) != 1 || res.Joints[0] != (Vec2{1, 1}) {
		t.Errorf("single joint = %+v", res)
	}
	res = SolveFABRIK([]Vec2{{1, 1}, {1, 1}}, Vec2{5, 5}, IKOptions{})
	if res.Reached {
		t.Error("zero-length chain cannot reach")
	}
}
