package armature

import (
	"fmt"
	"strings"

	"github.com/tanema/gween/ease"
)

// Easing selects a curve that warps interpolation progress in [0, 1]. The
// numeric values are stable and are what project files store.
type Easing uint8

const (
	EaseLinear     Easing = iota // identity
	EaseCircleIn                 // circular, slow start
	EaseCircleOut                // circular, slow end
	EaseCircle                   // circular, slow start and end
	EaseBounce                   // bounces at both ends
	EaseBounceIn                 // bounces at the start
	EaseBounceOut                // bounces at the end
	EaseElastic                  // springs at both ends
	EaseElasticIn                // springs at the start
	EaseElasticOut               // springs at the end
	EaseFade                     // smootherstep
	EaseSwingIn                  // pulls back before starting
	EaseSwingOut                 // overshoots before settling
	EaseSwing                    // pulls back and overshoots
	EaseQuadIn
	EaseQuadOut
	EaseQuadInOut
	EaseCubicIn
	EaseCubicOut
	EaseCubicInOut
	EaseSineIn
	EaseSineOut
	EaseSineInOut
	EaseExpoIn
	EaseExpoOut
	EaseExpoInOut

	easingCount
)

var easingFuncs = [easingCount]ease.TweenFunc{
	EaseLinear:     ease.Linear,
	EaseCircleIn:   ease.InCirc,
	EaseCircleOut:  ease.OutCirc,
	EaseCircle:     ease.InOutCirc,
	EaseBounce:     ease.InOutBounce,
	EaseBounceIn:   ease.InBounce,
	EaseBounceOut:  ease.OutBounce,
	EaseElastic:    ease.InOutElastic,
	EaseElasticIn:  ease.InElastic,
	EaseElasticOut: ease.OutElastic,
	EaseFade:       fade,
	EaseSwingIn:    ease.InBack,
	EaseSwingOut:   ease.OutBack,
	EaseSwing:      ease.InOutBack,
	EaseQuadIn:     ease.InQuad,
	EaseQuadOut:    ease.OutQuad,
	EaseQuadInOut:  ease.InOutQuad,
	EaseCubicIn:    ease.InCubic,
	EaseCubicOut:   ease.OutCubic,
	EaseCubicInOut: ease.InOutCubic,
	EaseSineIn:     ease.InSine,
	EaseSineOut:    ease.OutSine,
	EaseSineInOut:  ease.InOutSine,
	EaseExpoIn:     ease.InExpo,
	EaseExpoOut:    ease.OutExpo,
	EaseExpoInOut:  ease.InOutExpo,
}

var easingNames = [easingCount]string{
	EaseLinear:     "linear",
	EaseCircleIn:   "circleIn",
	EaseCircleOut:  "circleOut",
	EaseCircle:     "circle",
	EaseBounce:     "bounce",
	EaseBounceIn:   "bounceIn",
	EaseBounceOut:  "bounceOut",
	EaseElastic:    "elastic",
	EaseElasticIn:  "elasticIn",
	EaseElasticOut: "elasticOut",
	EaseFade:       "fade",
	EaseSwingIn:    "swingIn",
	EaseSwingOut:   "swingOut",
	EaseSwing:      "swing",
	EaseQuadIn:     "quadIn",
	EaseQuadOut:    "quadOut",
	EaseQuadInOut:  "quadInOut",
	EaseCubicIn:    "cubicIn",
	EaseCubicOut:   "cubicOut",
	EaseCubicInOut: "cubicInOut",
	EaseSineIn:     "sineIn",
	EaseSineOut:    "sineOut",
	EaseSineInOut:  "sineInOut",
	EaseExpoIn:     "expoIn",
	EaseExpoOut:    "expoOut",
	EaseExpoInOut:  "expoInOut",
}

// fade is Ken Perlin's smootherstep, shaped as a gween tween function.
func fade(t, b, c, d float32) float32 {
	t /= d
	return c*t*t*t*(t*(t*6-15)+10) + b
}

// Apply warps u through the curve. u is clamped to [0, 1] first; the end
// points map to exactly 0 and 1. Unknown values behave like EaseLinear.
// EaseLinear is exact; the other curves are computed by gween in float32,
// so their results carry about seven significant digits.
func (e Easing) Apply(u float64) float64 {
	u = clamp01(u)
	if u == 0 || u == 1 {
		return u
	}
	if e == EaseLinear || e >= easingCount {
		return u
	}
	return float64(easingFuncs[e](float32(u), 0, 1, 1))
}

// Valid reports whether e names a known curve.
func (e Easing) Valid() bool { return e < easingCount }

func (e Easing) String() string {
	if e >= easingCount {
		return fmt.Sprintf("Easing(%d)", uint8(e))
	}
	return easingNames[e]
}

// ParseEasing resolves a curve by name, case-insensitively.
func ParseEasing(name string) (Easing, error) {
	for i, n := range easingNames {
		if strings.EqualFold(n, name) {
			return Easing(i), nil
		}
	}
	return EaseLinear, fmt.Errorf("armature: unknown easing %q", name)
}

// Easings returns every known curve in id order.
func Easings() []Easing {
	out := make([]Easing, easingCount)
	for i := range out {
		out[i] = Easing(i)
	}
	return out
}

// EasingByID converts a stored numeric id back to a curve.
func EasingByID(id int) (Easing, error) {
	if id < 0 || id >= int(easingCount) {
		return EaseLinear, fmt.Errorf("armature: unknown easing id %d", id)
	}
	return Easing(id), nil
}
