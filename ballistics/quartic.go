// Package ballistics predicts where to aim a gravity-affected projectile so
// that it meets a moving target.
package ballistics

import (
	"math"
	"math/cmplx"
)

// SolveQuartic returns the four complex roots of
// c4·t⁴ + c3·t³ + c2·t² + c1·t + c0 using Ferrari's method through the
// resolvent cubic. c4 must be non-zero; otherwise every root is NaN.
func SolveQuartic(c4, c3, c2, c1, c0 float64) [4]complex128 {
	nan := cmplx.NaN()
	if c4 == 0 {
		return [4]complex128{nan, nan, nan, nan}
	}

	b := complex(c3/c4, 0)
	c := complex(c2/c4, 0)
	d := complex(c1/c4, 0)
	e := complex(c0/c4, 0)

	q1 := c*c - 3*b*d + 12*e
	q2 := 2*c*c*c - 9*b*c*d + 27*d*d + 27*b*b*e - 72*c*e
	q3 := 8*b*c - 16*d - 2*b*b*b
	q4 := 3*b*b - 8*c

	disc := cmplx.Sqrt(q2*q2/4 - q1*q1*q1)
	q5 := cbrt(q2/2 + disc)
	if q5 == 0 {
		q5 = cbrt(q2/2 - disc)
	}

	// Any cube root gives a root of the resolvent. Take the one that keeps
	// q7 furthest from zero; q7 = 0 would lose the q3/q7 term.
	var q6, q7 complex128
	if q5 == 0 {
		q7 = 2 * cmplx.Sqrt(q4/12)
	} else {
		rot := complex(-0.5, math.Sqrt(3)/2)
		for k := 0; k < 3; k++ {
			y := (q1/q5 + q5) / 3
			w := 2 * cmplx.Sqrt(q4/12+y)
			if k == 0 || cmplx.Abs(w) > cmplx.Abs(q7) {
				q6, q7 = y, w
			}
			q5 *= rot
		}
	}

	var skew complex128
	if cmplx.Abs(q7) > 1e-12 {
		skew = q3 / q7
	}

	lo := cmplx.Sqrt(4*q4/6 - 4*q6 - skew)
	hi := cmplx.Sqrt(4*q4/6 - 4*q6 + skew)

	roots := [4]complex128{
		(-b - q7 - lo) / 4,
		(-b - q7 + lo) / 4,
		(-b + q7 - hi) / 4,
		(-b + q7 + hi) / 4,
	}

	for i := range roots {
		roots[i] = polish(roots[i], c4, c3, c2, c1, c0)
	}
	return roots
}

func cbrt(z complex128) complex128 {
	if z == 0 {
		return 0
	}
	return cmplx.Pow(z, 1.0/3)
}

// polish runs a few Newton steps on the original polynomial to recover the
// precision the closed form loses to cancellation.
func polish(z complex128, c4, c3, c2, c1, c0 float64) complex128 {
	if cmplx.IsNaN(z) || cmplx.IsInf(z) {
		return z
	}
	a4, a3, a2, a1, a0 := complex(c4, 0), complex(c3, 0), complex(c2, 0), complex(c1, 0), complex(c0, 0)
	for i := 0; i < 3; i++ {
		p := (((a4*z+a3)*z+a2)*z+a1)*z + a0
		dp := ((4*a4*z+3*a3)*z+2*a2)*z + a1
		if dp == 0 {
			break
		}
		next := z - p/dp
		if cmplx.IsNaN(next) || cmplx.IsInf(next) {
			break
		}
		z = next
	}
	return z
}

// SmallestPositiveReal picks the smallest root with a positive real part and
// an imaginary part within tol of zero. Among equally good candidates the
// smaller real part wins, which makes the choice deterministic.
func SmallestPositiveReal(roots [4]complex128, tol float64) (float64, bool) {
	best := math.Inf(1)
	for _, r := range roots {
		re, im := real(r), imag(r)
		if re > 0 && math.Abs(im) < tol && re < best {
			best = re
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}
