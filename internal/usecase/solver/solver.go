// Package solver implements a one-dimensional root finder: Newton-Raphson
// with a numerically-estimated derivative, falling back to bisection over a
// bounded interval when Newton fails to make progress. It knows nothing
// about cash flows so its convergence behavior can be tested against
// synthetic functions
package solver

import (
	"math"
)

// Options configures a root search
type Options struct {
	Tolerance     float64 // |f(x)| below this counts as a root
	MaxIterations int
	BracketLow    float64 // bisection fallback interval
	BracketHigh   float64
}

// DefaultOptions are the engine defaults: currency-unit tolerance 1e-6,
// 100 Newton iterations, bisection bracket of -99% to +500%
func DefaultOptions() Options {
	return Options{
		Tolerance:     1e-6,
		MaxIterations: 100,
		BracketLow:    -0.99,
		BracketHigh:   5.0,
	}
}

// Result reports the outcome of a root search. Converged false means no
// root was found within tolerance; Root is meaningless in that case and
// callers must treat the value as undefined
type Result struct {
	Root       float64
	Converged  bool
	Iterations int
}

// bisection scan granularity when the bracket endpoints share a sign
const bracketScanSteps = 64

// Solve finds x with |f(x)| < tolerance, starting Newton-Raphson at seed.
// Newton aborts to bisection when the numeric derivative collapses, an
// iterate leaves the bracket, or the iteration cap is hit without
// convergence. Bisection needs a sign change somewhere in the bracket; if
// none exists the search reports non-convergence
func Solve(f func(float64) float64, seed float64, opts Options) Result {
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100
	}
	if opts.BracketHigh <= opts.BracketLow {
		opts.BracketLow, opts.BracketHigh = -0.99, 5.0
	}

	if result, ok := newton(f, seed, opts); ok {
		return result
	}
	return bisect(f, opts)
}

func newton(f func(float64) float64, seed float64, opts Options) (Result, bool) {
	x := seed
	for i := 1; i <= opts.MaxIterations; i++ {
		fx := f(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			return Result{}, false
		}
		if math.Abs(fx) < opts.Tolerance {
			return Result{Root: x, Converged: true, Iterations: i}, true
		}

		d := derivative(f, x)
		if math.IsNaN(d) || math.Abs(d) < 1e-12 {
			return Result{}, false
		}

		next := x - fx/d
		if next < opts.BracketLow || next > opts.BracketHigh || math.IsNaN(next) {
			return Result{}, false
		}
		x = next
	}
	return Result{}, false
}

// derivative estimates f'(x) by central difference with a step scaled to x
func derivative(f func(float64) float64, x float64) float64 {
	h := 1e-6 * math.Max(1.0, math.Abs(x))
	return (f(x+h) - f(x-h)) / (2 * h)
}

func bisect(f func(float64) float64, opts Options) Result {
	lo, hi, found := findBracket(f, opts.BracketLow, opts.BracketHigh)
	if !found {
		return Result{Converged: false}
	}

	flo := f(lo)
	iterations := 0
	for i := 1; i <= 200; i++ {
		iterations = i
		mid := (lo + hi) / 2
		fmid := f(mid)
		if math.Abs(fmid) < opts.Tolerance || (hi-lo)/2 < 1e-12 {
			if math.Abs(fmid) < opts.Tolerance {
				return Result{Root: mid, Converged: true, Iterations: i}
			}
			return Result{Root: mid, Converged: false, Iterations: i}
		}
		if sameSign(flo, fmid) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return Result{Converged: false, Iterations: iterations}
}

// findBracket locates a subinterval of [lo, hi] whose endpoints have
// opposite signs, scanning at fixed granularity
func findBracket(f func(float64) float64, lo, hi float64) (float64, float64, bool) {
	step := (hi - lo) / bracketScanSteps
	prev := lo
	fprev := f(prev)
	for i := 1; i <= bracketScanSteps; i++ {
		x := lo + float64(i)*step
		fx := f(x)
		if !math.IsNaN(fprev) && !math.IsNaN(fx) && !sameSign(fprev, fx) {
			return prev, x, true
		}
		prev, fprev = x, fx
	}
	return 0, 0, false
}

func sameSign(a, b float64) bool {
	return (a >= 0) == (b >= 0)
}
