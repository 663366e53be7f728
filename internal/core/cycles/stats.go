package cycles

import "math"

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// mean skips missing values and returns NaN when nothing is left.
func mean(values []float64) float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if finite(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// stdDev is the sample standard deviation (n-1) of the finite values, 0 for fewer than two.
func stdDev(values []float64) float64 {
	m := mean(values)
	var sq float64
	n := 0
	for _, v := range values {
		if finite(v) {
			d := v - m
			sq += d * d
			n++
		}
	}
	if n < 2 {
		return 0
	}
	return math.Sqrt(sq / float64(n-1))
}

func maxFinite(values []float64) float64 {
	best := math.Inf(-1)
	for _, v := range values {
		if finite(v) && v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

func lastFinite(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if finite(values[i]) {
			return values[i]
		}
	}
	return 0
}

// Trend is the mean first difference of a potential series. Positive means the
// potential rises over the recording. Missing values yield 0.
func Trend(potential []float64) float64 {
	var sum float64
	n := 0
	for i := 1; i < len(potential); i++ {
		d := potential[i] - potential[i-1]
		if finite(d) {
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// trapezoid integrates y over x, skipping intervals with a missing endpoint.
func trapezoid(y, x []float64) float64 {
	n := min(len(x), len(y))
	var area float64
	for i := 1; i < n; i++ {
		if !finite(x[i-1]) || !finite(x[i]) || !finite(y[i-1]) || !finite(y[i]) {
			continue
		}
		area += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return area
}
