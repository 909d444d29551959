// Package window bounds views over long ordered sequences such as the play
// queue. A window keeps a pivot position visible while never exceeding a
// fixed length.
package window

// MaxWindow is the queue window length both ends of a snapshot transfer agree on.
const MaxWindow = 100

// Bounds returns the half-open index range [lo, hi) of the window of length
// at most max over a sequence of n elements, positioned around pivot.
//
// A pivot outside [0, n) is clipped, so Bounds is defined for every input.
func Bounds(n, pivot, max int) (lo, hi int) {
	if max <= 0 || n <= 0 {
		return 0, 0
	}
	if n <= max {
		return 0, n
	}

	if pivot < 0 {
		pivot = 0
	}
	if pivot >= n {
		pivot = n - 1
	}

	half := max / 2
	switch {
	case pivot <= half:
		return 0, max
	case pivot >= n-half:
		return n - max, n
	}
	lo = pivot - half
	return lo, lo + max
}

// Clamp returns the window of list around pivot, no longer than max. The
// result shares the backing array of list but has its capacity trimmed, so
// appending to it never overwrites the source.
func Clamp[T any](list []T, pivot, max int) []T {
	lo, hi := Bounds(len(list), pivot, max)
	return list[lo:hi:hi]
}
