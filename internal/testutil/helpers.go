// Package testutil provides assertion helpers shared by the DSP package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Float covers the sample types used in tests.
type Float interface {
	~float32 | ~float64
}

// AssertSymmetric verifies s[i] == s[n-1-i].
func AssertSymmetric[F Float](t *testing.T, s []F, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := range n / 2 {
		j := n - 1 - i
		if !assert.InDelta(t, float64(s[i]), float64(s[j]), tolerance,
			"not symmetric at %d/%d", i, j) {
			return false
		}
	}
	return true
}

// AssertAntisymmetric verifies s[i] == -s[n-1-i].
func AssertAntisymmetric[F Float](t *testing.T, s []F, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := range n / 2 {
		j := n - 1 - i
		if !assert.InDelta(t, float64(s[i]), -float64(s[j]), tolerance,
			"not antisymmetric at %d/%d", i, j) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies every element is finite.
func AssertNoNaNOrInf[F Float](t *testing.T, s []F) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return assert.Fail(t, "non-finite value", "s[%d] = %v", i, v)
		}
	}
	return true
}

// AssertAllInRange verifies every element lies in [minVal, maxVal].
func AssertAllInRange[F Float](t *testing.T, s []F, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if float64(v) < minVal || float64(v) > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%v is outside [%v, %v]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertAllZero verifies the slice is silent. name labels the failure.
func AssertAllZero[F Float](t *testing.T, s []F, name string) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "expected silence", "%s[%d]=%v", name, i, v)
		}
	}
	return true
}

// AssertAllEqual verifies every element equals want within tolerance.
func AssertAllEqual[F Float](t *testing.T, s []F, want, tolerance float64) bool {
	t.Helper()
	for i, v := range s {
		if !assert.InDelta(t, want, float64(v), tolerance, "s[%d]", i) {
			return false
		}
	}
	return true
}

// AssertRelativeError verifies |actual-expected|/|expected| <= tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	rel := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, rel, tolerance,
		"relative error %e exceeds %e (expected=%v, actual=%v)", rel, tolerance, expected, actual)
}

// AssertInRange verifies minVal <= value <= maxVal.
func AssertInRange(t *testing.T, value, minVal, maxVal float64) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range", "%v is outside [%v, %v]", value, minVal, maxVal)
	}
	return true
}

// Block allocates a planar block with every channel slot populated.
func Block(channels, frames int) [][]float32 {
	b := make([][]float32, channels)
	for i := range b {
		b[i] = make([]float32, frames)
	}
	return b
}

// Fill sets every sample of every populated slot to v.
func Fill(b [][]float32, v float32) {
	for _, ch := range b {
		for i := range ch {
			ch[i] = v
		}
	}
}
