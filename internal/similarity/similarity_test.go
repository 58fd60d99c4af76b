package similarity_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"regrade/internal/similarity"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b []string
		want int
	}{
		{nil, nil, 0},
		{[]string{"a"}, nil, 1},
		{nil, []string{"a", "b"}, 2},
		{[]string{"a", "b", "c"}, []string{"a", "b", "c"}, 0},
		{[]string{"a", "b", "c"}, []string{"a", "c"}, 1},
		{[]string{"a", "b"}, []string{"b", "a"}, 2},
		{[]string{"x = 1", "y = 2"}, []string{"x = 1", "y = 3"}, 1},
		{[]string{"k", "i", "t", "t", "e", "n"}, []string{"s", "i", "t", "t", "i", "n", "g"}, 3},
	}
	for _, tt := range tests {
		if got := similarity.Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := similarity.Distance(tt.b, tt.a); got != tt.want {
			t.Errorf("Distance is not symmetric for %q, %q", tt.a, tt.b)
		}
	}
}

func TestDistanceBoundedByLength(t *testing.T) {
	for n := 1; n <= 8; n++ {
		a := make([]string, n)
		b := make([]string, n)
		for i := range a {
			a[i] = fmt.Sprintf("a%d", i)
			b[i] = fmt.Sprintf("b%d", i)
		}
		if d := similarity.Distance(a, b); d > n {
			t.Errorf("n=%d: distance %d exceeds n", n, d)
		}
	}
}

func TestCompareScenario(t *testing.T) {
	res, err := similarity.Compare([]string{"x = 1", "y = 2"}, []string{"x = 1", "y = 3"}, nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res.EditDistance != 1 || res.Ratio != 0.5 {
		t.Errorf("got %+v, want distance 1 ratio 0.5", res)
	}
}

func TestCompareEqual(t *testing.T) {
	x := []string{"a", "b", "c"}
	res, err := similarity.Compare(x, x, &similarity.Calibration{Lo: 1, Hi: 2})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res.EditDistance != 0 || res.Ratio != 1 {
		t.Errorf("got %+v, want 0 and 1", res)
	}
}

func TestCompareNotComparable(t *testing.T) {
	_, err := similarity.Compare([]string{"a"}, nil, nil)
	if !errors.Is(err, similarity.ErrNotComparable) {
		t.Errorf("err = %v, want ErrNotComparable", err)
	}
}

func TestCompareEmptyOld(t *testing.T) {
	res, err := similarity.Compare(nil, []string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res.EditDistance != 2 || res.Ratio != 0 {
		t.Errorf("got %+v", res)
	}
}

func TestRatioCalibrated(t *testing.T) {
	cal := &similarity.Calibration{Lo: 6, Hi: 15}
	got := similarity.Ratio(3, 10, 12, cal)
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Ratio = %v, want 0.75", got)
	}

	// большая правка сверх hi не уходит ниже нуля
	if got := similarity.Ratio(40, 10, 12, cal); got != 0 {
		t.Errorf("Ratio floor = %v, want 0", got)
	}
}

func TestRatioInRange(t *testing.T) {
	cal := &similarity.Calibration{Lo: 2, Hi: 4}
	for d := 0; d <= 12; d++ {
		for _, c := range []*similarity.Calibration{nil, cal} {
			r := similarity.Ratio(d, 5, 12, c)
			if r < 0 || r > 1 {
				t.Errorf("Ratio(%d, cal=%v) = %v outside [0,1]", d, c, r)
			}
		}
	}
}

func TestCalibrationValidate(t *testing.T) {
	bad := []similarity.Calibration{{Lo: -1, Hi: 3}, {Lo: 4, Hi: 3}, {Lo: 0, Hi: 0}}
	for _, c := range bad {
		if c.Validate() == nil {
			t.Errorf("Validate(%v) = nil, want error", c)
		}
	}
	if _, err := similarity.Compare([]string{"a"}, []string{"b"}, &bad[1]); err == nil {
		t.Error("Compare must reject an invalid calibration")
	}
}
