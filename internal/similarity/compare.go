package similarity

import (
	"errors"
	"fmt"
)

// ErrNotComparable is returned when the corrected submission has no lines.
var ErrNotComparable = errors.New("not comparable: corrected submission is empty")

// Calibration is the legitimate edit range of a question.
type Calibration struct {
	Lo int `toml:"lo" msgpack:"lo"`
	Hi int `toml:"hi" msgpack:"hi"`
}

// Validate checks 0 <= Lo <= Hi and Hi > 0.
func (c Calibration) Validate() error {
	if c.Lo < 0 || c.Hi <= 0 || c.Lo > c.Hi {
		return fmt.Errorf("invalid legit range [%d, %d]: want 0 <= lo <= hi, hi > 0", c.Lo, c.Hi)
	}
	return nil
}

func (c Calibration) String() string {
	return fmt.Sprintf("[%d, %d]", c.Lo, c.Hi)
}

// Result holds the distance and the derived ratio in [0, 1].
type Result struct {
	EditDistance int     `json:"edit_distance" msgpack:"edit_distance"`
	Ratio        float64 `json:"ratio" msgpack:"ratio"`
}

// Compare scores new against old. With a nil calibration the ratio is
// 1 - d/max(len). With a calibration (lo, hi) it is the smaller of
// 1 - d/min(max, hi) and (max - d)/max(max, lo), floored at 0.
func Compare(old, new []string, cal *Calibration) (Result, error) {
	if len(new) == 0 {
		return Result{}, ErrNotComparable
	}
	if cal != nil {
		if err := cal.Validate(); err != nil {
			return Result{}, err
		}
	}
	d := Distance(old, new)
	return Result{EditDistance: d, Ratio: Ratio(d, len(old), len(new), cal)}, nil
}

// Ratio derives the similarity ratio from an edit distance and the lengths
// of both sequences. longest must be positive unless d is 0.
func Ratio(d, oldLen, newLen int, cal *Calibration) float64 {
	if d == 0 {
		return 1
	}
	longest := max(oldLen, newLen)
	if cal == nil {
		return clamp(1 - float64(d)/float64(longest))
	}
	small := 1 - float64(d)/float64(min(longest, cal.Hi))
	large := float64(longest-d) / float64(max(longest, cal.Lo))
	return max(0, min(small, large))
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
