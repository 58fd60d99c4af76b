package sanitize

import (
	"fmt"
	"strings"

	"regrade/internal/region"
	"regrade/internal/source"
)

// Strategy selects how comments are removed.
type Strategy uint8

const (
	// StrategyBoth truncates trailing comments and then strips bare literals.
	StrategyBoth Strategy = iota
	// StrategyTrailing truncates each line at its comment marker.
	StrategyTrailing
	// StrategyQuoted strips leading bare string-literal statements.
	StrategyQuoted
)

func (s Strategy) String() string {
	switch s {
	case StrategyBoth:
		return "both"
	case StrategyTrailing:
		return "trailing"
	case StrategyQuoted:
		return "quoted"
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// ParseStrategy maps a config/flag value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return StrategyBoth, nil
	case "trailing":
		return StrategyTrailing, nil
	case "quoted":
		return StrategyQuoted, nil
	}
	return 0, fmt.Errorf("unknown comment strategy %q (want trailing, quoted or both)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Options is the immutable configuration of the pipeline. The zero value
// runs every stage with the default strategy and BEGIN/END sentinels.
type Options struct {
	Strategy  Strategy
	NoFold    bool // не сворачивать тройные строки
	NoJoin    bool // не склеивать строки с '\'
	Sentinels region.Sentinels
	// File is used for diagnostic spans.
	File source.FileID
}
