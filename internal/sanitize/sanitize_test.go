package sanitize_test

import (
	"reflect"
	"testing"

	"regrade/internal/diag"
	"regrade/internal/sanitize"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "docstring",
			in:   []string{`def f():`, `    """first`, `    second"""`, `    return 1`},
			want: []string{`def f():`, `    """first\n    second"""`, `    return 1`},
		},
		{
			name: "single quotes triple",
			in:   []string{`s = '''a`, `# not a comment`, `b'''`},
			want: []string{`s = '''a\n# not a comment\nb'''`},
		},
		{
			name: "continuation inside literal",
			in:   []string{`s = """a\`, `b"""`},
			want: []string{`s = """ab"""`},
		},
		{
			name: "triple in comment ignored",
			in:   []string{`x = 1 # """`, `y = 2`},
			want: []string{`x = 1 # """`, `y = 2`},
		},
		{
			name: "earliest opener wins",
			in:   []string{`s = '''"""`, `'''`},
			want: []string{`s = '''"""\n'''`},
		},
		{
			name: "unclosed at eof",
			in:   []string{`s = """a`, `b`},
			want: []string{`s = """a\nb`},
		},
		{
			name: "unclosed at eof after continuation",
			in:   []string{`s = """a`, `b\n\`},
			want: []string{`s = """a\nb\n`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.Fold(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fold() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"simple", []string{`x = 1 + \`, `    2`}, []string{`x = 1 +     2`}},
		{"chain", []string{`a \`, `b \`, `c`}, []string{`a b c`}},
		{"backslash in comment", []string{`x = 1 # \`, `y = 2`}, []string{`x = 1 # \`, `y = 2`}},
		{"escaped backslash", []string{`s = "a\\"`, `t = 1`}, []string{`s = "a\\"`, `t = 1`}},
		{"dangling", []string{`x = \`}, []string{`x = `}},
		{"open quote continues", []string{`s = "ab\`, `cd"`}, []string{`s = "abcd"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.Join(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Join() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripTrailing(t *testing.T) {
	in := []string{`x = 1  # one`, `# whole`, `s = "#"  # two`, `y = 2`}
	want := []string{`x = 1  `, ``, `s = "#"  `, `y = 2`}
	if got := sanitize.StripTrailing(in); !reflect.DeepEqual(got, want) {
		t.Errorf("StripTrailing() = %q, want %q", got, want)
	}
}

func TestStripQuoted(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"docstring", `    """doc"""`, []string{`    `}},
		{"implicit concatenation", `"a" 'b'`, []string{``}},
		{"statement after semicolon", `"doc"; x = 1`, []string{`x = 1`}},
		{"operand kept", `"-".join(xs)`, []string{`"-".join(xs)`}},
		{"code untouched", `x = "a"`, []string{`x = "a"`}},
		{"unterminated dropped", `"abc`, []string{}},
		{"prefixed", `    r'''raw\ndoc'''`, []string{`    `}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.StripQuoted([]string{tt.in}); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("StripQuoted(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := [][]string{
		{"x = 1;;  ", "", " \t", "y = 2\r"},
		{";", "a;b;", "  indented  "},
		{},
		{"z"},
	}
	for _, in := range inputs {
		once := sanitize.Normalize(in)
		twice := sanitize.Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent: %q → %q → %q", in, once, twice)
		}
		for _, l := range once {
			if l == "" {
				t.Errorf("Normalize(%q) kept an empty line", in)
			}
		}
	}
	got := sanitize.Normalize([]string{"x = 1;;  ", "", "a;b;"})
	want := []string{"x = 1", "a;b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestSanitizeRoundTrip(t *testing.T) {
	plain := []string{"def f(x):", "    y = x * 2", "    return y", "print(f(3))"}
	got := sanitize.Sanitize(plain, sanitize.Options{}, nil)
	if !reflect.DeepEqual(got, plain) {
		t.Errorf("Sanitize() = %q, want unchanged %q", got, plain)
	}

	padded := []string{"x = 1;  ", "y = 2\t"}
	got = sanitize.Sanitize(padded, sanitize.Options{}, nil)
	if !reflect.DeepEqual(got, []string{"x = 1", "y = 2"}) {
		t.Errorf("Sanitize() = %q", got)
	}
}

func TestSanitizeFull(t *testing.T) {
	raw := []string{
		`def area(r):`,
		`    """Compute the area.`,
		`    # not a comment`,
		`    """`,
		`    pi = 3.14  # approx`,
		`    return pi * \`,
		`        r * r`,
		``,
		`# trailing note`,
	}
	want := []string{
		`def area(r):`,
		`    pi = 3.14`,
		`    return pi *         r * r`,
	}
	got := sanitize.Sanitize(raw, sanitize.Options{}, nil)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}

	// только trailing: докстринг остаётся
	got = sanitize.Sanitize(raw, sanitize.Options{Strategy: sanitize.StrategyTrailing}, nil)
	if len(got) != 4 {
		t.Errorf("trailing strategy: got %d lines %q", len(got), got)
	}
}

func TestSanitizeToggles(t *testing.T) {
	raw := []string{`x = 1 + \`, `2`}
	got := sanitize.Sanitize(raw, sanitize.Options{NoJoin: true}, nil)
	if !reflect.DeepEqual(got, []string{`x = 1 + \`, `2`}) {
		t.Errorf("NoJoin: got %q", got)
	}
}

func TestExtractUserRegion(t *testing.T) {
	raw := []string{
		`import math`,
		`def solve(xs):`,
		`    # BEGIN your code`,
		`    """helper docs"""`,
		`    total = sum(xs)  # add`,
		`    return total;`,
		`    # END your code`,
	}
	res := sanitize.ExtractUserRegion(raw, sanitize.Options{}, nil)
	if !res.WellFormed {
		t.Error("expected well-formed region")
	}
	want := []string{`    total = sum(xs)`, `    return total`}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("Lines = %q, want %q", res.Lines, want)
	}
}

func TestExtractUserRegionSentinelInDocstring(t *testing.T) {
	raw := []string{
		`"""`,
		`# BEGIN`,
		`"""`,
		`# BEGIN`,
		`x = 1`,
		`# END`,
	}
	res := sanitize.ExtractUserRegion(raw, sanitize.Options{}, nil)
	if !res.WellFormed || !reflect.DeepEqual(res.Lines, []string{"x = 1"}) {
		t.Errorf("got %+v", res)
	}
}

func TestSanitizeDropsOpenLiterals(t *testing.T) {
	tests := []struct {
		name string
		opts sanitize.Options
		in   []string
		want []string
	}{
		{
			name: "quote after code",
			in:   []string{`x = "abc  # BEGIN`, `# BEGIN`, `a = 1`, `# END`},
			want: []string{`a = 1`},
		},
		{
			name: "trailing strategy",
			opts: sanitize.Options{Strategy: sanitize.StrategyTrailing},
			in:   []string{`y = 'it's'  # note`, `z = 2`},
			want: []string{`z = 2`},
		},
		{
			name: "triple open at eof",
			in:   []string{`a = 1`, `s = """never`, `closed`},
			want: []string{`a = 1`},
		},
		{
			name: "triple open without fold",
			opts: sanitize.Options{NoFold: true},
			in:   []string{`s = """doc`, `b = 2`},
			want: []string{`b = 2`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.Sanitize(tt.in, tt.opts, nil); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDroppedLineReported(t *testing.T) {
	bag := diag.NewBag(20)
	sanitize.Sanitize([]string{`x = "abc  # c`, `y = 1`}, sanitize.Options{File: 1}, diag.BagReporter{Bag: bag})

	var dropped int
	for _, d := range bag.Items() {
		if d.Code == diag.LexUnterminatedQuote {
			dropped++
			if d.Primary.Start != 1 {
				t.Errorf("span = %v, want line 1", d.Primary)
			}
		}
	}
	if dropped != 1 {
		t.Errorf("want one %s, got %v", diag.LexUnterminatedQuote.ID(), bag.Items())
	}
}

func TestDiagnosticsReported(t *testing.T) {
	bag := diag.NewBag(20)
	raw := []string{`# BEGIN`, `"abc`, `s = """never closed`}
	sanitize.ExtractUserRegion(raw, sanitize.Options{File: 2}, diag.BagReporter{Bag: bag})

	codes := map[diag.Code]bool{}
	for _, d := range bag.Items() {
		codes[d.Code] = true
	}
	for _, want := range []diag.Code{diag.LexUnterminatedTriple, diag.RegMalformedSentinels} {
		if !codes[want] {
			t.Errorf("missing diagnostic %s; got %v", want.ID(), bag.Items())
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]sanitize.Strategy{
		"":         sanitize.StrategyBoth,
		"both":     sanitize.StrategyBoth,
		"Trailing": sanitize.StrategyTrailing,
		"quoted":   sanitize.StrategyQuoted,
	} {
		got, err := sanitize.ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := sanitize.ParseStrategy("bogus"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
