package fuzztests

import (
	"bytes"
	"testing"

	"regrade/internal/diag"
	"regrade/internal/sanitize"
	"regrade/internal/similarity"
	"regrade/internal/source"
	"regrade/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func loadInput(input []byte) *source.File {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("fuzz.py", append([]byte(nil), input...))
	return fs.Get(id)
}

func FuzzSanitize(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		file := loadInput(input)
		bag := diag.NewBag(64)
		p := sanitize.New(sanitize.Options{File: file.ID}, diag.BagReporter{Bag: bag})

		lines := p.Sanitize(file.RawLines())
		if err := testkit.CheckLineInvariants(lines, file); err != nil {
			t.Fatalf("sanitize: %v", err)
		}
		// нормализация идемпотентна
		texts := source.Texts(lines)
		if again := sanitize.Normalize(texts); len(again) != len(texts) {
			t.Fatalf("normalize is not idempotent: %q -> %q", texts, again)
		}
	})
}

func FuzzExtractRegion(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		file := loadInput(input)
		bag := diag.NewBag(64)
		p := sanitize.New(sanitize.Options{File: file.ID}, diag.BagReporter{Bag: bag})

		canon, res := p.ExtractUserRegion(file.RawLines())
		if err := testkit.CheckLineInvariants(canon, file); err != nil {
			t.Fatalf("region lines: %v", err)
		}
		if err := testkit.CheckRegionInvariants(res, canon); err != nil {
			t.Fatalf("region: %v", err)
		}
	})
}

func FuzzDistance(f *testing.F) {
	f.Add([]byte("x = 1\ny = 2"), []byte("x = 1\ny = 3"))
	f.Add([]byte(""), []byte("a"))
	f.Add([]byte("a\na\na"), []byte("a"))
	f.Fuzz(func(t *testing.T, left, right []byte) {
		a := splitSeed(left)
		b := splitSeed(right)
		d := similarity.Distance(a, b)
		if d != similarity.Distance(b, a) {
			t.Fatalf("distance is not symmetric for %q / %q", a, b)
		}
		if d < 0 || d > max(len(a), len(b)) {
			t.Fatalf("distance %d out of range for %d/%d lines", d, len(a), len(b))
		}
		res, err := similarity.Compare(a, b, nil)
		if err != nil {
			return
		}
		if res.Ratio < 0 || res.Ratio > 1 {
			t.Fatalf("ratio %v out of [0,1]", res.Ratio)
		}
	})
}

func splitSeed(data []byte) []string {
	if len(data) > 4<<10 {
		data = data[:4<<10]
	}
	if len(data) == 0 {
		return nil
	}
	parts := bytes.Split(data, []byte{'\n'})
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}
