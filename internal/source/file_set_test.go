package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("q1.py", []byte("x = 1\n"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	id2 := fs.Add("q1.py", []byte("x = 2\n"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists := fs.GetLatest("q1.py")
	if !exists {
		t.Fatal("Expected file to exist after Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	// старая версия всё ещё доступна
	if got := fs.Get(id1).Lines[0]; got != "x = 1" {
		t.Errorf("Expected first version line %q, got %q", "x = 1", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Expected 2 stored versions, got %d", fs.Len())
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"single no newline", "a", []string{"a"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"blank line kept", "a\n\nb", []string{"a", "", "b"}},
		{"only newline", "\n", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLines([]byte(tt.content))
			if len(got) != len(tt.want) {
				t.Fatalf("splitLines(%q) = %q, want %q", tt.content, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCRLFNormalization(t *testing.T) {
	original := []byte("a\r\nb\r\n")
	normalized, changed := normalizeCRLF(original)

	if !changed {
		t.Error("Expected CRLF normalization to be detected")
	}
	if string(normalized) != "a\nb\n" {
		t.Errorf("Expected normalized content %q, got %q", "a\nb\n", string(normalized))
	}

	// одиночный \r не трогаем
	lone, changed := normalizeCRLF([]byte("a\rb"))
	if changed || string(lone) != "a\rb" {
		t.Errorf("Expected lone CR to survive, got %q (changed=%v)", string(lone), changed)
	}
}

func TestBOMRemoval(t *testing.T) {
	bomContent := []byte{0xEF, 0xBB, 0xBF, 'x', '\n'}
	withoutBOM, hadBOM := removeBOM(bomContent)

	if !hadBOM {
		t.Error("Expected BOM to be detected")
	}
	if string(withoutBOM) != "x\n" {
		t.Errorf("Expected content without BOM %q, got %q", "x\n", string(withoutBOM))
	}
}

func TestNormalizeNFC(t *testing.T) {
	// "e" + combining acute accent → "é"
	decomposed := []byte("name = \"e\u0301\"\n")
	content, flags := Normalize(decomposed)
	if flags&FileNormalizedNFC == 0 {
		t.Error("Expected FileNormalizedNFC flag to be set")
	}
	if string(content) != "name = \"\u00e9\"\n" {
		t.Errorf("Expected composed form, got %q", string(content))
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("stdin", []byte("\xEF\xBB\xBFa\r\nb\r\n"))
	file := fs.Get(id)
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag")
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("Expected BOM and CRLF flags, got %b", file.Flags)
	}
	if len(file.Lines) != 2 || file.Lines[0] != "a" || file.Lines[1] != "b" {
		t.Errorf("Unexpected lines %q", file.Lines)
	}
}

func TestLoad(t *testing.T) {
	fs := NewFileSet()
	path := filepath.Join(t.TempDir(), "answer.py")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb\r\n"), 0o600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected file content %q, got %q", "a\nb\n", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("Expected FileHadBOM flag to be set")
	}
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("Expected FileNormalizedCRLF flag to be set")
	}
	if got := file.GetLine(2); got != "b" {
		t.Errorf("GetLine(2) = %q, want %q", got, "b")
	}
	if got := file.GetLine(3); got != "" {
		t.Errorf("GetLine(3) = %q, want empty", got)
	}
	if _, ok := fs.GetByPath(path); !ok {
		t.Error("Expected GetByPath to find the loaded file")
	}
}

func TestLoadMissing(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.py")); err == nil {
		t.Fatal("Expected error for missing file")
	}
	if fs.Get(0) != nil {
		t.Error("Expected Get on empty set to return nil")
	}
}

func TestLinesOfAndSpan(t *testing.T) {
	lines := LinesOf([]string{"a", "b", "c"})
	if lines[2].First != 3 || lines[2].Last != 3 {
		t.Fatalf("Expected third line numbered 3, got %+v", lines[2])
	}
	sp := SpanOf(7, lines[0]).Cover(SpanOf(7, lines[2]))
	if sp.Start != 1 || sp.End != 3 || sp.Len() != 3 {
		t.Errorf("Unexpected cover span %+v", sp)
	}
	if sp.String() != "7:1-3" {
		t.Errorf("Unexpected span string %q", sp.String())
	}
	if !(Span{}).Empty() {
		t.Error("Expected zero span to be empty")
	}
	if got := Texts(lines); len(got) != 3 || got[1] != "b" {
		t.Errorf("Texts returned %q", got)
	}
}
