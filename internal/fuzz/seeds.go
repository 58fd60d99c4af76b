package fuzztests

import (
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

// pythonSeeds покрывают ветки сканера: тройные строки, экранирование,
// продолжения строк, маркеры региона.
var pythonSeeds = []string{
	"",
	"x = 1\n",
	"def f(x):\n    # BEGIN\n    return x + 1\n    # END\n",
	"s = \"\"\"doc\n# not a comment\n\"\"\"\ny = 2  # comment\n",
	"s = '''never closed\n",
	"a = 1 + \\\n    2\n",
	"x = \"a # b\"; y = 'c\\'d'  # tail\n",
	"# BEGIN\n# BEGIN\nx = 1\n# END\n",
	"# END\nx = 1\n# BEGIN\n",
	"r'''raw\\'''\nb\"\\\\\"\n",
	"\"\"\"module doc\"\"\"\n# BEGIN\nif a: b = c if d else e\n# END\n",
	"x = 1 \\\n",
	"\ufeffx = 1\r\ny = 2\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range pythonSeeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
