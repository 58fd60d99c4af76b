package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"regrade/internal/config"
)

// SubmissionExt is the suffix of files picked up in batch mode.
const SubmissionExt = ".py"

// Pair is one corrected submission and the original it is compared with.
type Pair struct {
	Question string
	Rel      string // путь относительно каталогов, со слэшами
	Old      string // пусто, если оригинал не найден
	New      string
}

// Name identifies the pair in progress events and traces.
func (p Pair) Name() string {
	return p.Rel
}

// listSubmissions возвращает отсортированный список всех *.py файлов в директории
func listSubmissions(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// __pycache__ и скрытые каталоги не интересны
			if path != dir && (d.Name() == "__pycache__" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, SubmissionExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// DiscoverPairs pairs every submission under corrections with the file at
// the same relative path under originals.
func DiscoverPairs(originals, corrections, questionFrom string) ([]Pair, error) {
	for _, dir := range []string{originals, corrections} {
		st, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			return nil, fmt.Errorf("%q is not a directory", dir)
		}
	}

	files, err := listSubmissions(corrections)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(files))
	for _, path := range files {
		rel, err := filepath.Rel(corrections, path)
		if err != nil {
			return nil, err
		}
		p := Pair{
			Question: QuestionID(rel, questionFrom),
			Rel:      filepath.ToSlash(rel),
			New:      path,
		}
		old := filepath.Join(originals, rel)
		if _, err := os.Stat(old); err == nil {
			p.Old = old
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// QuestionID derives the question of a submission from its relative path:
// the file stem, or the first directory for "dir" (stem at top level).
func QuestionID(rel, from string) string {
	rel = filepath.ToSlash(rel)
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	if from != config.QuestionFromDir {
		return stem
	}
	if i := strings.IndexByte(rel, '/'); i > 0 {
		return rel[:i]
	}
	return stem
}
