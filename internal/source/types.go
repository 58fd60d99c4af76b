package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
	// FileNormalizedNFC marks content that changed under Unicode NFC normalization.
	FileNormalizedNFC
)

// File captures metadata and content for a single submission file.
// Lines holds the physical lines without their terminators and is never mutated.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Lines   []string
	Hash    [32]byte
	Flags   FileFlags
}

// Line is one logical line together with the physical lines it was built from.
// First and Last are 1-based and inclusive.
type Line struct {
	Text  string
	First uint32
	Last  uint32
}
