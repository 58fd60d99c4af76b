package config

import (
	"bytes"
	"crypto/sha256"

	"github.com/BurntSushi/toml"

	"regrade/internal/region"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Combine строит хеш записи: H( head || part1 || part2 ... ).
// Порядок частей важен: (old, new) и (new, old) дают разные ключи.
func Combine(head Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(head[:])
	for _, p := range parts {
		_, _ = h.Write(p[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// fingerprinted is the part of the config that changes records.
// Jobs, cache and store settings do not.
type fingerprinted struct {
	Sentinels region.Sentinels          `toml:"sentinels"`
	Sanitize  SanitizeConfig            `toml:"sanitize"`
	Checkers  CheckersConfig            `toml:"checkers"`
	Questions map[string]QuestionConfig `toml:"questions"`
}

// Fingerprint hashes every setting that affects a record. The TOML encoder
// sorts map keys, so equal configs give equal digests.
func (c *Config) Fingerprint() Digest {
	var buf bytes.Buffer
	buf.WriteString(schemaTag)
	enc := toml.NewEncoder(&buf)
	_ = enc.Encode(fingerprinted{
		Sentinels: c.Sentinels.OrDefault(),
		Sanitize:  c.Sanitize,
		Checkers:  c.Checkers,
		Questions: c.Questions,
	})
	return sha256.Sum256(buf.Bytes())
}

// schemaTag меняется, когда меняется смысл записей.
const schemaTag = "regrade/records/v1\n"
