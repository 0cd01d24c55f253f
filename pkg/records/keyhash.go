package records

import (
	"strings"

	"github.com/zeebo/xxh3"
)

// keySep separates key parts before hashing so that ("ab","c") and ("a","bc")
// never collide.
const keySep = "\x1f"

// KeyDigest returns a stable 64-bit digest of the given key parts. It is used
// to materialize a compact surrogate of the composite (locus, alleles) key
// for indexed lookups in the output table.
func KeyDigest(parts ...string) uint64 {
	return xxh3.HashString(strings.Join(parts, keySep))
}
