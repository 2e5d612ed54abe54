package hasher

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var upperHex = regexp.MustCompile(`^[0-9A-F]{64}$`)

func TestPBKDF2Hash(t *testing.T) {
	h := NewPBKDF2("vertical", 1000)

	first := h.Hash("79991234567")
	assert.Regexp(t, upperHex, first)
	assert.Equal(t, first, h.Hash("79991234567"), "hash must be deterministic")
	assert.NotEqual(t, first, h.Hash("79991234568"))

	other := NewPBKDF2("other-salt", 1000)
	assert.NotEqual(t, first, other.Hash("79991234567"), "salt must affect the digest")
}

func TestPBKDF2ClampsIterations(t *testing.T) {
	assert.Equal(t, NewPBKDF2("s", 1).Hash("x"), NewPBKDF2("s", 0).Hash("x"))
}
