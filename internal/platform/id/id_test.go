package id_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"activitylog/internal/platform/id"
)

type fixed string

func (f fixed) New() string { return string(f) }

func TestRandomHexLength(t *testing.T) {
	t.Parallel()
	assert.Len(t, id.RandomHex{}.New(), 16)
	assert.Len(t, id.RandomHex{Bytes: 4}.New(), 8)
	assert.NotEqual(t, id.RandomHex{}.New(), id.RandomHex{}.New())
}

func TestReuse(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc-123", id.Reuse(fixed("gen"), "abc-123"))
	assert.Equal(t, "gen", id.Reuse(fixed("gen"), ""))
	assert.Equal(t, "gen", id.Reuse(fixed("gen"), "bad id\n"))
}
