package parquet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExactPathMatches(t *testing.T) {
	p := ExactPath("a.b")
	assert.True(t, p.matches("a.b"))
	assert.False(t, p.matches("a.b.c"))
	assert.False(t, p.matches("a"))
}

func TestPrefixPathMatches(t *testing.T) {
	p := PrefixPath("a.b")
	assert.True(t, p.matches("a.b"))
	assert.True(t, p.matches("a.b.c"))
	assert.False(t, p.matches("a.bc"))
	assert.False(t, p.matches("a"))
}

func TestGlobPathMatches(t *testing.T) {
	assert.True(t, GlobPath("*").matches("a.b.anything"))
	assert.True(t, GlobPath("b*").matches("a.bcd"))
	assert.True(t, GlobPath("b?d").matches("a.bcd"))
	assert.False(t, GlobPath("b?d").matches("a.bcdd"))
	assert.False(t, GlobPath("x*").matches("a.bcd"))
}

func TestGlobPathMatchesOnlyFinalSegment(t *testing.T) {
	// the glob is matched against the leaf's last dotted segment only, not
	// the full path.
	assert.False(t, GlobPath("a.*").matches("a.b"))
	assert.True(t, GlobPath("*").matches("a.b"))
}

func TestAnyMatchEmptyAcceptsEverything(t *testing.T) {
	assert.True(t, anyMatch(nil, "whatever"))
	assert.True(t, anyMatch([]PathPredicate{}, "whatever"))
}

func TestAnyMatchRequiresOneHit(t *testing.T) {
	preds := []PathPredicate{ExactPath("a"), ExactPath("b")}
	assert.True(t, anyMatch(preds, "a"))
	assert.True(t, anyMatch(preds, "b"))
	assert.False(t, anyMatch(preds, "c"))
}

func TestReaderOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultReaderOptions().validate())
	assert.NoError(t, ReaderOptions{Offset: 5, Count: 10}.validate())
	assert.NoError(t, ReaderOptions{Offset: 0, Count: -1}.validate())

	assert.ErrorIs(t, ReaderOptions{Offset: -1}.validate(), ErrInvalidArgument)
	assert.ErrorIs(t, ReaderOptions{Count: -2}.validate(), ErrInvalidArgument)
}

func TestDefaultParquetOptions(t *testing.T) {
	assert.True(t, DefaultParquetOptions().TreatByteArrayAsString())
}
