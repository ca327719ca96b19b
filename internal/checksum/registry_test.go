package checksum

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteSource is an in-memory ContentSource for tests.
type byteSource []byte

func (b byteSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (b byteSource) Size() int64 { return int64(len(b)) }

func openRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRecordAndVerify(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	content := byteSource("the quick brown fox")
	require.NoError(t, reg.Record(ctx, "docs/readme.txt", content))

	err := reg.Verify(ctx, "docs/readme.txt", strings.NewReader("the quick brown fox"))
	assert.NoError(t, err)
}

func TestVerify_Mismatch(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "a.bin", byteSource("original")))

	err := reg.Verify(ctx, "a.bin", strings.NewReader("tampered"))
	require.Error(t, err)

	var mm *Mismatch
	require.True(t, errors.As(err, &mm))
	assert.Equal(t, "a.bin", mm.Name)
	assert.NotEqual(t, mm.Expected, mm.Actual)
	assert.Contains(t, mm.Error(), "a.bin")
}

func TestRecord_DuplicateName(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "dup.txt", byteSource("one")))
	err := reg.Record(ctx, "dup.txt", byteSource("two"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestVerify_NotRecorded(t *testing.T) {
	reg := openRegistry(t)

	err := reg.Verify(context.Background(), "ghost.bin", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotRecorded)
}

func TestRename_KeepsOriginalDigest(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "old.bin", byteSource("payload")))
	require.NoError(t, reg.Rename(ctx, "old.bin", "new.bin"))

	// The renamed form verifies against the original content.
	assert.NoError(t, reg.Verify(ctx, "new.bin", strings.NewReader("payload")))

	// The pre-rename form is gone.
	assert.ErrorIs(t, reg.Verify(ctx, "old.bin", strings.NewReader("payload")), ErrNotRecorded)
}

func TestRename_Unknown(t *testing.T) {
	reg := openRegistry(t)
	err := reg.Rename(context.Background(), "missing.bin", "whatever.bin")
	assert.ErrorIs(t, err, ErrNotRecorded)
}

func TestRemoveMatching(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"a.dat", "b.dat", "sub/c.dat", "keep.txt"} {
		require.NoError(t, reg.Record(ctx, name, byteSource(name)))
	}

	removed, err := reg.RemoveMatching(ctx, "*.dat")
	require.NoError(t, err)
	assert.Equal(t, 3, removed, "base-name matching reaches nested entries")

	names, err := reg.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, names)

	n, err := reg.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNames_SortedAndCanonical(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, `dir\z.bin`, byteSource("z")))
	require.NoError(t, reg.Record(ctx, "./a.bin", byteSource("a")))

	names, err := reg.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin", "dir/z.bin"}, names)
}

func TestSize(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "s.bin", byteSource("12345")))
	size, err := reg.Size(ctx, "s.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	_, err = reg.Size(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotRecorded)
}

func TestExpected_MatchesWriter(t *testing.T) {
	reg := openRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Record(ctx, "w.bin", byteSource("streamed content")))

	w := NewWriter()
	_, err := w.Write([]byte("streamed content"))
	require.NoError(t, err)

	expected, err := reg.Expected(ctx, "w.bin")
	require.NoError(t, err)
	assert.Equal(t, expected, w.Sum())
	assert.Equal(t, int64(len("streamed content")), w.Bytes())
}
