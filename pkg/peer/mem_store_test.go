package peer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStoreWriteReadAndList(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, err := s.MakeDirectory(ctx, "/dir")
	require.NoErrorf(t, err, "MakeDirectory failed: %s", err)

	err = s.Write(ctx, "/dir/f", 0, true, []byte("hello world"))
	require.NoErrorf(t, err, "Write failed: %s", err)

	data, err := s.Read(ctx, "/dir/f", 6, 100)
	require.NoError(t, err)
	require.Equal(t, "world", string(data))

	data, err = s.Read(ctx, "/dir/f", 20, 5)
	require.NoError(t, err)
	require.Empty(t, data)

	entries, err := s.List(ctx, "/dir/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "/dir/f", entries[0].Path)
	require.Equal(t, int64(11), entries[0].Size)
	require.False(t, entries[0].IsDir)
}

func TestMemStoreWriteAtOffsetAndTruncate(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Write(ctx, "/f", 0, false, []byte("abcdef")))
	require.NoError(t, s.Write(ctx, "/f", 2, false, []byte("ZZ")))
	data, _ := s.Contents("/f")
	require.Equal(t, "abZZef", string(data))

	require.NoError(t, s.Write(ctx, "/f", 0, true, []byte("x")))
	data, _ = s.Contents("/f")
	require.Equal(t, "x", string(data))
}

func TestMemStoreMoveAndCopySubtrees(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, err := s.MakeDirectory(ctx, "/a")
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, "/a/f", 0, false, []byte("1")))
	require.NoError(t, s.Write(ctx, "/ab", 0, false, []byte("2")))

	require.NoError(t, s.Copy(ctx, "/a", "/c"))
	_, err = s.Stat(ctx, "/c/f")
	require.NoError(t, err)
	_, err = s.Stat(ctx, "/a/f")
	require.NoError(t, err)

	require.NoError(t, s.Move(ctx, "/a", "/z"))
	_, err = s.Stat(ctx, "/a/f")
	require.True(t, errors.Is(err, ErrNotFound), "expected /a/f to be gone, got %v", err)
	_, err = s.Stat(ctx, "/z/f")
	require.NoError(t, err)
	_, err = s.Stat(ctx, "/ab")
	require.NoError(t, err, "/ab must not be moved along with /a")

	err = s.Move(ctx, "/z", "/c")
	require.True(t, errors.Is(err, ErrExists), "expected ErrExists, got %v", err)
}

func TestMemStoreFailureInjectionAndCallCounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	boom := errors.New("boom")

	s.FailNext(OpMakeDirectory, boom)
	_, err := s.MakeDirectory(ctx, "/d")
	require.ErrorIs(t, err, boom)

	_, err = s.MakeDirectory(ctx, "/d")
	require.NoError(t, err)
	require.Equal(t, 2, s.Calls(OpMakeDirectory))

	_, err = s.MakeDirectory(ctx, "/missing/d")
	require.ErrorIs(t, err, ErrNotFound)
}
