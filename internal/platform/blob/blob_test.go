package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "namelease/pkg/domain-errors"
)

type BlobSuite struct {
	suite.Suite
	ctx context.Context
}

func TestBlobSuite(t *testing.T) {
	suite.Run(t, new(BlobSuite))
}

func (s *BlobSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *BlobSuite) TestMemoryRoundTrip() {
	store := NewMemory()

	s.Require().NoError(store.Put(s.ctx, "snapshots/a.json", []byte(`{"n":1}`), "application/json"))

	got, err := store.Get(s.ctx, "snapshots/a.json")
	s.Require().NoError(err)
	s.Equal([]byte(`{"n":1}`), got)
	s.Equal(1, store.Len())

	_, err = store.Get(s.ctx, "snapshots/missing.json")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *BlobSuite) TestMemoryCopiesData() {
	store := NewMemory()
	src := []byte("original")
	s.Require().NoError(store.Put(s.ctx, "k", src, ""))

	src[0] = 'X'
	got, err := store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal([]byte("original"), got)
}

func (s *BlobSuite) TestFSRoundTrip() {
	root := s.T().TempDir()
	store, err := NewFS(root)
	s.Require().NoError(err)

	s.Require().NoError(store.Put(s.ctx, "snapshots/2026/a.json", []byte("data"), ""))

	got, err := store.Get(s.ctx, "snapshots/2026/a.json")
	s.Require().NoError(err)
	s.Equal([]byte("data"), got)

	// The object lands where the key says, with no stray temp file.
	_, statErr := os.Stat(filepath.Join(root, "snapshots", "2026", "a.json"))
	s.NoError(statErr)
	_, statErr = os.Stat(filepath.Join(root, "snapshots", "2026", "a.json.tmp"))
	s.True(os.IsNotExist(statErr))
}

func (s *BlobSuite) TestFSRejectsTraversal() {
	store, err := NewFS(s.T().TempDir())
	s.Require().NoError(err)

	for _, key := range []string{"", "/etc/passwd", "../escape", "a/../../escape"} {
		err := store.Put(s.ctx, key, []byte("x"), "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), "key %q", key)
	}
}

func (s *BlobSuite) TestFSOverwrite() {
	store, err := NewFS(s.T().TempDir())
	s.Require().NoError(err)

	s.Require().NoError(store.Put(s.ctx, "k.json", []byte("v1"), ""))
	s.Require().NoError(store.Put(s.ctx, "k.json", []byte("v2"), ""))

	got, err := store.Get(s.ctx, "k.json")
	s.Require().NoError(err)
	s.Equal([]byte("v2"), got)
}
