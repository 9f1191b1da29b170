package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bananamath/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	st, err := New(s.ctx, ":memory:")
	s.Require().NoError(err)
	s.storage = st
}

func (s *StorageSuite) TearDownTest() {
	_ = s.storage.Close()
}

func (s *StorageSuite) TestSaveAndLoad() {
	s.Require().NoError(s.storage.Save(s.ctx, "profiles", "user-1", []byte{0x01, 0x02}))

	blob, err := s.storage.Load(s.ctx, "profiles", "user-1")
	s.Require().NoError(err)
	s.Equal([]byte{0x01, 0x02}, blob)
}

func (s *StorageSuite) TestSaveUpserts() {
	s.Require().NoError(s.storage.Save(s.ctx, "profiles", "k", []byte("old")))
	s.Require().NoError(s.storage.Save(s.ctx, "profiles", "k", []byte("new")))

	blob, err := s.storage.Load(s.ctx, "profiles", "k")
	s.Require().NoError(err)
	s.Equal("new", string(blob))
}

func (s *StorageSuite) TestLoadMissing() {
	_, err := s.storage.Load(s.ctx, "profiles", "absent")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *StorageSuite) TestListAndDelete() {
	s.Require().NoError(s.storage.Save(s.ctx, "saves", "u/b", []byte("1")))
	s.Require().NoError(s.storage.Save(s.ctx, "saves", "u/a", []byte("2")))
	s.Require().NoError(s.storage.Save(s.ctx, "profiles", "u", []byte("3")))

	keys, err := s.storage.List(s.ctx, "saves")
	s.Require().NoError(err)
	s.Equal([]string{"u/a", "u/b"}, keys)

	s.Require().NoError(s.storage.Delete(s.ctx, "saves", "u/a"))
	keys, err = s.storage.List(s.ctx, "saves")
	s.Require().NoError(err)
	s.Equal([]string{"u/b"}, keys)
}

func (s *StorageSuite) TestListEmptyNamespace() {
	keys, err := s.storage.List(s.ctx, "none")
	s.Require().NoError(err)
	s.Empty(keys)
}

func (s *StorageSuite) TestReopenFileKeepsData() {
	path := filepath.Join(s.T().TempDir(), "game.db")

	first, err := New(s.ctx, path)
	s.Require().NoError(err)
	s.Require().NoError(first.Save(s.ctx, "saves", "k", []byte("v")))
	s.Require().NoError(first.Close())

	second, err := New(s.ctx, path)
	s.Require().NoError(err)
	defer second.Close()

	blob, err := second.Load(s.ctx, "saves", "k")
	s.Require().NoError(err)
	s.Equal("v", string(blob))
}
