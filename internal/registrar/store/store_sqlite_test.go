package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"namelease/internal/registrar/models"
	id "namelease/pkg/domain"
	"namelease/pkg/platform/sentinel"
)

type SQLiteStoreSuite struct {
	suite.Suite
	store *SQLiteStore
	ctx   context.Context
}

func (s *SQLiteStoreSuite) SetupTest() {
	store, err := NewSQLite(filepath.Join(s.T().TempDir(), "leases.db"))
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
}

func (s *SQLiteStoreSuite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

// TestRoundTrip verifies records survive the SQL encoding unchanged,
// including the timestamp precision expiry math depends on.
func (s *SQLiteStoreSuite) TestRoundTrip() {
	owner := id.NewAccountID()
	registered := time.Date(2026, 5, 17, 23, 59, 59, 123456789, time.UTC)
	lease := &models.Lease{
		Name:          "durable.test",
		Owner:         owner,
		RegisteredAt:  registered,
		DurationYears: 7,
		PaidAmount:    14000,
	}
	s.Require().NoError(s.store.Put(s.ctx, lease))

	found, err := s.store.Find(s.ctx, "durable.test")
	s.Require().NoError(err)
	s.Equal(owner, found.Owner)
	s.True(registered.Equal(found.RegisteredAt), "registration instant must survive storage exactly")
	s.Equal(7, found.DurationYears)
	s.Equal(int64(14000), found.PaidAmount)
}

func (s *SQLiteStoreSuite) TestNotFound() {
	_, err := s.store.Find(s.ctx, "missing.test")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.LoadSettings(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestOverwrite verifies the upsert replaces every field, matching the
// reclaim semantics: nothing from the previous ownership survives.
func (s *SQLiteStoreSuite) TestOverwrite() {
	first := &models.Lease{
		Name:          "contested.test",
		Owner:         id.NewAccountID(),
		RegisteredAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DurationYears: 1,
		PaidAmount:    100,
	}
	s.Require().NoError(s.store.Put(s.ctx, first))

	second := &models.Lease{
		Name:          "contested.test",
		Owner:         id.NewAccountID(),
		RegisteredAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DurationYears: 5,
		PaidAmount:    2500,
	}
	s.Require().NoError(s.store.Put(s.ctx, second))

	found, err := s.store.Find(s.ctx, "contested.test")
	s.Require().NoError(err)
	s.Equal(second.Owner, found.Owner)
	s.True(second.RegisteredAt.Equal(found.RegisteredAt))
	s.Equal(5, found.DurationYears)
	s.Equal(int64(2500), found.PaidAmount)
}

func (s *SQLiteStoreSuite) TestSettingsRoundTrip() {
	admin := id.NewAccountID()
	seeded := time.Date(2026, 1, 1, 8, 30, 0, 0, time.UTC)
	settings, err := models.NewSettings(admin, 1500, 3, seeded)
	s.Require().NoError(err)
	s.Require().NoError(s.store.SaveSettings(s.ctx, settings))

	loaded, err := s.store.LoadSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(admin, loaded.AdminID)
	s.Equal(int64(1500), loaded.PricePerYear)
	s.Equal(int64(3), loaded.RenewalMultiplier)
	s.False(loaded.Paused)
	s.True(seeded.Equal(loaded.UpdatedAt))

	loaded.ApplyPaused(true, seeded.Add(time.Hour))
	s.Require().NoError(s.store.SaveSettings(s.ctx, loaded))

	again, err := s.store.LoadSettings(s.ctx)
	s.Require().NoError(err)
	s.True(again.Paused)
}

func (s *SQLiteStoreSuite) TestDumpLeases() {
	for _, name := range []string{"c.test", "a.test", "b.test"} {
		lease := &models.Lease{
			Name:          name,
			Owner:         id.NewAccountID(),
			RegisteredAt:  time.Now().UTC(),
			DurationYears: 1,
			PaidAmount:    100,
		}
		s.Require().NoError(s.store.Put(s.ctx, lease))
	}

	dump, err := s.store.DumpLeases(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(dump, 3)
	s.Equal("a.test", dump[0].Name)
	s.Equal("b.test", dump[1].Name)
	s.Equal("c.test", dump[2].Name)
}

// TestPersistenceAcrossReopen verifies the data survives closing and
// reopening the same file.
func (s *SQLiteStoreSuite) TestPersistenceAcrossReopen() {
	path := filepath.Join(s.T().TempDir(), "reopen.db")
	store, err := NewSQLite(path)
	s.Require().NoError(err)

	lease := &models.Lease{
		Name:          "persisted.test",
		Owner:         id.NewAccountID(),
		RegisteredAt:  time.Now().UTC(),
		DurationYears: 2,
		PaidAmount:    400,
	}
	s.Require().NoError(store.Put(s.ctx, lease))
	s.Require().NoError(store.Close())

	reopened, err := NewSQLite(path)
	s.Require().NoError(err)
	defer func() { s.Require().NoError(reopened.Close()) }()

	found, err := reopened.Find(s.ctx, "persisted.test")
	s.Require().NoError(err)
	s.Equal(lease.Owner, found.Owner)
}
