package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vaxledger/internal/record/models"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/sentinel"
)

type RecordStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *RecordStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *RecordStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func TestRecordStoreSuite(t *testing.T) {
	suite.Run(t, new(RecordStoreSuite))
}

func (s *RecordStoreSuite) newRecord(name string, parentID id.Identity) *models.ChildRecord {
	dob := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	record, err := models.NewChildRecord(name, dob, "Parent", "parent@example.org", parentID, id.NewIdentity(), "City Clinic", "", time.Now())
	s.Require().NoError(err)
	return record
}

func (s *RecordStoreSuite) newEntry(childID id.ChildID, vaccine string) models.VaccinationEntry {
	entry, err := models.NewVaccinationEntry(childID, vaccine, "B-001", time.Time{}, "", id.NewIdentity(), "City Clinic", time.Now())
	s.Require().NoError(err)
	return entry
}

func (s *RecordStoreSuite) TestCreateChild() {
	s.Run("assigns sequential identifiers starting at one", func() {
		first, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)
		second, err := s.store.CreateChild(s.ctx, s.newRecord("Ben", id.NewIdentity()))
		s.Require().NoError(err)

		s.Equal(id.ChildID(1), first.ID)
		s.Equal(id.ChildID(2), second.ID)
	})

	s.Run("rejected creation consumes no identifier", func() {
		_, err := s.store.CreateChild(s.ctx, &models.ChildRecord{Name: "Ghost"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidParent))

		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)
		s.Equal(id.ChildID(1), created.ID)
	})

	s.Run("mints the ownership token to the parent", func() {
		parentID := id.NewIdentity()
		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", parentID))
		s.Require().NoError(err)

		owner, err := s.store.OwnerOf(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(parentID, owner)
	})

	s.Run("does not alias the caller's record", func() {
		record := s.newRecord("Ana", id.NewIdentity())
		created, err := s.store.CreateChild(s.ctx, record)
		s.Require().NoError(err)

		record.Name = "Mutated"
		found, err := s.store.FindChild(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("Ana", found.Name)
	})
}

func (s *RecordStoreSuite) TestFindChild() {
	s.Run("returns ErrNotFound for an unknown identifier", func() {
		_, err := s.store.FindChild(s.ctx, id.ChildID(42))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned record is a copy", func() {
		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)

		found, err := s.store.FindChild(s.ctx, created.ID)
		s.Require().NoError(err)
		found.ContactInfo = "scribbled"

		again, err := s.store.FindChild(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("parent@example.org", again.ContactInfo)
	})
}

func (s *RecordStoreSuite) TestExecuteChild() {
	s.Run("applies the mutation when validation passes", func() {
		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)

		updated, err := s.store.ExecuteChild(s.ctx, created.ID,
			func(c *models.ChildRecord) error { return nil },
			func(c *models.ChildRecord) { c.ContactInfo = "new@example.org" },
		)
		s.Require().NoError(err)
		s.Equal("new@example.org", updated.ContactInfo)

		found, err := s.store.FindChild(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("new@example.org", found.ContactInfo)
	})

	s.Run("leaves the record untouched when validation fails", func() {
		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)

		rejection := dErrors.New(dErrors.CodeNotTokenOwner, "not yours")
		_, err = s.store.ExecuteChild(s.ctx, created.ID,
			func(c *models.ChildRecord) error { return rejection },
			func(c *models.ChildRecord) { c.ContactInfo = "never" },
		)
		s.Require().ErrorIs(err, rejection)

		found, err := s.store.FindChild(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("parent@example.org", found.ContactInfo)
	})

	s.Run("returns ErrNotFound for an unknown identifier", func() {
		_, err := s.store.ExecuteChild(s.ctx, id.ChildID(42),
			func(c *models.ChildRecord) error { return nil },
			func(c *models.ChildRecord) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RecordStoreSuite) TestAppendVaccination() {
	s.Run("positions count up from zero in append order", func() {
		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)

		first, err := s.store.AppendVaccination(s.ctx, created.ID, s.newEntry(created.ID, "BCG"), time.Time{})
		s.Require().NoError(err)
		second, err := s.store.AppendVaccination(s.ctx, created.ID, s.newEntry(created.ID, "OPV-1"), time.Time{})
		s.Require().NoError(err)

		s.Equal(0, first)
		s.Equal(1, second)

		history, err := s.store.History(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Require().Len(history, 2)
		s.Equal("BCG", history[0].Vaccine)
		s.Equal("OPV-1", history[1].Vaccine)
	})

	s.Run("records the reminder only when a due time is given", func() {
		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)

		dueAt := time.Now().Add(28 * 24 * time.Hour)
		_, err = s.store.AppendVaccination(s.ctx, created.ID, s.newEntry(created.ID, "BCG"), dueAt)
		s.Require().NoError(err)
		_, err = s.store.AppendVaccination(s.ctx, created.ID, s.newEntry(created.ID, "OPV-1"), time.Time{})
		s.Require().NoError(err)

		reminders, err := s.store.Reminders(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Require().Len(reminders, 1)
		s.True(reminders[0].Equal(dueAt))
	})

	s.Run("returns ErrNotFound for an unknown identifier", func() {
		_, err := s.store.AppendVaccination(s.ctx, id.ChildID(42), s.newEntry(42, "BCG"), time.Time{})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned history is a copy", func() {
		created, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", id.NewIdentity()))
		s.Require().NoError(err)
		_, err = s.store.AppendVaccination(s.ctx, created.ID, s.newEntry(created.ID, "BCG"), time.Time{})
		s.Require().NoError(err)

		history, err := s.store.History(s.ctx, created.ID)
		s.Require().NoError(err)
		history[0].Vaccine = "scribbled"

		again, err := s.store.History(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal("BCG", again[0].Vaccine)
	})
}

func (s *RecordStoreSuite) TestParentIndex() {
	s.Run("lists a parent's children in creation order", func() {
		parentID := id.NewIdentity()
		first, err := s.store.CreateChild(s.ctx, s.newRecord("Ana", parentID))
		s.Require().NoError(err)
		_, err = s.store.CreateChild(s.ctx, s.newRecord("Other", id.NewIdentity()))
		s.Require().NoError(err)
		second, err := s.store.CreateChild(s.ctx, s.newRecord("Ben", parentID))
		s.Require().NoError(err)

		children, err := s.store.ChildrenOf(s.ctx, parentID)
		s.Require().NoError(err)
		s.Equal([]id.ChildID{first.ID, second.ID}, children)
	})

	s.Run("unknown parent has no children", func() {
		children, err := s.store.ChildrenOf(s.ctx, id.NewIdentity())
		s.Require().NoError(err)
		s.Empty(children)
	})

	s.Run("OwnerOf returns ErrNotFound for an unknown identifier", func() {
		_, err := s.store.OwnerOf(s.ctx, id.ChildID(42))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
