package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vaxledger/internal/hospital/models"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/sentinel"
)

type HospitalStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *HospitalStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestHospitalStoreSuite(t *testing.T) {
	suite.Run(t, new(HospitalStoreSuite))
}

func (s *HospitalStoreSuite) newHospital(name string) *models.Hospital {
	h, err := models.NewHospital(id.NewIdentity(), name, "LIC-001", "clinic@example.org", time.Now())
	s.Require().NoError(err)
	return h
}

func (s *HospitalStoreSuite) TestSaveAndFind() {
	s.Run("saves and finds by identity", func() {
		hospital := s.newHospital("City Clinic")
		s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

		found, err := s.store.FindByID(s.ctx, hospital.ID)
		s.Require().NoError(err)
		s.Equal(hospital.Name, found.Name)
		s.False(found.Authorized)
	})

	s.Run("returns ErrNotFound for unknown identity", func() {
		_, err := s.store.FindByID(s.ctx, id.NewIdentity())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("save overwrites an existing record", func() {
		hospital := s.newHospital("First Name")
		s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

		hospital.Name = "Corrected Name"
		s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

		found, err := s.store.FindByID(s.ctx, hospital.ID)
		s.Require().NoError(err)
		s.Equal("Corrected Name", found.Name)
	})
}

func (s *HospitalStoreSuite) TestSaveValidate() {
	s.Run("validate sees nil for a never-registered identity", func() {
		hospital := s.newHospital("City Clinic")
		var seen *models.Hospital
		set := false
		s.Require().NoError(s.store.Save(s.ctx, hospital, func(existing *models.Hospital) error {
			seen, set = existing, true
			return nil
		}))
		s.True(set)
		s.Nil(seen)
	})

	s.Run("validate sees the stored record on overwrite", func() {
		hospital := s.newHospital("City Clinic")
		s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

		replacement := *hospital
		replacement.Name = "Corrected Name"
		s.Require().NoError(s.store.Save(s.ctx, &replacement, func(existing *models.Hospital) error {
			s.Require().NotNil(existing)
			s.Equal("City Clinic", existing.Name)
			return nil
		}))
	})

	s.Run("failed validation leaves the store untouched", func() {
		hospital := s.newHospital("City Clinic")
		s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

		replacement := *hospital
		replacement.Name = "Should Not Land"
		err := s.store.Save(s.ctx, &replacement, func(existing *models.Hospital) error {
			return dErrors.New(dErrors.CodeAlreadyRegistered, "rejected")
		})
		s.Require().Error(err)

		found, err := s.store.FindByID(s.ctx, hospital.ID)
		s.Require().NoError(err)
		s.Equal("City Clinic", found.Name)
	})
}

func (s *HospitalStoreSuite) TestFindReturnsCopy() {
	hospital := s.newHospital("City Clinic")
	s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

	found, err := s.store.FindByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	found.Authorized = true

	again, err := s.store.FindByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	s.False(again.Authorized, "mutating a returned record must not leak into the store")
}

func (s *HospitalStoreSuite) TestExecute() {
	s.Run("applies mutation when validation passes", func() {
		hospital := s.newHospital("City Clinic")
		s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

		updated, err := s.store.Execute(s.ctx, hospital.ID,
			func(h *models.Hospital) error { return nil },
			func(h *models.Hospital) { h.Authorized = true },
		)
		s.Require().NoError(err)
		s.True(updated.Authorized)

		found, err := s.store.FindByID(s.ctx, hospital.ID)
		s.Require().NoError(err)
		s.True(found.Authorized)
	})

	s.Run("failed validation leaves record untouched", func() {
		hospital := s.newHospital("Other Clinic")
		s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

		_, err := s.store.Execute(s.ctx, hospital.ID,
			func(h *models.Hospital) error {
				return dErrors.New(dErrors.CodeInvariantViolation, "rejected")
			},
			func(h *models.Hospital) { h.Authorized = true },
		)
		s.Require().Error(err)

		found, err := s.store.FindByID(s.ctx, hospital.ID)
		s.Require().NoError(err)
		s.False(found.Authorized)
	})

	s.Run("returns ErrNotFound for unknown identity", func() {
		_, err := s.store.Execute(s.ctx, id.NewIdentity(),
			func(h *models.Hospital) error { return nil },
			func(h *models.Hospital) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func TestInMemoryAuthorizationSet(t *testing.T) {
	ctx := context.Background()
	set := NewInMemoryAuthorizationSet()
	identity := id.NewIdentity()

	ok, err := set.Contains(ctx, identity)
	if err != nil || ok {
		t.Fatalf("expected empty set, got ok=%v err=%v", ok, err)
	}

	if err := set.Set(ctx, identity, true); err != nil {
		t.Fatal(err)
	}
	ok, err = set.Contains(ctx, identity)
	if err != nil || !ok {
		t.Fatalf("expected member after Set(true), got ok=%v err=%v", ok, err)
	}

	// Idempotent re-add, then removal.
	if err := set.Set(ctx, identity, true); err != nil {
		t.Fatal(err)
	}
	if err := set.Set(ctx, identity, false); err != nil {
		t.Fatal(err)
	}
	ok, err = set.Contains(ctx, identity)
	if err != nil || ok {
		t.Fatalf("expected non-member after Set(false), got ok=%v err=%v", ok, err)
	}
}
