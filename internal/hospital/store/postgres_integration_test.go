//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vaxledger/internal/hospital/models"
	platformredis "vaxledger/internal/platform/redis"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/sentinel"
	"vaxledger/pkg/testutil/containers"
)

const hospitalSchema = `
CREATE TABLE IF NOT EXISTS hospitals (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    license       TEXT NOT NULL,
    contact       TEXT NOT NULL DEFAULT '',
    authorized    BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMPTZ NOT NULL
);
`

type HospitalPostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func (s *HospitalPostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), hospitalSchema)
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *HospitalPostgresSuite) SetupTest() {
	s.pg.Exec(s.T(), `TRUNCATE hospitals`)
}

func TestHospitalPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	suite.Run(t, new(HospitalPostgresSuite))
}

func (s *HospitalPostgresSuite) newHospital(name string) *models.Hospital {
	h, err := models.NewHospital(id.NewIdentity(), name, "LIC-001", "clinic@example.org", time.Now().UTC())
	s.Require().NoError(err)
	return h
}

func (s *HospitalPostgresSuite) TestSaveAndFind() {
	hospital := s.newHospital("City Clinic")
	s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

	found, err := s.store.FindByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	s.Equal("City Clinic", found.Name)
	s.False(found.Authorized)

	_, err = s.store.FindByID(s.ctx, id.NewIdentity())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *HospitalPostgresSuite) TestSaveOverwrites() {
	hospital := s.newHospital("First Name")
	s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

	hospital.Name = "Corrected Name"
	s.Require().NoError(s.store.Save(s.ctx, hospital, nil))

	found, err := s.store.FindByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	s.Equal("Corrected Name", found.Name)
}

func (s *HospitalPostgresSuite) TestSaveValidate() {
	hospital := s.newHospital("City Clinic")
	s.Require().NoError(s.store.Save(s.ctx, hospital, func(existing *models.Hospital) error {
		s.Nil(existing, "never-registered identity")
		return nil
	}))

	replacement := *hospital
	replacement.Name = "Should Not Land"
	err := s.store.Save(s.ctx, &replacement, func(existing *models.Hospital) error {
		s.Require().NotNil(existing)
		s.Equal("City Clinic", existing.Name)
		return dErrors.New(dErrors.CodeAlreadyRegistered, "rejected")
	})
	s.Require().Error(err)

	found, err := s.store.FindByID(s.ctx, hospital.ID)
	s.Require().NoError(err)
	s.Equal("City Clinic", found.Name, "failed validation rolls the write back")
}

func (s *HospitalPostgresSuite) TestExecute() {
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

	_, err = s.store.Execute(s.ctx, id.NewIdentity(),
		func(h *models.Hospital) error { return nil },
		func(h *models.Hospital) {},
	)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func TestRedisAuthorizationSet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	set := NewRedisAuthorizationSet(&platformredis.Client{Client: rc.Client})

	identity := id.NewIdentity()

	ok, err := set.Contains(ctx, identity)
	require.NoError(t, err)
	require.False(t, ok, "identity should be unauthorized by default")

	require.NoError(t, set.Set(ctx, identity, true))
	ok, err = set.Contains(ctx, identity)
	require.NoError(t, err)
	require.True(t, ok, "identity should be authorized after grant")

	require.NoError(t, set.Set(ctx, identity, false))
	ok, err = set.Contains(ctx, identity)
	require.NoError(t, err)
	require.False(t, ok, "identity should be unauthorized after revocation")
}
