package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxledger/internal/audit"
	hospitalservice "vaxledger/internal/hospital/service"
	hospitalstore "vaxledger/internal/hospital/store"
	"vaxledger/internal/record/store"
	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/requestcontext"
)

func TestVaccinationCountAndHasVaccine(t *testing.T) {
	f := newFixture(t)
	ctx := callerCtx(f.hospital)
	record := f.registerChild(t, ctx, "Ana", id.NewIdentity())

	for _, vaccine := range []string{"BCG", "OPV-1", "OPV-2"} {
		_, _, err := f.svc.RecordVaccination(ctx, record.ID, vaccine, "B1", time.Time{}, "")
		require.NoError(t, err)
	}

	count, err := f.svc.VaccinationCount(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	history, err := f.svc.History(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "BCG", history[0].Vaccine)
	assert.Equal(t, "OPV-2", history[2].Vaccine)

	has, err := f.svc.HasVaccine(ctx, record.ID, "OPV-1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = f.svc.HasVaccine(ctx, record.ID, "opv-1")
	require.NoError(t, err)
	assert.False(t, has, "matching is byte-exact")

	_, err = f.svc.VaccinationCount(ctx, id.ChildID(99))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUpcomingVaccinationsWindow(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	ctx := callerCtxAt(f.hospital, at)
	record := f.registerChild(t, ctx, "Ana", id.NewIdentity())

	doses := []struct {
		vaccine string
		nextDue time.Time
	}{
		{vaccine: "NoFollowUp", nextDue: time.Time{}},
		{vaccine: "DueNow", nextDue: at},
		{vaccine: "DueSoon", nextDue: at.Add(time.Second)},
		{vaccine: "DueAtHorizon", nextDue: at.Add(30 * 24 * time.Hour)},
		{vaccine: "DueBeyondHorizon", nextDue: at.Add(30*24*time.Hour + time.Second)},
	}
	for _, dose := range doses {
		_, _, err := f.svc.RecordVaccination(ctx, record.ID, dose.vaccine, "B1", dose.nextDue, "")
		require.NoError(t, err)
	}

	upcoming, err := f.svc.UpcomingVaccinations(requestcontext.WithTime(ctx, at), record.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "DueSoon", upcoming[0].Vaccine)
	assert.Equal(t, "DueAtHorizon", upcoming[1].Vaccine)
}

func TestVerificationSummary(t *testing.T) {
	f := newFixture(t)
	ctx := callerCtx(f.hospital)
	record := f.registerChild(t, ctx, "Ana", id.NewIdentity()) // born testDOB

	for i := 0; i < 6; i++ {
		_, _, err := f.svc.RecordVaccination(ctx, record.ID, fmt.Sprintf("dose-%d", i), "B1", time.Time{}, "")
		require.NoError(t, err)
	}

	t.Run("six doses cover a six-week-old", func(t *testing.T) {
		now := testDOB.AddDate(0, 0, 42)
		summary, err := f.svc.GenerateVerificationSummary(requestcontext.WithTime(ctx, now), record.ID)
		require.NoError(t, err)

		assert.True(t, summary.UpToDate, "42 days old expects 6 doses")
		assert.Equal(t, 6, summary.TotalVaccinations)
		assert.Equal(t, "Ana", summary.ChildName)
		expected := fmt.Sprintf("VAX|%s|Ana|6|UPTODATE|%d", record.ID, now.Unix())
		assert.Equal(t, expected, summary.QRData)
	})

	t.Run("six doses fall behind at twelve weeks", func(t *testing.T) {
		now := testDOB.AddDate(0, 0, 84)
		summary, err := f.svc.GenerateVerificationSummary(requestcontext.WithTime(ctx, now), record.ID)
		require.NoError(t, err)

		assert.False(t, summary.UpToDate, "84 days old expects 9 doses")
		expected := fmt.Sprintf("VAX|%s|Ana|6|BEHIND|%d", record.ID, now.Unix())
		assert.Equal(t, expected, summary.QRData)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := f.svc.GenerateVerificationSummary(ctx, id.ChildID(99))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestRecordURIAndChildrenOf(t *testing.T) {
	f := newFixture(t)
	ctx := callerCtx(f.hospital)
	parentID := id.NewIdentity()

	first := f.registerChild(t, ctx, "Ana", parentID)
	second := f.registerChild(t, ctx, "Ben", parentID)

	uri, err := f.svc.RecordURI(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://rec", uri)

	children, err := f.svc.ChildrenOf(ctx, parentID)
	require.NoError(t, err)
	assert.Equal(t, []id.ChildID{first.ID, second.ID}, children)

	children, err = f.svc.ChildrenOf(ctx, id.NewIdentity())
	require.NoError(t, err)
	assert.Empty(t, children)
}

// TestLedgerLifecycle walks the whole protocol with the real hospital
// module: registration, authorization, minting, recording and the derived
// views, with the clock pinned at each step.
func TestLedgerLifecycle(t *testing.T) {
	events := audit.NewInMemoryStore()
	authority := id.NewIdentity()
	hospitals := hospitalservice.New(
		hospitalstore.NewInMemoryStore(),
		hospitalstore.NewInMemoryAuthorizationSet(),
		authority,
		audit.NewPublisher(events),
	)
	records := New(store.NewInMemoryStore(), hospitals, audit.NewPublisher(events))

	t0 := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	hospitalID := id.NewIdentity()
	parentID := id.NewIdentity()

	at := func(caller id.Identity, when time.Time) context.Context {
		return requestcontext.WithTime(requestcontext.WithCallerID(context.Background(), caller), when)
	}

	_, err := hospitals.Register(at(hospitalID, t0), "City Clinic", "LIC-001", "clinic@example.org")
	require.NoError(t, err)

	// Registered but not yet authorized.
	_, err = records.RegisterChild(at(hospitalID, t0), "Ana", t0, "Parent", "", parentID, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorizedHospital))

	_, err = hospitals.SetAuthorization(at(authority, t0), hospitalID, true)
	require.NoError(t, err)

	child, err := records.RegisterChild(at(hospitalID, t0), "Ana", t0, "Parent", "", parentID, "")
	require.NoError(t, err)
	assert.Equal(t, id.ChildID(1), child.ID, "the failed attempt consumed no identifier")

	dueAt := t0.AddDate(0, 0, 90)
	_, _, err = records.RecordVaccination(at(hospitalID, t0), child.ID, "BCG", "B1", dueAt, "sha256:ref")
	require.NoError(t, err)

	history, err := records.History(context.Background(), child.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	reminders, err := records.VaccinationReminders(context.Background(), child.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].Equal(dueAt))

	// Thirty days in, the dose is still sixty days out.
	upcoming, err := records.UpcomingVaccinations(at(parentID, t0.AddDate(0, 0, 30)), child.ID)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	// Sixty-five days in, it is twenty-five days out.
	upcoming, err = records.UpcomingVaccinations(at(parentID, t0.AddDate(0, 0, 65)), child.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "BCG", upcoming[0].Vaccine)
	assert.True(t, upcoming[0].DueAt.Equal(dueAt))

	// Ninety-five days in, the due date has passed.
	upcoming, err = records.UpcomingVaccinations(at(parentID, t0.AddDate(0, 0, 95)), child.ID)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	// Revocation closes the write path again.
	_, err = hospitals.SetAuthorization(at(authority, t0), hospitalID, false)
	require.NoError(t, err)
	_, err = records.RegisterChild(at(hospitalID, t0), "Ben", t0, "Parent", "", parentID, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotAuthorizedHospital))
}
