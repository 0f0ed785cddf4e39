package logbook_test

import (
	"context"
	"testing"
	"time"

	"gmp-logbook/internal/apperr"
	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/logbook"
	"gmp-logbook/internal/models"
	"gmp-logbook/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var start = time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	svc   *logbook.Service
	audit *audit.Recorder
	clock *testutil.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(start)
	rec := audit.NewRecorder(db, clock.Now)
	return &fixture{
		db:    db,
		svc:   logbook.NewService(db, rec, clock.Now),
		audit: rec,
		clock: clock,
	}
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, f.db.First(&u, "id = ?", id).Error)
	return &u
}

func (f *fixture) auditCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.audit.Count(context.Background())
	require.NoError(t, err)
	return n
}

func (f *fixture) entryCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Entry{}).Count(&n).Error)
	return n
}

func TestCreateEntry_WrongSignatureChangesNothing(t *testing.T) {
	f := newFixture(t)
	marie := f.user(t, "U01")

	_, err := f.svc.CreateEntry(context.Background(), marie, logbook.CreateEntryInput{
		TargetID:   "EQ001",
		Activity:   models.ActivityCleaning,
		Comment:    "Nettoyage après lot 42",
		Credential: "wrong",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	assert.Equal(t, int64(0), f.entryCount(t))
	assert.Equal(t, int64(0), f.auditCount(t))
}

func TestCreateEntry_SignedWithCorrectCredential(t *testing.T) {
	f := newFixture(t)
	marie := f.user(t, "U01")

	entry, err := f.svc.CreateEntry(context.Background(), marie, logbook.CreateEntryInput{
		TargetID:   "EQ001",
		Activity:   models.ActivityCleaning,
		Comment:    "Nettoyage après lot 42",
		Credential: "op123",
	})
	require.NoError(t, err)

	assert.True(t, entry.Signed)
	assert.Equal(t, models.StatusDraft, entry.Status)
	assert.Equal(t, "Réacteur R-101", entry.TargetName)
	assert.Equal(t, models.TargetEquipment, entry.TargetKind)
	assert.Equal(t, "Marie Dupont", entry.UserName)
	assert.Equal(t, models.RoleOperator, entry.UserRole)
	assert.Equal(t, start, entry.CreatedAt)
	assert.Empty(t, entry.EditHistory)

	logs, err := f.audit.List(context.Background(), audit.ListOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, audit.ActionEntryCreated, logs[0].Action)
	assert.Equal(t, "Marie Dupont", logs[0].Actor)
	assert.Equal(t, "Réacteur R-101 – nettoyage", logs[0].Detail)
	assert.Equal(t, entry.ID, logs[0].EntityID)
}

func TestCreateEntry_SignedOnlyWhenRequired(t *testing.T) {
	tests := []struct {
		name       string
		activity   models.Activity
		credential string
		wantSigned bool
		wantErr    error
	}{
		{"usage ignores credential", models.ActivityUsage, "op123", false, nil},
		{"usage without credential", models.ActivityUsage, "", false, nil},
		{"incident without credential", models.ActivityIncident, "", false, nil},
		{"calibration signed", models.ActivityCalibration, "op123", true, nil},
		{"maintenance signed", models.ActivityMaintenance, "op123", true, nil},
		{"calibration missing credential", models.ActivityCalibration, "", false, apperr.ErrAuthentication},
		{"maintenance wrong credential", models.ActivityMaintenance, "mt123", false, apperr.ErrAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			entry, err := f.svc.CreateEntry(context.Background(), f.user(t, "U01"), logbook.CreateEntryInput{
				TargetID:   "RM001",
				Activity:   tt.activity,
				Credential: tt.credential,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, entry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSigned, entry.Signed)
			assert.Equal(t, models.TargetRoom, entry.TargetKind)
		})
	}
}

func TestCreateEntry_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateEntry(ctx, f.user(t, "U03"), logbook.CreateEntryInput{TargetID: "EQ001", Activity: models.ActivityUsage})
	assert.ErrorIs(t, err, apperr.ErrAuthorization, "quality cannot write entries")

	_, err = f.svc.CreateEntry(ctx, f.user(t, "U01"), logbook.CreateEntryInput{TargetID: "EQ001", Activity: "polissage"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreateEntry(ctx, f.user(t, "U01"), logbook.CreateEntryInput{TargetID: "EQ999", Activity: models.ActivityUsage})
	assert.ErrorIs(t, err, logbook.ErrTargetNotFound)

	_, err = f.svc.CreateEntry(ctx, nil, logbook.CreateEntryInput{TargetID: "EQ001", Activity: models.ActivityUsage})
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	assert.Equal(t, int64(0), f.entryCount(t))
	assert.Equal(t, int64(0), f.auditCount(t))
}

func TestEditEntry_AppendsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	marie := f.user(t, "U01")

	entry, err := f.svc.CreateEntry(ctx, marie, logbook.CreateEntryInput{
		TargetID: "EQ002",
		Activity: models.ActivityUsage,
		Comment:  "Analyse lot 7",
	})
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	edited, err := f.svc.EditEntry(ctx, marie, entry.ID, logbook.EditEntryInput{
		Activity:   models.ActivityCleaning,
		Comment:    "Nettoyage colonne",
		Reason:     "Correction erreur de saisie",
		Credential: "op123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ActivityCleaning, edited.Activity)
	assert.Equal(t, "Nettoyage colonne", edited.Comment)
	assert.True(t, edited.Signed)
	assert.Equal(t, models.StatusDraft, edited.Status)
	assert.Equal(t, entry.CreatedAt, edited.CreatedAt)

	first := models.EntryEdit{
		Seq:           1,
		Editor:        "Marie Dupont",
		EditedAt:      start.Add(10 * time.Minute),
		Reason:        "Correction erreur de saisie",
		PriorComment:  "Analyse lot 7",
		PriorActivity: models.ActivityUsage,
	}
	ignore := func(p cmp.Path) bool {
		name := p.Last().String()
		return name == ".ID" || name == ".EntryID"
	}
	require.Len(t, edited.EditHistory, 1)
	assert.Empty(t, cmp.Diff(first, edited.EditHistory[0], cmp.FilterPath(ignore, cmp.Ignore())))

	f.clock.Advance(5 * time.Minute)
	again, err := f.svc.EditEntry(ctx, marie, entry.ID, logbook.EditEntryInput{
		Activity: models.ActivityUsage,
		Comment:  "Analyse lot 7 bis",
		Reason:   "Retour à l'activité initiale",
	})
	require.NoError(t, err)

	require.Len(t, again.EditHistory, 2)
	assert.Empty(t, cmp.Diff(edited.EditHistory[0], again.EditHistory[0]), "earlier history must not change")
	assert.Equal(t, 2, again.EditHistory[1].Seq)
	assert.Equal(t, models.ActivityCleaning, again.EditHistory[1].PriorActivity)
	assert.Equal(t, "Nettoyage colonne", again.EditHistory[1].PriorComment)
	assert.False(t, again.Signed, "usage never carries a signature")

	logs, err := f.audit.List(ctx, audit.ListOptions{Ascending: true})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, audit.ActionEntryCreated, logs[0].Action)
	assert.Equal(t, audit.ActionEntryModified, logs[1].Action)
	assert.Equal(t, audit.ActionEntryModified, logs[2].Action)
}

func TestEditEntry_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	marie := f.user(t, "U01")

	entry, err := f.svc.CreateEntry(ctx, marie, logbook.CreateEntryInput{TargetID: "EQ001", Activity: models.ActivityUsage, Comment: "x"})
	require.NoError(t, err)
	before := f.auditCount(t)

	tests := []struct {
		name    string
		actor   *models.User
		id      string
		in      logbook.EditEntryInput
		wantErr error
	}{
		{"missing reason", marie, entry.ID, logbook.EditEntryInput{Activity: models.ActivityUsage}, apperr.ErrValidation},
		{"blank reason", marie, entry.ID, logbook.EditEntryInput{Activity: models.ActivityUsage, Reason: "   "}, apperr.ErrValidation},
		{"not the author", f.user(t, "U02"), entry.ID, logbook.EditEntryInput{Activity: models.ActivityUsage, Reason: "r"}, apperr.ErrAuthorization},
		{"bad signature", marie, entry.ID, logbook.EditEntryInput{Activity: models.ActivityCalibration, Reason: "r", Credential: "nope"}, apperr.ErrAuthentication},
		{"unknown entry", marie, "missing", logbook.EditEntryInput{Activity: models.ActivityUsage, Reason: "r"}, apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.EditEntry(ctx, tt.actor, tt.id, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := f.svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, got.EditHistory)
	assert.Equal(t, "x", got.Comment)
	assert.Equal(t, before, f.auditCount(t))
}

func TestApproveEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.CreateEntry(ctx, f.user(t, "U01"), logbook.CreateEntryInput{
		TargetID:   "EQ001",
		Activity:   models.ActivityCleaning,
		Credential: "op123",
	})
	require.NoError(t, err)

	_, err = f.svc.ApproveEntry(ctx, f.user(t, "U01"), entry.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	_, err = f.svc.ApproveEntry(ctx, f.user(t, "U02"), entry.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	f.clock.Advance(time.Hour)
	approved, err := f.svc.ApproveEntry(ctx, f.user(t, "U03"), entry.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "Sophie Bernard", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.True(t, approved.ApprovedAt.Equal(start.Add(time.Hour)))

	logs, err := f.audit.List(ctx, audit.ListOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, audit.ActionEntryApproved, logs[0].Action)
	assert.Equal(t, "Sophie Bernard", logs[0].Actor)
	assert.Equal(t, "Entrée "+entry.ID, logs[0].Detail)
}

func TestApproveEntry_IsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	marie := f.user(t, "U01")

	entry, err := f.svc.CreateEntry(ctx, marie, logbook.CreateEntryInput{TargetID: "EQ001", Activity: models.ActivityUsage})
	require.NoError(t, err)
	_, err = f.svc.ApproveEntry(ctx, f.user(t, "U03"), entry.ID)
	require.NoError(t, err)

	_, err = f.svc.ApproveEntry(ctx, f.user(t, "U04"), entry.ID)
	assert.ErrorIs(t, err, apperr.ErrState)

	_, err = f.svc.EditEntry(ctx, marie, entry.ID, logbook.EditEntryInput{Activity: models.ActivityUsage, Reason: "late fix"})
	assert.ErrorIs(t, err, apperr.ErrState)

	got, err := f.svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sophie Bernard", got.ApprovedBy, "first approval is kept")
	assert.Equal(t, int64(2), f.auditCount(t))

	_, err = f.svc.ApproveEntry(ctx, f.user(t, "U03"), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAuditCountMatchesMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	marie := f.user(t, "U01")
	jean := f.user(t, "U02")
	admin := f.user(t, "U04")

	var ops int64
	for i := 0; i < 3; i++ {
		e, err := f.svc.CreateEntry(ctx, marie, logbook.CreateEntryInput{TargetID: "EQ001", Activity: models.ActivityUsage})
		require.NoError(t, err)
		ops++
		_, err = f.svc.EditEntry(ctx, marie, e.ID, logbook.EditEntryInput{Activity: models.ActivityIncident, Reason: "précision"})
		require.NoError(t, err)
		ops++
		_, err = f.svc.ApproveEntry(ctx, admin, e.ID)
		require.NoError(t, err)
		ops++
	}
	_, err := f.svc.CreateEntry(ctx, jean, logbook.CreateEntryInput{TargetID: "RM002", Activity: models.ActivityMaintenance, Credential: "mt123"})
	require.NoError(t, err)
	ops++
	_, err = f.svc.CreateEquipment(ctx, admin, logbook.EquipmentInput{Name: "Lyophilisateur L-01"})
	require.NoError(t, err)
	ops++

	// отказ не пишет в аудит
	_, err = f.svc.CreateEntry(ctx, jean, logbook.CreateEntryInput{TargetID: "RM002", Activity: models.ActivityMaintenance, Credential: "bad"})
	require.Error(t, err)

	assert.Equal(t, ops, f.auditCount(t))
}
