package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/models"
	"gmp-logbook/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecordAndList(t *testing.T) {
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC))
	rec := audit.NewRecorder(db, clock.Now)
	ctx := context.Background()

	events := []audit.Event{
		{Action: audit.ActionLogin, Actor: "Marie Dupont", Entity: "session", EntityID: "U01"},
		{Action: audit.ActionEntryCreated, Actor: "Marie Dupont", Detail: "Réacteur R-101 – utilisation", Entity: "entry", EntityID: "e1",
			Metadata: map[string]any{"targetId": "EQ001", "signed": false}},
		{Action: audit.ActionEntryApproved, Actor: "Sophie Bernard", Detail: "Entrée e1", Entity: "entry", EntityID: "e1"},
	}
	for _, ev := range events {
		_, err := rec.Record(ctx, nil, ev)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	all, err := rec.List(ctx, audit.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, audit.ActionEntryApproved, all[0].Action, "newest first")
	assert.True(t, all[0].CreatedAt.Equal(time.Date(2024, 3, 4, 8, 2, 0, 0, time.UTC)))
	assert.Equal(t, "EQ001", all[1].Metadata["targetId"])

	byActor, err := rec.List(ctx, audit.ListOptions{Actor: "Marie Dupont", Ascending: true})
	require.NoError(t, err)
	require.Len(t, byActor, 2)
	assert.Equal(t, audit.ActionLogin, byActor[0].Action)

	byEntity, err := rec.List(ctx, audit.ListOptions{Entity: "entry", EntityID: "e1"})
	require.NoError(t, err)
	assert.Len(t, byEntity, 2)

	limited, err := rec.List(ctx, audit.ListOptions{Limit: 1, Action: audit.ActionLogin})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	n, err := rec.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRecord_RequiresAction(t *testing.T) {
	rec := audit.NewRecorder(testutil.NewDB(t), nil)
	_, err := rec.Record(context.Background(), nil, audit.Event{Actor: "x"})
	assert.Error(t, err)
}

func TestRecord_RollsBackWithTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	rec := audit.NewRecorder(db, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := rec.Record(ctx, tx, audit.Event{Action: audit.ActionRoomCreated, Actor: "Admin Sys"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&n).Error)
	assert.Zero(t, n)
}
