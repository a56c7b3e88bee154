package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_DuplicateEventDropped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityRepository(db.DB)
	ctx := context.Background()

	eventID := uuid.NewString()
	entry := &model.Activity{
		EventID:     eventID,
		GroupID:     1,
		UserID:      2,
		Type:        model.ActivitySettlementConfirmed,
		Description: "settlement confirmed",
	}

	created, err := repo.Create(ctx, entry)
	require.NoError(t, err)
	assert.True(t, created)

	// same event delivered again
	created, err = repo.Create(ctx, entry)
	require.NoError(t, err)
	assert.False(t, created)

	groupID := int64(1)
	entries, total, err := repo.List(ctx, model.ActivityFilter{GroupID: &groupID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, entries, 1)
}

func TestSummaryRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSummaryRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.GroupSettlementSummary{
		GroupID:         1,
		TotalSettled:    dec(t, "10"),
		SettlementCount: 1,
		PendingCount:    2,
	}))
	require.NoError(t, repo.Upsert(ctx, &model.GroupSettlementSummary{
		GroupID:         1,
		TotalSettled:    dec(t, "25.50"),
		SettlementCount: 3,
		PendingCount:    0,
	}))

	got, err := repo.GetByGroup(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.TotalSettled.Equal(dec(t, "25.50")))
	assert.Equal(t, int64(3), got.SettlementCount)
	assert.Equal(t, int64(0), got.PendingCount)

	_, err = repo.GetByGroup(ctx, 99)
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestMembershipRepository_Basics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db.DB)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)
	bob, err := repo.CreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	group, err := repo.CreateGroup(ctx, "trip", alice.ID)
	require.NoError(t, err)

	_, err = repo.AddMember(ctx, group.ID, bob.ID)
	require.NoError(t, err)

	ids, err := repo.ListUserIDs(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID, bob.ID}, ids)

	member, err := repo.IsMember(ctx, group.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, member)

	require.NoError(t, repo.RemoveMember(ctx, group.ID, bob.ID))
	member, err = repo.IsMember(ctx, group.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, member)

	exists, err := repo.GroupExists(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.DeleteGroup(ctx, group.ID))
	exists, err = repo.GroupExists(ctx, group.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
