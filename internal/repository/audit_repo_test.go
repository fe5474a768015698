package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokercrm/internal/domain"
)

func TestQueryByObjects(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	rows := []domain.AuditLog{
		{ObjectType: domain.ObjectDeal, ObjectID: "1", Action: "create", ObjectName: "deal one"},
		{ObjectType: domain.ObjectPolicy, ObjectID: "7", Action: "create", ObjectName: "POL-7"},
		{ObjectType: domain.ObjectDeal, ObjectID: "1", Action: "close", ObjectName: "deal one"},
		{ObjectType: domain.ObjectDeal, ObjectID: "2", Action: "create", ObjectName: "deal two"},
		// same id under a different type must not match a deal ref
		{ObjectType: domain.ObjectTask, ObjectID: "1", Action: "create", ObjectName: "task one"},
	}
	for i := range rows {
		require.NoError(t, repo.Append(ctx, &rows[i]))
	}

	entries, err := repo.QueryByObjects(ctx, []ObjectRef{
		{Type: domain.ObjectDeal, ID: "1"},
		{Type: domain.ObjectPolicy, ID: "7"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// creation order
	assert.Equal(t, "create", entries[0].Action)
	assert.Equal(t, domain.ObjectDeal, entries[0].ObjectType)
	assert.Equal(t, domain.ObjectPolicy, entries[1].ObjectType)
	assert.Equal(t, "close", entries[2].Action)
	assert.True(t, entries[0].ID < entries[1].ID && entries[1].ID < entries[2].ID)
}

func TestQueryByObjects_EmptyRefs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	require.NoError(t, repo.Append(ctx, &domain.AuditLog{
		ObjectType: domain.ObjectDeal, ObjectID: "1", Action: "create",
	}))

	entries, err := repo.QueryByObjects(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
