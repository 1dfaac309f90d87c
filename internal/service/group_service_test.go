package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/internal/repository/memory"
	"github.com/robocoin/api/internal/service"
)

func newGroups(store *memory.Store, maxGroups int) service.GroupService {
	return service.NewGroupService(store.Groups(), maxGroups, zerolog.Nop())
}

func TestGroupCreate_Limit(t *testing.T) {
	store := memory.NewStore()
	svc := newGroups(store, 2)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.CreateGroupRequest{Name: "  Alpha  ", Description: "robots"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", created.Name, "names come back trimmed")

	_, err = svc.Create(ctx, &models.CreateGroupRequest{Name: "Beta"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &models.CreateGroupRequest{Name: "Gamma"})
	assert.ErrorIs(t, err, service.ErrGroupLimit)
}

func TestGroupList_WithCounts(t *testing.T) {
	store := memory.NewStore()
	alpha := seedGroup(store, "Alpha")
	beta := seedGroup(store, "Beta")
	seedStudent(store, "Ali", &alpha.ID, dec("0"))
	seedStudent(store, "Bobur", &alpha.ID, dec("0"))

	gone := seedStudent(store, "Ketgan", &alpha.ID, dec("0"))
	gone.IsActive = false
	store.AddUser(gone)

	svc := newGroups(store, 10)

	groups, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Oldest group first; counts cover active members only.
	assert.Equal(t, alpha.ID, groups[0].ID)
	assert.Equal(t, 2, groups[0].StudentCount)
	assert.Equal(t, beta.ID, groups[1].ID)
	assert.Equal(t, 0, groups[1].StudentCount)
}

func TestGroupUpdate(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	svc := newGroups(store, 10)
	ctx := context.Background()

	updated, err := svc.Update(ctx, group.ID, &models.CreateGroupRequest{Name: "Alpha 2", Description: "new"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", updated.Name)
	assert.Equal(t, "new", updated.Description)

	_, err = svc.Update(ctx, uuid.NewString(), &models.CreateGroupRequest{Name: "Yoq"})
	assert.ErrorIs(t, err, service.ErrGroupNotFound)
}

func TestGroupDelete_RefusesNonEmpty(t *testing.T) {
	store := memory.NewStore()
	group := seedGroup(store, "Alpha")
	student := seedStudent(store, "Ali", &group.ID, dec("0"))
	svc := newGroups(store, 10)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, group.ID), service.ErrGroupNotEmpty)

	// Deactivated members do not hold the group open.
	student.IsActive = false
	store.AddUser(student)
	require.NoError(t, svc.Delete(ctx, group.ID))

	assert.ErrorIs(t, svc.Delete(ctx, group.ID), service.ErrGroupNotFound)

	// The member lost their group reference with the delete.
	kept, err := store.Users().GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Nil(t, kept.GroupID)
}
