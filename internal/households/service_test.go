package households

import (
	"context"
	"testing"

	"household-backend/internal/domain"
	"household-backend/internal/pkg/apperrors"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServiceTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory sqlite: every pooled connection is a separate database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Household{}, &domain.HouseholdMember{}, &domain.HouseholdInvitation{}))
	return &Service{DB: db}
}

func TestCreateHousehold_ReturnsEnrichedHousehold(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	assert.Equal(t, "Home", hh.Name)
	assert.Equal(t, "A", hh.CreatedBy)
	assert.Empty(t, hh.PendingInvites)
	require.Len(t, hh.Members, 1)
	assert.Equal(t, "A", hh.Members[0].UserID)
}

func TestCreateHousehold_DuplicateNameSameCreator(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "X"})
	require.NoError(t, err)

	_, err = svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "X"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateEntity(err))
	assert.Equal(t, "Household with name X already exists", err.Error())
}

func TestCreateHousehold_SameNameDifferentCreators(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "X"})
	require.NoError(t, err)
	_, err = svc.CreateHousehold(ctx, "B", CreateHouseholdInput{Name: "X"})
	require.NoError(t, err)

	forA, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	forB, err := svc.GetUserHouseholds(ctx, "B")
	require.NoError(t, err)
	require.Len(t, forA, 1)
	require.Len(t, forB, 1)
}

func TestCreateHousehold_WithInitialInvites(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{
		Name:   "Home",
		Invite: []string{"b@x.com", "c@x.com"},
	})
	require.NoError(t, err)
	require.Len(t, hh.PendingInvites, 2)
	assert.Equal(t, "A", hh.PendingInvites[0].InvitedByUserID)
}

func TestCreateHousehold_SelfInviteRollsBackEverything(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{
		Name:   "Home",
		Invite: []string{"b@x.com", "A"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvitedUserIsOwner(err))

	list, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, list)

	var count int64
	require.NoError(t, svc.DB.Model(&domain.HouseholdInvitation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetUserHouseholds_OnlyOwnOrJoined(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "A's"})
	require.NoError(t, err)
	_, err = svc.CreateHousehold(ctx, "B", CreateHouseholdInput{Name: "B's"})
	require.NoError(t, err)

	forB, err := svc.GetUserHouseholds(ctx, "B")
	require.NoError(t, err)
	require.Len(t, forB, 1)
	assert.Equal(t, "B's", forB[0].Name)
}

func TestGetUserHouseholds_EmptyForNewUser(t *testing.T) {
	svc := setupServiceTest(t)

	list, err := svc.GetUserHouseholds(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetUserHouseholds_MostRecentFirst(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "first"})
	require.NoError(t, err)
	_, err = svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "second"})
	require.NoError(t, err)

	list, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
	assert.Equal(t, "first", list[1].Name)
}

func TestGetHousehold_NotVisibleToStranger(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	_, err = svc.GetHousehold(ctx, "B", hh.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
}

func TestGetHousehold_UnknownID(t *testing.T) {
	svc := setupServiceTest(t)

	_, err := svc.GetHousehold(context.Background(), "A", 42)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Household with id 42 not found", err.Error())
}

func TestUpdateHousehold_RenamesAndRefreshes(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "old"})
	require.NoError(t, err)

	updated, err := svc.UpdateHousehold(ctx, "A", hh.ID, WritableHousehold{Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)
	require.Len(t, updated.Members, 1)

	list, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].Name)
}

func TestUpdateHousehold_NonCreatorGetsNotFound(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	// A stranger and an accepted member both get not found, never forbidden.
	_, err = svc.UpdateHousehold(ctx, "B", hh.ID, WritableHousehold{Name: "taken over"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	joinHousehold(t, svc, hh.ID, "A", "B")
	_, err = svc.UpdateHousehold(ctx, "B", hh.ID, WritableHousehold{Name: "taken over"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	list, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Home", list[0].Name)
}

func TestUpdateHousehold_DuplicateName(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "A"})
	require.NoError(t, err)
	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "B"})
	require.NoError(t, err)

	_, err = svc.UpdateHousehold(ctx, "A", hh.ID, WritableHousehold{Name: "A"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateEntity(err))
}

func TestDeleteHousehold_NonCreatorIsSilentNoop(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHousehold(ctx, "B", hh.ID))

	list, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDeleteHousehold_CreatorDeletesWithCascade(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home", Invite: []string{"b@x.com"}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHousehold(ctx, "A", hh.ID))

	list, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, list)

	var members, invites int64
	require.NoError(t, svc.DB.Model(&domain.HouseholdMember{}).Where("household_id = ?", hh.ID).Count(&members).Error)
	require.NoError(t, svc.DB.Model(&domain.HouseholdInvitation{}).Where("household_id = ?", hh.ID).Count(&invites).Error)
	assert.Zero(t, members)
	assert.Zero(t, invites)
}

func TestInviteUsers_CreatesPendingInvitations(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	invites, err := svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com", "c@x.com"})
	require.NoError(t, err)
	require.Len(t, invites, 2)
	assert.Equal(t, hh.ID, invites[0].HouseholdID)
	assert.Equal(t, "b@x.com", invites[0].InvitedUser)
	assert.Equal(t, "A", invites[0].InvitedByUserID)
}

func TestInviteUsers_OwnerInBatchFailsWithoutPartialInsert(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	_, err = svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com", "A", "c@x.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvitedUserIsOwner(err))

	got, err := svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PendingInvites)
}

func TestInviteUsers_DuplicateInviteIsAllOrNothing(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	_, err = svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com"})
	require.NoError(t, err)

	_, err = svc.InviteUsers(ctx, "A", hh.ID, []string{"c@x.com", "b@x.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateEntity(err))
	assert.Equal(t, "User already invited", err.Error())

	got, err := svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
	require.Len(t, got.PendingInvites, 1)
	assert.Equal(t, "b@x.com", got.PendingInvites[0].InvitedUser)
}

func TestInviteUsers_NonCreatorMemberGetsNotFound(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	joinHousehold(t, svc, hh.ID, "A", "b@x.com")

	_, err = svc.InviteUsers(ctx, "b@x.com", hh.ID, []string{"c@x.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	got, err := svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PendingInvites)
}

func TestInviteUsers_HouseholdNotVisible(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	_, err = svc.InviteUsers(ctx, "B", hh.ID, []string{"c@x.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteInvitation_InviteeAndCreatorMayWithdraw(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	invites, err := svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com", "c@x.com"})
	require.NoError(t, err)

	// Invitee rejects
	require.NoError(t, svc.DeleteInvitation(ctx, "b@x.com", invites[0].ID))
	// Creator withdraws
	require.NoError(t, svc.DeleteInvitation(ctx, "A", invites[1].ID))

	got, err := svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PendingInvites)
}

func TestDeleteInvitation_StrangerIsSilentNoop(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	invites, err := svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInvitation(ctx, "mallory@x.com", invites[0].ID))

	got, err := svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
	require.Len(t, got.PendingInvites, 1)
}

func TestDeleteInvitation_UnknownIDIsSilentNoop(t *testing.T) {
	svc := setupServiceTest(t)
	require.NoError(t, svc.DeleteInvitation(context.Background(), "A", 999))
}

func TestAcceptInvitation_StrangerGetsNotFound(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	invites, err := svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com"})
	require.NoError(t, err)

	err = svc.AcceptInvitation(ctx, "mallory@x.com", invites[0].ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAcceptInvitation_CreatorCannotAcceptForInvitee(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	invites, err := svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com"})
	require.NoError(t, err)

	err = svc.AcceptInvitation(ctx, "A", invites[0].ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, "This invitation is not for you", err.Error())
}

func TestAcceptInvitation_UnknownID(t *testing.T) {
	svc := setupServiceTest(t)

	err := svc.AcceptInvitation(context.Background(), "b@x.com", 7)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Invitation with id 7 not found", err.Error())
}

func TestAcceptInvitation_ConvertsInviteIntoMembership(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	invites, err := svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com"})
	require.NoError(t, err)

	require.NoError(t, svc.AcceptInvitation(ctx, "b@x.com", invites[0].ID))

	got, err := svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PendingInvites)
	require.Len(t, got.Members, 2)

	users := []string{got.Members[0].UserID, got.Members[1].UserID}
	assert.Contains(t, users, "A")
	assert.Contains(t, users, "b@x.com")

	// The household is now visible to the new member.
	forB, err := svc.GetUserHouseholds(ctx, "b@x.com")
	require.NoError(t, err)
	require.Len(t, forB, 1)
	assert.Equal(t, "Home", forB[0].Name)
}

func TestRemoveMember_CreatorRemovesMember(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	memberID := joinHousehold(t, svc, hh.ID, "A", "b@x.com")

	require.NoError(t, svc.RemoveMember(ctx, "A", hh.ID, memberID))

	got, err := svc.GetHousehold(ctx, "A", hh.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, "A", got.Members[0].UserID)
}

func TestRemoveMember_MemberRemovesThemself(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	memberID := joinHousehold(t, svc, hh.ID, "A", "b@x.com")

	require.NoError(t, svc.RemoveMember(ctx, "b@x.com", hh.ID, memberID))

	forB, err := svc.GetUserHouseholds(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Empty(t, forB)
}

func TestRemoveMember_CreatorRowIsPermanent(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, "A", hh.ID, hh.Members[0].ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestRemoveMember_OtherMemberForbidden(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	memberB := joinHousehold(t, svc, hh.ID, "A", "b@x.com")
	joinHousehold(t, svc, hh.ID, "A", "c@x.com")

	err = svc.RemoveMember(ctx, "c@x.com", hh.ID, memberB)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestRemoveMember_UnknownMember(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, "A", hh.ID, 1234)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRemoveMember_HouseholdNotVisible(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, "B", hh.ID, hh.Members[0].ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

// Full lifecycle: create, invite, accept, list from both sides.
func TestInviteAcceptFlow(t *testing.T) {
	svc := setupServiceTest(t)
	ctx := context.Background()

	hh, err := svc.CreateHousehold(ctx, "A", CreateHouseholdInput{Name: "Home"})
	require.NoError(t, err)
	assert.Empty(t, hh.PendingInvites)

	invites, err := svc.InviteUsers(ctx, "A", hh.ID, []string{"b@x.com"})
	require.NoError(t, err)
	require.Len(t, invites, 1)

	require.NoError(t, svc.AcceptInvitation(ctx, "b@x.com", invites[0].ID))

	forA, err := svc.GetUserHouseholds(ctx, "A")
	require.NoError(t, err)
	require.Len(t, forA, 1)
	assert.Equal(t, "Home", forA[0].Name)
	assert.Empty(t, forA[0].PendingInvites)
	require.Len(t, forA[0].Members, 2)
}

// joinHousehold runs the invite/accept flow and returns the new member row id.
func joinHousehold(t *testing.T, svc *Service, householdID int64, creator, user string) int64 {
	t.Helper()
	ctx := context.Background()
	invites, err := svc.InviteUsers(ctx, creator, householdID, []string{user})
	require.NoError(t, err)
	require.NoError(t, svc.AcceptInvitation(ctx, user, invites[0].ID))

	var member domain.HouseholdMember
	require.NoError(t, svc.DB.Where("household_id = ? AND user_id = ?", householdID, user).First(&member).Error)
	return member.ID
}
