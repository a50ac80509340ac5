package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mthuyet/trello-app/board"
)

func TestCreateBoardInvitation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	invitee := f.user(t, "invitee@example.com")
	b := f.board(t, owner.ID)
	ctx := context.Background()

	inv, err := f.invitations.CreateBoardInvitation(ctx, owner.ID, CreateInvitationInput{
		BoardID:      b.ID,
		InviteeEmail: "invitee@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, board.InvitationPending, inv.Status)
	assert.Equal(t, invitee.ID, inv.InviteeID)
	assert.Equal(t, EventInvitationCreated, f.pub.last(t).message.Type)
}

func TestCreateBoardInvitationRejections(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	member := f.user(t, "member@example.com")
	stranger := f.user(t, "stranger@example.com")
	b := f.board(t, owner.ID)
	f.addMember(t, b.ID, member.ID)
	ctx := context.Background()

	t.Run("unknown invitee", func(t *testing.T) {
		var notFoundErr *NotFoundError
		_, err := f.invitations.CreateBoardInvitation(ctx, owner.ID, CreateInvitationInput{
			BoardID:      b.ID,
			InviteeEmail: "nobody@example.com",
		})
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("inviter must be a member", func(t *testing.T) {
		var permissionErr *PermissionError
		_, err := f.invitations.CreateBoardInvitation(ctx, stranger.ID, CreateInvitationInput{
			BoardID:      b.ID,
			InviteeEmail: "member@example.com",
		})
		require.ErrorAs(t, err, &permissionErr)
	})

	t.Run("invitee already a member", func(t *testing.T) {
		var conflictErr *ConflictError
		_, err := f.invitations.CreateBoardInvitation(ctx, owner.ID, CreateInvitationInput{
			BoardID:      b.ID,
			InviteeEmail: "member@example.com",
		})
		require.ErrorAs(t, err, &conflictErr)
	})
}

func TestAcceptInvitation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	invitee := f.user(t, "invitee@example.com")
	b := f.board(t, owner.ID)
	ctx := context.Background()

	inv, err := f.invitations.CreateBoardInvitation(ctx, owner.ID, CreateInvitationInput{
		BoardID:      b.ID,
		InviteeEmail: "invitee@example.com",
	})
	require.NoError(t, err)

	updated, err := f.invitations.UpdateBoardInvitation(ctx, invitee.ID, inv.ID, board.InvitationAccepted)
	require.NoError(t, err)
	assert.Equal(t, board.InvitationAccepted, updated.Status)

	boardAfter, err := f.store.FindBoardByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Contains(t, boardAfter.MemberIDs, invitee.ID)
	assert.Equal(t, EventMemberJoined, f.pub.last(t).message.Type)

	t.Run("resolved invitations are terminal", func(t *testing.T) {
		var conflictErr *ConflictError
		_, err := f.invitations.UpdateBoardInvitation(ctx, invitee.ID, inv.ID, board.InvitationRejected)
		require.ErrorAs(t, err, &conflictErr)
	})
}

func TestRejectInvitation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	invitee := f.user(t, "invitee@example.com")
	b := f.board(t, owner.ID)
	ctx := context.Background()

	inv, err := f.invitations.CreateBoardInvitation(ctx, owner.ID, CreateInvitationInput{
		BoardID:      b.ID,
		InviteeEmail: "invitee@example.com",
	})
	require.NoError(t, err)

	updated, err := f.invitations.UpdateBoardInvitation(ctx, invitee.ID, inv.ID, board.InvitationRejected)
	require.NoError(t, err)
	assert.Equal(t, board.InvitationRejected, updated.Status)

	// Rejection never grants membership.
	boardAfter, err := f.store.FindBoardByID(ctx, b.ID)
	require.NoError(t, err)
	assert.NotContains(t, boardAfter.MemberIDs, invitee.ID)
}

func TestOnlyInviteeResolvesInvitation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	f.user(t, "invitee@example.com")
	b := f.board(t, owner.ID)
	ctx := context.Background()

	inv, err := f.invitations.CreateBoardInvitation(ctx, owner.ID, CreateInvitationInput{
		BoardID:      b.ID,
		InviteeEmail: "invitee@example.com",
	})
	require.NoError(t, err)

	var permissionErr *PermissionError
	_, err = f.invitations.UpdateBoardInvitation(ctx, owner.ID, inv.ID, board.InvitationAccepted)
	require.ErrorAs(t, err, &permissionErr)
}

func TestGetInvitationsAttachesRelations(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	invitee := f.user(t, "invitee@example.com")
	b := f.board(t, owner.ID)
	ctx := context.Background()

	_, err := f.invitations.CreateBoardInvitation(ctx, owner.ID, CreateInvitationInput{
		BoardID:      b.ID,
		InviteeEmail: "invitee@example.com",
	})
	require.NoError(t, err)

	list, err := f.invitations.GetInvitations(ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Board)
	assert.Equal(t, b.ID, list[0].Board.ID)
	require.NotNil(t, list[0].Inviter)
	assert.Equal(t, owner.ID, list[0].Inviter.ID)
}
