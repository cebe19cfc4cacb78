package rooms_test

import (
	"context"
	"testing"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/registry"
	"github.com/softgeniusinnovations/code-editor-server/internal/rooms"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAdmission() (*rooms.Admission, *rooms.Service, *fakeRoomStore, *fakeMemberStore) {
	roomStore := newFakeRoomStore()
	memberStore := newFakeMemberStore()
	svc := rooms.NewService(roomStore, memberStore, newFakeFileStore(), rooms.NewBcryptHasherWithCost(bcrypt.MinCost))
	adm := rooms.NewAdmission(svc, roomStore, memberStore)
	return adm, svc, roomStore, memberStore
}

func join(t *testing.T, adm *rooms.Admission, roomID, username string) *rooms.JoinResult {
	t.Helper()
	res, err := adm.Join(context.Background(), rooms.JoinRequest{RoomID: roomID, RoomName: roomID, Username: username})
	require.NoError(t, err)
	return res
}

// TestJoinAutoCreatesMissingRoom: joining an unknown room creates it
// on the fly with the requester as admitted owner.
func TestJoinAutoCreatesMissingRoom(t *testing.T) {
	adm, _, roomStore, memberStore := newTestAdmission()
	ctx := context.Background()

	res := join(t, adm, "r1", "alice")
	assert.Equal(t, rooms.Admitted, res.Decision)
	assert.True(t, res.IsOwner)
	assert.True(t, res.RoomCreated)

	room, err := roomStore.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "alice", room.OwnerName)

	member, err := memberStore.Get(ctx, "r1", "alice")
	require.NoError(t, err)
	assert.True(t, member.IsActive)
}

// TestOpenRoomImmediateAdmission covers the open-room flow: both users
// end up admitted right away and the registry holds two live entries.
func TestOpenRoomImmediateAdmission(t *testing.T) {
	adm, svc, _, memberStore := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Demo", "", "alice")
	require.NoError(t, err)

	resAlice := join(t, adm, "r1", "alice")
	assert.Equal(t, rooms.Admitted, resAlice.Decision)
	assert.True(t, resAlice.IsOwner)

	resBob := join(t, adm, "r1", "bob")
	assert.Equal(t, rooms.Admitted, resBob.Decision)
	assert.False(t, resBob.IsOwner)

	bob, err := memberStore.Get(ctx, "r1", "bob")
	require.NoError(t, err)
	assert.True(t, bob.IsActive)

	reg := registry.New()
	reg.Register(registry.Entry{ConnID: "c1", RoomID: "r1", Username: "alice", IsOwner: true})
	reg.Register(registry.Entry{ConnID: "c2", RoomID: "r1", Username: "bob"})
	assert.Len(t, reg.FindByRoom("r1"), 2)
}

// TestPasswordRoomFirstJoinerPending: behind a password a first-time
// joiner gets an inactive membership and no live session.
func TestPasswordRoomFirstJoinerPending(t *testing.T) {
	adm, svc, _, memberStore := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r2", "Secret", "hunter2", "alice")
	require.NoError(t, err)

	res := join(t, adm, "r2", "bob")
	assert.Equal(t, rooms.Pending, res.Decision)

	bob, err := memberStore.Get(ctx, "r2", "bob")
	require.NoError(t, err)
	assert.False(t, bob.IsActive)
	assert.False(t, bob.IsBanned)
}

// TestApproveThenJoinAdmits finishes the gated-room flow: after the
// owner approves, the member is active and the next join admits.
func TestApproveThenJoinAdmits(t *testing.T) {
	adm, svc, _, memberStore := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r2", "Secret", "hunter2", "alice")
	require.NoError(t, err)
	join(t, adm, "r2", "bob")

	require.NoError(t, adm.Approve(ctx, "r2", "alice", "bob"))

	bob, err := memberStore.Get(ctx, "r2", "bob")
	require.NoError(t, err)
	assert.True(t, bob.IsActive)

	res := join(t, adm, "r2", "bob")
	assert.Equal(t, rooms.Admitted, res.Decision)
}

// TestBanSupersedesActive: a ban rejects joins regardless of the
// active flag, and the rejection carries the reason.
func TestBanSupersedesActive(t *testing.T) {
	adm, svc, _, memberStore := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Demo", "", "alice")
	require.NoError(t, err)
	join(t, adm, "r1", "bob")

	require.NoError(t, adm.Ban(ctx, "r1", "alice", "bob", "spam"))

	bob, err := memberStore.Get(ctx, "r1", "bob")
	require.NoError(t, err)
	assert.True(t, bob.IsBanned)
	assert.False(t, bob.IsActive, "a banned member can never stay active")

	res := join(t, adm, "r1", "bob")
	assert.Equal(t, rooms.Rejected, res.Decision)
	assert.Contains(t, res.Reason, "spam")
}

// TestOpenRoomAutoPromotesInactiveMember: open rooms never gate repeat
// visitors; an inactive record flips to active on the next join.
func TestOpenRoomAutoPromotesInactiveMember(t *testing.T) {
	adm, svc, _, memberStore := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Demo", "", "alice")
	require.NoError(t, err)
	require.NoError(t, memberStore.Insert(ctx, &models.Member{RoomID: "r1", Username: "bob", IsActive: false}))

	res := join(t, adm, "r1", "bob")
	assert.Equal(t, rooms.Admitted, res.Decision)

	bob, err := memberStore.Get(ctx, "r1", "bob")
	require.NoError(t, err)
	assert.True(t, bob.IsActive)
}

// TestOwnerJoinReactivatesRoom: the owner joining an inactive,
// soft-deleted room resurrects it as a side effect.
func TestOwnerJoinReactivatesRoom(t *testing.T) {
	adm, svc, roomStore, _ := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Demo", "", "alice")
	require.NoError(t, err)
	require.NoError(t, roomStore.UpdateFlags(ctx, "r1", false, true))

	res := join(t, adm, "r1", "alice")
	assert.Equal(t, rooms.Admitted, res.Decision)
	assert.True(t, res.IsOwner)

	room, err := roomStore.Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, room.IsActive)
	assert.False(t, room.IsDelete)
}

func TestSoftDeletedRoomRejectsNonOwner(t *testing.T) {
	adm, svc, roomStore, _ := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Demo", "", "alice")
	require.NoError(t, err)
	require.NoError(t, roomStore.UpdateFlags(ctx, "r1", true, true))

	res := join(t, adm, "r1", "bob")
	assert.Equal(t, rooms.Rejected, res.Decision)
	assert.Contains(t, res.Reason, "no longer available")
}

func TestInactiveRoomRejectsNonOwner(t *testing.T) {
	adm, svc, roomStore, _ := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Demo", "", "alice")
	require.NoError(t, err)
	require.NoError(t, roomStore.UpdateFlags(ctx, "r1", false, false))

	res := join(t, adm, "r1", "bob")
	assert.Equal(t, rooms.Rejected, res.Decision)
	assert.Contains(t, res.Reason, "currently inactive")
}

// TestRejectDeletesMembership: rejection removes the record outright;
// it is not a ban, so the user may apply again.
func TestRejectDeletesMembership(t *testing.T) {
	adm, svc, _, memberStore := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r2", "Secret", "hunter2", "alice")
	require.NoError(t, err)
	join(t, adm, "r2", "bob")

	require.NoError(t, adm.Reject(ctx, "r2", "alice", "bob"))

	_, err = memberStore.Get(ctx, "r2", "bob")
	assert.ErrorIs(t, err, storage.ErrMemberNotFound)

	res := join(t, adm, "r2", "bob")
	assert.Equal(t, rooms.Pending, res.Decision)
}

// TestBanUnbanRejoinGoesPending walks the full ban cycle in a
// password room: banned join rejected with the reason, unban leaves
// the active flag down, so the rejoin lands back in pending.
func TestBanUnbanRejoinGoesPending(t *testing.T) {
	adm, svc, _, _ := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r2", "Secret", "hunter2", "alice")
	require.NoError(t, err)
	join(t, adm, "r2", "bob")
	require.NoError(t, adm.Approve(ctx, "r2", "alice", "bob"))

	require.NoError(t, adm.Ban(ctx, "r2", "alice", "bob", "spam"))
	res := join(t, adm, "r2", "bob")
	assert.Equal(t, rooms.Rejected, res.Decision)
	assert.Contains(t, res.Reason, "spam")

	require.NoError(t, adm.Unban(ctx, "r2", "alice", "bob"))
	res = join(t, adm, "r2", "bob")
	assert.Equal(t, rooms.Pending, res.Decision, "unban alone does not restore admission")
}

// TestDuplicateInsertTreatedAsExisting: when two first joins race, the
// losing insert hits the uniqueness constraint and must proceed as an
// existing member instead of failing.
func TestDuplicateInsertTreatedAsExisting(t *testing.T) {
	adm, svc, _, memberStore := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Demo", "", "alice")
	require.NoError(t, err)

	memberStore.forceDuplicateOn = "bob"
	memberStore.planted = &models.Member{RoomID: "r1", Username: "bob", IsActive: true}

	res := join(t, adm, "r1", "bob")
	assert.Equal(t, rooms.Admitted, res.Decision)
}

func TestOwnerOnlyOperationsDenied(t *testing.T) {
	adm, svc, _, _ := newTestAdmission()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r2", "Secret", "hunter2", "alice")
	require.NoError(t, err)
	join(t, adm, "r2", "bob")

	_, err = adm.ListPending(ctx, "r2", "bob")
	assert.ErrorIs(t, err, rooms.ErrNotOwner)
	assert.ErrorIs(t, adm.Approve(ctx, "r2", "bob", "bob"), rooms.ErrNotOwner)
	assert.ErrorIs(t, adm.Reject(ctx, "r2", "bob", "bob"), rooms.ErrNotOwner)
	assert.ErrorIs(t, adm.Ban(ctx, "r2", "bob", "alice", "coup"), rooms.ErrNotOwner)
	assert.ErrorIs(t, adm.Unban(ctx, "r2", "bob", "alice"), rooms.ErrNotOwner)
	assert.ErrorIs(t, adm.SetMemberActive(ctx, "r2", "bob", "bob", true), rooms.ErrNotOwner)

	// Denial mutates nothing: bob is still pending.
	pending, err := adm.ListPending(ctx, "r2", "alice")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].Username)
}
