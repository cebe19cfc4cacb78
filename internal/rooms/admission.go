package rooms

import (
	"context"
	"errors"
	"fmt"

	"github.com/softgeniusinnovations/code-editor-server/internal/models"
	"github.com/softgeniusinnovations/code-editor-server/internal/storage"
)

// JoinDecision is the outcome of one join attempt.
type JoinDecision int

const (
	// Admitted: the user may enter the live session now.
	Admitted JoinDecision = iota
	// Pending: a membership record exists but awaits owner approval.
	// No live session is created.
	Pending
	// Rejected: terminal for this attempt (ban, inactive or deleted
	// room). Reason carries the human-readable message.
	Rejected
)

type JoinRequest struct {
	RoomID   string
	RoomName string
	Username string
	Password string
}

type JoinResult struct {
	Decision    JoinDecision
	Reason      string
	IsOwner     bool
	RoomCreated bool
}

// Admission decides, per (room, user) join attempt, whether the user is
// admitted, left pending, or rejected, and mutates persistent
// membership accordingly. It never touches the live session registry;
// the caller registers a session only after an Admitted result.
type Admission struct {
	svc     *Service
	rooms   storage.RoomStore
	members storage.MemberStore
}

func NewAdmission(svc *Service, rooms storage.RoomStore, members storage.MemberStore) *Admission {
	return &Admission{svc: svc, rooms: rooms, members: members}
}

// Join evaluates the admission rules in order; the first match wins.
// Any storage error aborts the attempt before a session can exist.
func (a *Admission) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	room, err := a.rooms.Get(ctx, req.RoomID)
	if errors.Is(err, storage.ErrRoomNotFound) {
		// Unknown room: create it on the fly, requester becomes owner
		// and is admitted outright.
		outcome, err := a.svc.CreateRoom(ctx, req.RoomID, req.RoomName, req.Password, req.Username)
		if err != nil {
			return nil, err
		}
		if outcome == CreateRefused {
			return &JoinResult{Decision: Rejected, Reason: "This room is no longer available"}, nil
		}
		if outcome == CreateExists {
			// Lost a create race; the room exists now, evaluate the
			// normal rules against it.
			return a.Join(ctx, req)
		}
		return &JoinResult{Decision: Admitted, IsOwner: true, RoomCreated: true}, nil
	}
	if err != nil {
		return nil, err
	}

	member, err := a.members.Get(ctx, req.RoomID, req.Username)
	if err != nil && !errors.Is(err, storage.ErrMemberNotFound) {
		return nil, err
	}

	// Ban wins over everything, including a stale active flag.
	if member != nil && member.IsBanned {
		return &JoinResult{Decision: Rejected, Reason: banMessage(member)}, nil
	}

	// The owner always gets in, and an owner join resurrects an
	// inactive or soft-deleted room.
	if room.OwnerName == req.Username {
		if !room.IsActive || room.IsDelete {
			if err := a.rooms.UpdateFlags(ctx, req.RoomID, true, false); err != nil {
				return nil, err
			}
		}
		if err := a.ensureActiveMember(ctx, req.RoomID, req.Username, member); err != nil {
			return nil, err
		}
		return &JoinResult{Decision: Admitted, IsOwner: true}, nil
	}

	if room.IsDelete {
		return &JoinResult{Decision: Rejected, Reason: "This room is no longer available"}, nil
	}
	if !room.IsActive {
		return &JoinResult{Decision: Rejected, Reason: "This room is currently inactive"}, nil
	}

	hasPassword := room.PasswordHash != nil

	if member != nil {
		return a.resolveExisting(ctx, req, member, hasPassword)
	}

	// First-time joiner. The insert may lose a race against an
	// identical concurrent join; the uniqueness constraint decides,
	// and the loser proceeds as an existing member.
	newMember := &models.Member{RoomID: req.RoomID, Username: req.Username, IsActive: !hasPassword}
	if err := a.members.Insert(ctx, newMember); err != nil {
		if !errors.Is(err, storage.ErrDuplicateMember) {
			return nil, err
		}
		member, err = a.members.Get(ctx, req.RoomID, req.Username)
		if err != nil {
			return nil, err
		}
		if member.IsBanned {
			return &JoinResult{Decision: Rejected, Reason: banMessage(member)}, nil
		}
		return a.resolveExisting(ctx, req, member, hasPassword)
	}

	if hasPassword {
		return &JoinResult{Decision: Pending, Reason: "Waiting for the room owner to approve your request"}, nil
	}
	return &JoinResult{Decision: Admitted}, nil
}

// resolveExisting applies the repeat-visitor rules: active members come
// straight back in, inactive ones stay pending behind a password and
// are auto-promoted in open rooms.
func (a *Admission) resolveExisting(ctx context.Context, req JoinRequest, member *models.Member, hasPassword bool) (*JoinResult, error) {
	if member.IsActive {
		return &JoinResult{Decision: Admitted}, nil
	}
	if hasPassword {
		return &JoinResult{Decision: Pending, Reason: "Waiting for the room owner to approve your request"}, nil
	}
	if err := a.members.SetActive(ctx, req.RoomID, req.Username, true); err != nil {
		return nil, err
	}
	return &JoinResult{Decision: Admitted}, nil
}

func (a *Admission) ensureActiveMember(ctx context.Context, roomID, username string, member *models.Member) error {
	if member == nil {
		err := a.members.Insert(ctx, &models.Member{RoomID: roomID, Username: username, IsActive: true})
		if err != nil && !errors.Is(err, storage.ErrDuplicateMember) {
			return err
		}
		if errors.Is(err, storage.ErrDuplicateMember) {
			return a.members.SetActive(ctx, roomID, username, true)
		}
		return nil
	}
	if !member.IsActive {
		return a.members.SetActive(ctx, roomID, username, true)
	}
	return nil
}

// ListPending returns members awaiting approval. Owner only.
func (a *Admission) ListPending(ctx context.Context, roomID, requester string) ([]models.PendingUser, error) {
	if err := a.requireOwner(ctx, roomID, requester); err != nil {
		return nil, err
	}
	return a.members.ListPending(ctx, roomID)
}

// Approve flips a pending member to active. Owner only.
func (a *Admission) Approve(ctx context.Context, roomID, requester, target string) error {
	if err := a.requireOwner(ctx, roomID, requester); err != nil {
		return err
	}
	return a.members.SetActive(ctx, roomID, target, true)
}

// Reject removes a pending member's record outright. Rejection is not
// a ban: the user may apply again. Owner only.
func (a *Admission) Reject(ctx context.Context, roomID, requester, target string) error {
	if err := a.requireOwner(ctx, roomID, requester); err != nil {
		return err
	}
	return a.members.Delete(ctx, roomID, target)
}

// Ban marks a member banned with a reason and forces them inactive.
// Owner only.
func (a *Admission) Ban(ctx context.Context, roomID, requester, target, reason string) error {
	if err := a.requireOwner(ctx, roomID, requester); err != nil {
		return err
	}
	return a.members.SetBan(ctx, roomID, target, true, reason)
}

// Unban clears the ban and its reason. The member's active flag is
// left as-is, so behind a password they go through approval again.
// Owner only.
func (a *Admission) Unban(ctx context.Context, roomID, requester, target string) error {
	if err := a.requireOwner(ctx, roomID, requester); err != nil {
		return err
	}
	return a.members.SetBan(ctx, roomID, target, false, "")
}

// SetMemberActive lets the owner flip a member's admitted flag
// directly. Owner only.
func (a *Admission) SetMemberActive(ctx context.Context, roomID, requester, target string, active bool) error {
	if err := a.requireOwner(ctx, roomID, requester); err != nil {
		return err
	}
	return a.members.SetActive(ctx, roomID, target, active)
}

func (a *Admission) requireOwner(ctx context.Context, roomID, requester string) error {
	isOwner, err := a.svc.IsOwner(ctx, roomID, requester)
	if err != nil {
		return err
	}
	if !isOwner {
		return ErrNotOwner
	}
	return nil
}

func banMessage(member *models.Member) string {
	if member.BanReason != nil && *member.BanReason != "" {
		return fmt.Sprintf("You are banned from this room: %s", *member.BanReason)
	}
	return "You are banned from this room"
}
