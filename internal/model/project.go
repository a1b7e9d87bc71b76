package model

import "time"

// Role is the membership state of a user within one project.
type Role string

const (
	RoleNone     Role = "NONE"
	RoleMember   Role = "MEMBER"
	RoleApprover Role = "APPROVER"
)

// Project groups users and documents. CreatorID is set once at creation and
// CreatedAt is stamped exactly once, at first persistence.
//
// MemberIDs and ApproverIDs may overlap right after Create/Update (the input
// lists are taken as given); every later role change goes through SetRole,
// which keeps the two sets mutually exclusive from then on.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatorID   string    `json:"creator_id"`
	MemberIDs   []string  `json:"member_ids"`
	ApproverIDs []string  `json:"approver_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleOf reports the membership state of userID in this project.
// A user present in both sets is reported as approver.
func (p *Project) RoleOf(userID string) Role {
	if contains(p.ApproverIDs, userID) {
		return RoleApprover
	}
	if contains(p.MemberIDs, userID) {
		return RoleMember
	}
	return RoleNone
}

// SetRole is the only mutation path for the member/approver sets. It moves
// userID to the target state and removes it from the other set, so a single
// call can never leave a user in both. Setting the current role is a no-op.
func (p *Project) SetRole(userID string, role Role) {
	switch role {
	case RoleMember:
		p.ApproverIDs = remove(p.ApproverIDs, userID)
		if !contains(p.MemberIDs, userID) {
			p.MemberIDs = append(p.MemberIDs, userID)
		}
	case RoleApprover:
		p.MemberIDs = remove(p.MemberIDs, userID)
		if !contains(p.ApproverIDs, userID) {
			p.ApproverIDs = append(p.ApproverIDs, userID)
		}
	case RoleNone:
		p.MemberIDs = remove(p.MemberIDs, userID)
		p.ApproverIDs = remove(p.ApproverIDs, userID)
	}
}

// RevokeMember removes userID from the member set only. A user who is also
// an approver (possible right after creation) keeps that role. No-op when the
// user is not a member.
func (p *Project) RevokeMember(userID string) {
	if contains(p.ApproverIDs, userID) {
		p.SetRole(userID, RoleApprover)
		return
	}
	p.SetRole(userID, RoleNone)
}

// RevokeApprover removes userID from the approver set only, keeping a
// creation-time member role if present. No-op when the user is not an approver.
func (p *Project) RevokeApprover(userID string) {
	if contains(p.MemberIDs, userID) {
		p.SetRole(userID, RoleMember)
		return
	}
	p.SetRole(userID, RoleNone)
}

// CanRead reports whether userID may read documents of this project:
// the creator always can, members and approvers can.
func (p *Project) CanRead(userID string) bool {
	return p.CreatorID == userID || p.RoleOf(userID) != RoleNone
}

// CanApprove reports whether userID is in the approver set.
func (p *Project) CanApprove(userID string) bool {
	return p.RoleOf(userID) == RoleApprover
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
