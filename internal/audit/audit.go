// Package audit records workflow transitions and derives the notification
// badge deltas each transition produces.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names a recorded transition.
type Action string

const (
	ActionCreate       Action = "create"
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionSeen         Action = "seen"
	ActionResend       Action = "resend"
	ActionAttachSigned Action = "attach_signed"
	ActionTimeline     Action = "timeline"
	ActionStamp        Action = "stamp"
	ActionDelete       Action = "delete"
)

// Entity names the kind of record an entry refers to.
const (
	EntityApproval = "approval"
	EntityDocument = "document"
)

// Notification badge roles.
const (
	RoleRequester = "requester"
	RoleManager   = "manager"
)

// Delta is a change to one user's notification badge count.
type Delta struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Delta  int       `json:"delta"`
}

// Entry is one recorded transition.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Action     Action    `json:"action"`
	Actor      string    `json:"actor"`
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   *string   `json:"to_status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Deltas     []Delta   `json:"deltas"`
	CreatedAt  time.Time `json:"created_at"`
}

// Emitter records audit entries. Implementations assign ID and CreatedAt
// when they are unset.
type Emitter interface {
	Record(ctx context.Context, entry Entry) error
}

// Deltas returns the badge changes caused by action on a request between
// requester and manager. A new request adds to the manager's pending queue,
// a decision moves the badge from manager to requester, and the requester
// seeing the decision clears it.
func Deltas(action Action, requester, manager uuid.UUID) []Delta {
	switch action {
	case ActionCreate, ActionResend:
		return []Delta{{UserID: manager, Role: RoleManager, Delta: 1}}
	case ActionApprove, ActionReject:
		return []Delta{
			{UserID: manager, Role: RoleManager, Delta: -1},
			{UserID: requester, Role: RoleRequester, Delta: 1},
		}
	case ActionSeen:
		return []Delta{{UserID: requester, Role: RoleRequester, Delta: -1}}
	default:
		return nil
	}
}

// Net sums the deltas that apply to user.
func Net(deltas []Delta, user uuid.UUID) int {
	total := 0
	for _, d := range deltas {
		if d.UserID == user {
			total += d.Delta
		}
	}
	return total
}

func (e *Entry) stamp(now time.Time) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.Deltas == nil {
		e.Deltas = []Delta{}
	}
}
