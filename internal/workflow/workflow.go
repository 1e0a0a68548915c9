// Package workflow implements the approval lifecycle shared by service
// records, job cards and inspections. Entities embed Record and drive it
// through the transition methods; persistence stays with the owning
// service, which must pair every transition with a conditional UPDATE on
// the source state so racing approvals fail instead of double-applying.
package workflow

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type State string

const (
	StateDraft    State = "draft"
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateArchived State = "archived"
)

var (
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
	ErrReasonTooShort         = errors.New("rejection_reason_too_short")
)

// MinRejectionReasonLen is the minimum length of a rejection reason after
// trimming surrounding whitespace.
const MinRejectionReasonLen = 10

// Record carries the workflow fields of an approvable entity. It is
// embedded flat into the owning gorm model.
type Record struct {
	Status               State         `gorm:"type:text;not null;default:draft" json:"status"`
	SubmittedBy          *snowflake.ID `gorm:"index" json:"submitted_by,omitempty"`
	SubmittedAt          *time.Time    `json:"submitted_at,omitempty"`
	ApprovedBy           *snowflake.ID `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time    `json:"approved_at,omitempty"`
	RejectionReason      *string       `gorm:"type:text" json:"rejection_reason,omitempty"`
	PreviousSubmissionID *snowflake.ID `json:"previous_submission_id,omitempty"`
}

// CanBeEdited reports whether the record may still be modified.
func (r *Record) CanBeEdited() bool {
	return r.Status == StateDraft || r.Status == StateRejected
}

// Submit moves a draft to pending. Any other source state fails with
// ErrInvalidStateTransition and leaves the record untouched.
func (r *Record) Submit(actor snowflake.ID, now time.Time) error {
	if r.Status != StateDraft {
		return ErrInvalidStateTransition
	}
	r.Status = StatePending
	r.SubmittedBy = &actor
	r.SubmittedAt = &now
	return nil
}

// Resubmit moves a rejected record back to pending, clearing the prior
// decision fields. The rejection reason is kept for history.
func (r *Record) Resubmit(actor snowflake.ID, now time.Time) error {
	if r.Status != StateRejected {
		return ErrInvalidStateTransition
	}
	r.Status = StatePending
	r.SubmittedBy = &actor
	r.SubmittedAt = &now
	r.ApprovedBy = nil
	r.ApprovedAt = nil
	return nil
}

// Approve moves a pending record to approved. Side effects belong to the
// owning entity service and must share the same transaction.
func (r *Record) Approve(actor snowflake.ID, now time.Time) error {
	if r.Status != StatePending {
		return ErrInvalidStateTransition
	}
	r.Status = StateApproved
	r.ApprovedBy = &actor
	r.ApprovedAt = &now
	return nil
}

// Reject moves a pending record to rejected. ApprovedBy records the
// rejecting user. A reason shorter than MinRejectionReasonLen fails with
// ErrReasonTooShort and no mutation.
func (r *Record) Reject(actor snowflake.ID, reason string, now time.Time) error {
	if r.Status != StatePending {
		return ErrInvalidStateTransition
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < MinRejectionReasonLen {
		return ErrReasonTooShort
	}
	r.Status = StateRejected
	r.ApprovedBy = &actor
	r.ApprovedAt = &now
	r.RejectionReason = &reason
	return nil
}

// Archive retires an approved record. Archived is terminal.
func (r *Record) Archive() error {
	if r.Status != StateApproved {
		return ErrInvalidStateTransition
	}
	r.Status = StateArchived
	return nil
}
