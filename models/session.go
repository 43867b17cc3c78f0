package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Step enumerates the positions of the transaction-recording conversation.
// The flow is linear with two conditional detours: the subcategory step is
// visited only for expenses, the comment-text step only when the user chose
// to leave a comment.
type Step int

const (
	// StepIdle means no conversation is in progress. The engine never stores
	// a state in this step; it is the zero value used for "nothing here".
	StepIdle Step = iota

	// StepKind waits for the expense/income choice.
	StepKind

	// StepCategory waits for a category pick from the resolved set.
	StepCategory

	// StepSubcategory waits for a subcategory pick. Reached only when the
	// draft kind is expense and the chosen category has subcategories.
	StepSubcategory

	// StepAmount waits for a free-text amount.
	StepAmount

	// StepCommentChoice waits for the yes/no comment decision.
	StepCommentChoice

	// StepCommentText waits for the free-text comment. Reached only after a
	// "yes" at StepCommentChoice.
	StepCommentText

	// StepAwaitingWrite means the draft is finalized but the spreadsheet
	// hand-off failed; the same finalized draft may be retried without
	// re-asking the user.
	StepAwaitingWrite
)

// String returns a short human-readable step name for logs.
func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepKind:
		return "kind"
	case StepCategory:
		return "category"
	case StepSubcategory:
		return "subcategory"
	case StepAmount:
		return "amount"
	case StepCommentChoice:
		return "comment_choice"
	case StepCommentText:
		return "comment_text"
	case StepAwaitingWrite:
		return "awaiting_write"
	default:
		return "unknown"
	}
}

// TransactionDraft accumulates the fields of a transaction while the
// conversation is in progress. Fields are only meaningful for steps that have
// already been passed; the engine's transition table is the sole writer.
type TransactionDraft struct {
	// Kind is set after StepKind.
	Kind TransactionKind `json:"kind"`

	// Category is set after StepCategory.
	Category string `json:"category"`

	// Subcategory is set after StepSubcategory; empty for income drafts.
	Subcategory string `json:"subcategory,omitempty"`

	// Amount is set after StepAmount.
	Amount decimal.Decimal `json:"amount"`

	// Comment is set after StepCommentText; empty when the user declined.
	Comment string `json:"comment,omitempty"`
}

// ConversationState is one user's position in the recording flow plus the
// accumulated draft. It is transient: losing it only costs the user a
// restart. Owned exclusively by the session engine and mutated only through
// its transitions.
type ConversationState struct {
	// UserID is the owning Telegram user identifier.
	UserID int64 `json:"user_id"`

	// Step is the current conversation position.
	Step Step `json:"step"`

	// Draft holds the fields collected so far.
	Draft TransactionDraft `json:"draft"`

	// Pending is the finalized transaction awaiting a spreadsheet retry.
	// Non-nil only in StepAwaitingWrite.
	Pending *Transaction `json:"-"`

	// StartedAt is the conversation creation instant.
	StartedAt time.Time `json:"started_at"`

	// UpdatedAt is bumped on every accepted input; the janitor uses it for
	// inactivity detection.
	UpdatedAt time.Time `json:"updated_at"`
}
