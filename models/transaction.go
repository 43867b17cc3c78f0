// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind discriminates the two directions of a recorded transaction.
type TransactionKind string

const (
	// KindExpense is money leaving the user's pocket. Expense transactions
	// carry a category and may carry a subcategory.
	KindExpense TransactionKind = "expense"

	// KindIncome is money coming in. Income transactions carry a category
	// only; the subcategory step is skipped entirely.
	KindIncome TransactionKind = "income"
)

// Transaction is the finalized, immutable record produced when a conversation
// reaches completion. It is handed to the spreadsheet writer and never
// mutated afterwards.
type Transaction struct {
	// ID is a server-assigned unique identifier of the record.
	ID string `json:"id"`

	// UserID is the owning Telegram user identifier.
	UserID int64 `json:"user_id"`

	// Kind is the transaction direction.
	Kind TransactionKind `json:"kind"`

	// Category is the category name chosen by the user.
	Category string `json:"category"`

	// Subcategory is the chosen subcategory. Empty for income transactions
	// and for expense categories without subcategories.
	Subcategory string `json:"subcategory,omitempty"`

	// Amount is the positive transaction amount with at most two fraction
	// digits.
	Amount decimal.Decimal `json:"amount"`

	// Comment is the optional free-text note.
	Comment string `json:"comment,omitempty"`

	// RecordedAt is the completion instant of the conversation.
	RecordedAt time.Time `json:"recorded_at"`
}
