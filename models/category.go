package models

// CategoryGroup is one expense category together with its ordered
// subcategories. Subcategory order is meaningful: it determines the order of
// buttons shown to the user.
type CategoryGroup struct {
	// Name is the expense category name, unique within a CategorySet.
	Name string `json:"name" yaml:"name"`

	// Subcategories is the ordered list of subcategory names. May be empty,
	// in which case the flow still asks for a subcategory pick from an
	// empty-free list only when at least one entry exists.
	Subcategories []string `json:"subcategories" yaml:"subcategories"`
}

// CategorySet is the full set of categories one user sees. A user either has
// a stored override set or falls back to the process-wide defaults; the set
// is replaced wholesale on import and deleted on reset, never patched in
// place.
type CategorySet struct {
	// Expense is the ordered list of expense categories with subcategories.
	Expense []CategoryGroup `json:"expense" yaml:"expense"`

	// Income is the ordered list of income category names. Income categories
	// carry no subcategories.
	Income []string `json:"income" yaml:"income"`
}

// ExpenseNames returns the expense category names in display order.
func (s CategorySet) ExpenseNames() []string {
	names := make([]string, 0, len(s.Expense))
	for _, g := range s.Expense {
		names = append(names, g.Name)
	}
	return names
}

// Subcategories returns the ordered subcategories of the named expense
// category, or nil when the category is not part of the set.
func (s CategorySet) Subcategories(category string) []string {
	for _, g := range s.Expense {
		if g.Name == category {
			return g.Subcategories
		}
	}
	return nil
}

// HasExpense reports whether the set contains the named expense category.
func (s CategorySet) HasExpense(category string) bool {
	for _, g := range s.Expense {
		if g.Name == category {
			return true
		}
	}
	return false
}

// HasIncome reports whether the set contains the named income category.
func (s CategorySet) HasIncome(category string) bool {
	for _, name := range s.Income {
		if name == category {
			return true
		}
	}
	return false
}

// HasSubcategory reports whether sub is a subcategory of category.
func (s CategorySet) HasSubcategory(category, sub string) bool {
	for _, name := range s.Subcategories(category) {
		if name == sub {
			return true
		}
	}
	return false
}
