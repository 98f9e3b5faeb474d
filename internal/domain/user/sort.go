package user

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortAccessors maps every sortable field name to its string representation.
var sortAccessors = map[string]func(User) string{
	"id":        func(u User) string { return u.ID },
	"name":      func(u User) string { return u.Name },
	"email":     func(u User) string { return u.Email },
	"role":      func(u User) string { return string(u.Role) },
	"createdAt": func(u User) string { return FormatTimestamp(u.CreatedAt) },
	"updatedAt": func(u User) string { return FormatTimestamp(u.UpdatedAt) },
}

// SortableFields returns the sortable field names in a stable order.
func SortableFields() []string {
	fields := make([]string, 0, len(sortAccessors))
	for f := range sortAccessors {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// SortUsers sorts users in place by field using locale-aware collation.
// Unknown fields leave the slice in its current (insertion) order. The sort is stable.
func SortUsers(users []User, field string, order SortOrder) {
	accessor, ok := sortAccessors[field]
	if !ok || len(users) < 2 {
		return
	}

	// Collator keeps internal buffers and is not safe for concurrent use.
	col := collate.New(language.English)
	slices.SortStableFunc(users, func(a, b User) int {
		if order == OrderDesc {
			return col.CompareString(accessor(b), accessor(a))
		}
		return col.CompareString(accessor(a), accessor(b))
	})
}
