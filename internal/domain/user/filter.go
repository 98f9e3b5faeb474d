package user

import "strings"

// Filter returns the users whose name or email contains query, ignoring case.
// An empty query returns users unchanged.
func Filter(users []User, query string) []User {
	if query == "" {
		return users
	}

	needle := strings.ToLower(query)
	matched := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			matched = append(matched, u)
		}
	}
	return matched
}
