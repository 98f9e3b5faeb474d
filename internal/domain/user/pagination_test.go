package user

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeUsers(n int) []User {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := make([]User, n)
	for i := range users {
		users[i] = User{
			ID:        fmt.Sprintf("id-%02d", i),
			Name:      fmt.Sprintf("User %02d", i),
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Role:      RoleUser,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return users
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		perPage    int
		totalPages int
	}{
		{name: "exact multiple", total: 10, perPage: 5, totalPages: 2},
		{name: "remainder", total: 3, perPage: 2, totalPages: 2},
		{name: "empty", total: 0, perPage: 10, totalPages: 0},
		{name: "zero per page", total: 5, perPage: 0, totalPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, 1, tt.perPage)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{name: "defaults", in: PageRequest{}, want: PageRequest{Page: 1, PerPage: 10, Order: OrderAsc}},
		{name: "negative values clamp to one", in: PageRequest{Page: -3, PerPage: -1}, want: PageRequest{Page: 1, PerPage: 1, Order: OrderAsc}},
		{name: "desc kept", in: PageRequest{Page: 2, PerPage: 5, Order: OrderDesc}, want: PageRequest{Page: 2, PerPage: 5, Order: OrderDesc}},
		{name: "unknown order falls back to asc", in: PageRequest{Page: 1, PerPage: 1, Order: "sideways"}, want: PageRequest{Page: 1, PerPage: 1, Order: OrderAsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPaginate_FirstPageInInsertionOrder(t *testing.T) {
	users := makeUsers(3)

	page, meta := Paginate(users, PageRequest{Page: 1, PerPage: 2})

	require.Len(t, page, 2)
	assert.Equal(t, users[0].ID, page[0].ID)
	assert.Equal(t, users[1].ID, page[1].ID)
	assert.Equal(t, Pagination{Page: 1, PerPage: 2, Total: 3, TotalPages: 2}, meta)
}

func TestPaginate_PastEndIsEmpty(t *testing.T) {
	page, meta := Paginate(makeUsers(3), PageRequest{Page: 5, PerPage: 2})

	assert.Empty(t, page)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestPaginate_HugePageIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		req  PageRequest
	}{
		{"product wraps to zero", PageRequest{Page: 288230376151711745, PerPage: 64}},
		{"max page", PageRequest{Page: math.MaxInt, PerPage: 2}},
		{"max page and perPage", PageRequest{Page: math.MaxInt, PerPage: math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, meta := Paginate(makeUsers(3), tt.req)

			assert.Empty(t, page)
			assert.Equal(t, 3, meta.Total)
			assert.Equal(t, tt.req.Page, meta.Page)
		})
	}
}

func TestPaginate_HugePerPageReturnsEverything(t *testing.T) {
	page, meta := Paginate(makeUsers(3), PageRequest{Page: 1, PerPage: math.MaxInt})

	assert.Len(t, page, 3)
	assert.Equal(t, 1, meta.TotalPages)
}

func TestPaginate_EmptyCollection(t *testing.T) {
	page, meta := Paginate(nil, PageRequest{Sort: "name"})

	assert.Empty(t, page)
	assert.Equal(t, Pagination{Page: 1, PerPage: 10, Total: 0, TotalPages: 0}, meta)
}

func TestPaginate_PagesCoverCollectionExactlyOnce(t *testing.T) {
	users := makeUsers(23)

	for _, perPage := range []int{1, 2, 5, 7, 10, 23, 50} {
		for _, order := range []SortOrder{OrderAsc, OrderDesc} {
			t.Run(fmt.Sprintf("perPage=%d/%s", perPage, order), func(t *testing.T) {
				_, first := Paginate(users, PageRequest{Page: 1, PerPage: perPage, Sort: "email", Order: order})
				assert.Equal(t, (len(users)+perPage-1)/perPage, first.TotalPages)

				seen := make(map[string]int)
				count := 0
				for p := 1; p <= first.TotalPages; p++ {
					page, _ := Paginate(users, PageRequest{Page: p, PerPage: perPage, Sort: "email", Order: order})
					count += len(page)
					for _, u := range page {
						seen[u.ID]++
					}
				}

				assert.Equal(t, len(users), count)
				assert.Len(t, seen, len(users))
				for id, n := range seen {
					assert.Equal(t, 1, n, "user %s appeared on more than one page", id)
				}
			})
		}
	}
}

func TestPaginate_DoesNotMutateInput(t *testing.T) {
	users := makeUsers(4)
	users[0].Name = "zed"

	_, _ = Paginate(users, PageRequest{Sort: "name"})

	assert.Equal(t, "zed", users[0].Name)
	assert.Equal(t, "id-00", users[0].ID)
}
