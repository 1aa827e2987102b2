package accounts

import (
	"context"
	"sort"
	"strings"

	"medconnect-server/internal/models"
)

// Partition stores the accounts of a single role.
type Partition interface {
	Role() models.Role
	// Create persists a new account. Implementations return
	// models.ErrDuplicateEmail when the email is taken in this partition.
	Create(ctx context.Context, account models.Account) error
	// FindByID and FindByEmail return models.ErrNotFound on a miss.
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	Save(ctx context.Context, account models.Account) error
	// List returns one page of matching accounts and the total match count.
	List(ctx context.Context, q Query) ([]models.Account, int64, error)
	Count(ctx context.Context, f Filter) (int64, error)
}

// Sort orders account listings.
type Sort string

const (
	SortCreatedDesc Sort = "createdAt_desc"
	SortRatingDesc  Sort = "rating_desc"
	SortNameAsc     Sort = "name_asc"
)

// Filter narrows account listings. Role-specific fields are ignored for
// partitions that do not carry them.
type Filter struct {
	IDs        []string
	IsActive   *bool
	IsVerified *bool
	Search     string

	// Doctor
	HospitalID     string
	Specialization string
	Department     string

	// Doctor and hospital
	MinRating *float64

	// Hospital
	Type   string
	City   string
	State  string
	Is24x7 *bool
}

// Query is a filtered, sorted and paged listing request.
type Query struct {
	Filter Filter
	Sort   Sort
	Limit  int
	Offset int
}

// Match reports whether an account satisfies the filter. In-process
// partitions use it; database partitions translate the filter to queries.
func (f Filter) Match(account models.Account) bool {
	b := account.Base()
	if len(f.IDs) > 0 && !contains(f.IDs, b.ID) {
		return false
	}
	if f.IsActive != nil && b.IsActive != *f.IsActive {
		return false
	}
	if f.IsVerified != nil && b.IsVerified != *f.IsVerified {
		return false
	}

	search := strings.ToLower(f.Search)
	matchesSearch := search == "" ||
		strings.Contains(strings.ToLower(b.Name), search) ||
		strings.Contains(b.Email, search)

	switch a := account.(type) {
	case *models.Doctor:
		if f.HospitalID != "" && a.HospitalID != f.HospitalID {
			return false
		}
		if f.Specialization != "" && !strings.EqualFold(a.Specialization, f.Specialization) {
			return false
		}
		if f.Department != "" && !strings.EqualFold(a.Department, f.Department) {
			return false
		}
		if !ratingAtLeast(a.Rating, f.MinRating) {
			return false
		}
		matchesSearch = matchesSearch || (search != "" && strings.Contains(strings.ToLower(a.Specialization), search))
	case *models.Hospital:
		if f.Type != "" && !strings.EqualFold(a.Type, f.Type) {
			return false
		}
		if f.City != "" && !strings.EqualFold(a.City, f.City) {
			return false
		}
		if f.State != "" && !strings.EqualFold(a.State, f.State) {
			return false
		}
		if f.Is24x7 != nil && a.Is24x7 != *f.Is24x7 {
			return false
		}
		if !ratingAtLeast(a.Rating, f.MinRating) {
			return false
		}
		matchesSearch = matchesSearch || (search != "" &&
			(strings.Contains(strings.ToLower(a.HospitalName), search) ||
				strings.Contains(strings.ToLower(a.City), search)))
	}
	return matchesSearch
}

// SortAccounts orders accounts in place.
func SortAccounts(list []models.Account, s Sort) {
	sort.SliceStable(list, func(i, j int) bool {
		bi, bj := list[i].Base(), list[j].Base()
		switch s {
		case SortRatingDesc:
			ri, rj := rating(list[i]), rating(list[j])
			if ri != rj {
				return ri > rj
			}
		case SortNameAsc:
			return strings.ToLower(bi.Name) < strings.ToLower(bj.Name)
		}
		return bi.CreatedAt.After(bj.CreatedAt)
	})
}

// Page applies offset and limit to an already filtered slice.
func Page(list []models.Account, limit, offset int) []models.Account {
	if offset >= len(list) {
		return []models.Account{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func rating(a models.Account) float64 {
	switch v := a.(type) {
	case *models.Doctor:
		if v.Rating != nil {
			return *v.Rating
		}
	case *models.Hospital:
		if v.Rating != nil {
			return *v.Rating
		}
	}
	return -1
}

func ratingAtLeast(r, min *float64) bool {
	if min == nil {
		return true
	}
	return r != nil && *r >= *min
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
