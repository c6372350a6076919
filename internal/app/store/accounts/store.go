// internal/app/store/accounts/store.go
package accountstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Collection holds account profiles, keyed by identity id.
const Collection = "users"

var (
	errNoID    = errors.New("account id is required")
	errBadRole = errors.New(`role must be "user"|"officer"|"admin"`)
)

type Store struct {
	ds docstore.Store
}

func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Create inserts a profile under the identity id. Officers without a status
// start pending; the status field is cleared for other roles.
func (s *Store) Create(ctx context.Context, a models.Account) (models.Account, error) {
	if a.ID == "" {
		return models.Account{}, apperr.Validation(errNoID.Error(), "id")
	}
	if !a.Role.Valid() {
		return models.Account{}, apperr.Validation(errBadRole.Error(), "role")
	}
	a.Email = normalize.Email(a.Email)
	a.Name = normalize.Name(a.Name)
	if a.Role == models.RoleOfficer {
		if a.Status == "" {
			a.Status = models.AdmissionPending
		}
	} else {
		a.Status = ""
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := s.ds.Create(ctx, Collection, a); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// GetByID loads a profile. A missing profile is an apperr not-found error.
func (s *Store) GetByID(ctx context.Context, id string) (models.Account, error) {
	rec, err := s.ds.Get(ctx, Collection, id)
	if err != nil {
		return models.Account{}, err
	}
	var a models.Account
	if err := docstore.Decode(rec, &a); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// GetByEmail finds a profile by email, or returns not-found.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	recs, err := s.ds.Query(ctx, Collection, docstore.Where("email", docstore.OpEq, normalize.Email(email)))
	if err != nil {
		return models.Account{}, err
	}
	if len(recs) == 0 {
		return models.Account{}, apperr.NotFound("account")
	}
	var a models.Account
	if err := docstore.Decode(recs[0], &a); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

// ListByRole returns accounts with the role in insertion order.
func (s *Store) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	recs, err := s.ds.Query(ctx, Collection, docstore.Where("role", docstore.OpEq, string(role)))
	if err != nil {
		return nil, err
	}
	return docstore.DecodeAll[models.Account](recs)
}

// ListOfficers returns officers ordered by ward then name, optionally
// filtered by effective admission status. An empty status lists all.
func (s *Store) ListOfficers(ctx context.Context, status models.AdmissionStatus) ([]models.Account, error) {
	all, err := s.ListByRole(ctx, models.RoleOfficer)
	if err != nil {
		return nil, err
	}
	out := make([]models.Account, 0, len(all))
	for _, a := range all {
		if status == "" || a.Admission() == status {
			out = append(out, a)
		}
	}
	SortOfficers(out)
	return out, nil
}

// SortOfficers orders by ward label then display name. Ward labels compare
// by number when both are "Ward N".
func SortOfficers(list []models.Account) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Ward != list[j].Ward {
			return wardLess(list[i].Ward, list[j].Ward)
		}
		return list[i].DisplayName() < list[j].DisplayName()
	})
}

// SetStatus persists an officer's admission status.
func (s *Store) SetStatus(ctx context.Context, id string, status models.AdmissionStatus) error {
	return s.ds.Update(ctx, Collection, id, bson.M{"status": string(status)})
}

// ProfileUpdate holds the editable profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	Address  *string
	PhotoURL *string
}

// UpdateProfile applies the non-nil fields.
func (s *Store) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = normalize.Name(*upd.Name)
	}
	if upd.Phone != nil {
		set["phone"] = normalize.Name(*upd.Phone)
	}
	if upd.Address != nil {
		set["address"] = normalize.Name(*upd.Address)
	}
	if upd.PhotoURL != nil {
		set["photoURL"] = *upd.PhotoURL
	}
	if len(set) == 0 {
		return nil
	}
	return s.ds.Update(ctx, Collection, id, set)
}

// SetRole changes an account's role. Promoting to admin clears ward scope.
func (s *Store) SetRole(ctx context.Context, id string, role models.Role) error {
	if !role.Valid() {
		return apperr.Validation(errBadRole.Error(), "role")
	}
	set := bson.M{"role": string(role)}
	if role == models.RoleAdmin {
		set["ward"] = ""
		set["zoneId"] = ""
		set["zoneName"] = ""
		set["status"] = ""
	}
	return s.ds.Update(ctx, Collection, id, set)
}
