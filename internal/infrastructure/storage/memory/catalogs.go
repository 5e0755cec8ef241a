package memory

import (
	"context"
	"sort"
	"strings"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	corenumerator "stockledger/internal/core/numerator"
	"stockledger/internal/domain/audit"
	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/warehouse"
)

// ProductRepo implements product.Repository.
type ProductRepo struct{ s *Store }

var _ product.Repository = (*ProductRepo)(nil)

// List returns products ordered by id.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	search := strings.ToLower(filter.Search)
	var out []product.Product
	err := r.s.view(ctx, func(st *state) error {
		for _, p := range st.products {
			if search == "" ||
				strings.Contains(strings.ToLower(p.ID), search) ||
				strings.Contains(strings.ToLower(p.Name), search) {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return limit(out, filter.Limit), err
}

// GetByID returns one product.
func (r *ProductRepo) GetByID(ctx context.Context, productID string) (*product.Product, error) {
	var out *product.Product
	err := r.s.view(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID)
		}
		out = &p
		return nil
	})
	return out, err
}

// Create adds a product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	return r.s.update(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return apperror.NewDuplicate("product", "id", p.ID)
		}
		st.products[p.ID] = *p
		return nil
	})
}

// Update replaces descriptive fields.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	return r.s.update(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return apperror.NewNotFound("product", p.ID)
		}
		st.products[p.ID] = *p
		return nil
	})
}

// Delete removes a product no ledger row or level references.
func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	return r.s.update(ctx, func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return apperror.NewNotFound("product", productID)
		}
		if st.productReferenced(productID) {
			return apperror.NewIntegrityViolation("product", productID)
		}
		delete(st.products, productID)
		return nil
	})
}

func (st *state) productReferenced(productID string) bool {
	for k := range st.levels {
		if k.ProductID == productID {
			return true
		}
	}
	for _, i := range st.imports {
		if i.ProductID == productID {
			return true
		}
	}
	for _, e := range st.exports {
		if e.ProductID == productID {
			return true
		}
	}
	for _, t := range st.transfers {
		for _, l := range t.Lines {
			if l.ProductID == productID {
				return true
			}
		}
	}
	return false
}

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct{ s *Store }

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// List returns every warehouse ordered by id.
func (r *WarehouseRepo) List(ctx context.Context) ([]warehouse.Warehouse, error) {
	var out []warehouse.Warehouse
	err := r.s.view(ctx, func(st *state) error {
		for _, w := range st.warehouses {
			out = append(out, w)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// GetByID returns one warehouse.
func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID string) (*warehouse.Warehouse, error) {
	var out *warehouse.Warehouse
	err := r.s.view(ctx, func(st *state) error {
		w, ok := st.warehouses[warehouseID]
		if !ok {
			return apperror.NewNotFound("warehouse", warehouseID)
		}
		out = &w
		return nil
	})
	return out, err
}

// UserRepo implements auth.UserRepository.
type UserRepo struct{ s *Store }

var _ auth.UserRepository = (*UserRepo)(nil)

// Create stores a new account.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	return r.s.update(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Username == user.Username {
				return apperror.NewDuplicate("user", "username", user.Username)
			}
		}
		if wh := user.AssignedWarehouseID; wh != nil {
			if _, ok := st.warehouses[*wh]; !ok {
				return apperror.NewIntegrityViolation("warehouse", *wh)
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

// GetByID returns the account with userID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	var out *auth.User
	err := r.s.view(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return apperror.NewNotFound("user", userID.String())
		}
		out = &u
		return nil
	})
	return out, err
}

// GetByUsername returns the account with username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	var out *auth.User
	err := r.s.view(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Username == username {
				out = &u
				return nil
			}
		}
		return apperror.NewNotFound("user", username)
	})
	return out, err
}

// Update stores login bookkeeping and the password hash.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	return r.s.update(ctx, func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return apperror.NewNotFound("user", user.ID.String())
		}
		st.users[user.ID] = *user
		return nil
	})
}

// Journal implements audit.Journal. Entries roll back with the unit of work.
type Journal struct{ s *Store }

var _ audit.Journal = (*Journal)(nil)

// Record appends entry.
func (j *Journal) Record(ctx context.Context, entry audit.Entry) error {
	return j.s.update(ctx, func(st *state) error {
		st.journal = append(st.journal, entry)
		return nil
	})
}

// Entries returns a copy of the journal.
func (j *Journal) Entries(ctx context.Context) []audit.Entry {
	var out []audit.Entry
	_ = j.s.view(ctx, func(st *state) error {
		out = append(out, st.journal...)
		return nil
	})
	return out
}

// CodeFinder implements numerator.LastCodeFinder.
type CodeFinder struct{ s *Store }

var _ corenumerator.LastCodeFinder = (*CodeFinder)(nil)

// LastCode returns the greatest code of series. Longer codes sort first.
func (f *CodeFinder) LastCode(ctx context.Context, series corenumerator.Series) (string, error) {
	var last string
	err := f.s.view(ctx, func(st *state) error {
		consider := func(code string) {
			if len(code) > len(last) || (len(code) == len(last) && code > last) {
				last = code
			}
		}
		switch series {
		case corenumerator.SeriesImport:
			for _, i := range st.imports {
				consider(i.ID)
			}
		case corenumerator.SeriesExport:
			for _, e := range st.exports {
				consider(e.ID)
			}
		case corenumerator.SeriesTransfer:
			for _, t := range st.transfers {
				consider(t.ID)
			}
		case corenumerator.SeriesProduct:
			for code := range st.products {
				consider(code)
			}
		default:
			return apperror.NewValidation("unknown series").WithDetail("series", string(series))
		}
		return nil
	})
	return last, err
}
