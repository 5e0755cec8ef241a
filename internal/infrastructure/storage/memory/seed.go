package memory

import (
	"context"
	"fmt"

	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/seed"
)

// SeedReference loads warehouses, products and the other reference tables.
func (s *Store) SeedReference(ctx context.Context) error {
	return s.update(ctx, func(st *state) error {
		for _, w := range seed.Warehouses {
			loc := w.Location
			st.warehouses[w.ID] = warehouse.Warehouse{ID: w.ID, Name: w.Name, LocationID: &loc}
		}
		for _, p := range seed.Products {
			material, color := p.Material, p.Color
			st.products[p.ID] = product.Product{ID: p.ID, Name: p.Name, Material: &material, Color: &color}
		}
		fill(st.employees, seed.Employees)
		fill(st.suppliers, seed.Suppliers)
		fill(st.customers, seed.Customers)
		fill(st.vehicles, seed.Vehicles)
		return nil
	})
}

// SeedDemo loads the reference data and the default accounts with bcrypt-hashed passwords.
func (s *Store) SeedDemo(ctx context.Context) error {
	if err := s.SeedReference(ctx); err != nil {
		return err
	}

	users := s.Users()
	for _, a := range seed.Accounts {
		hash, err := auth.HashPassword(a.Password)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.Username, err)
		}
		u := auth.NewUser(a.Username, hash, a.Role)
		u.FullName = a.FullName
		if a.Warehouse != "" {
			wh := a.Warehouse
			u.AssignedWarehouseID = &wh
		}
		if a.Employee != "" {
			emp := a.Employee
			u.EmployeeID = &emp
		}
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed %s: %w", a.Username, err)
		}
	}
	return nil
}

func fill(dst map[string]string, rows []seed.Named) {
	for _, r := range rows {
		dst[r.ID] = r.Name
	}
}
