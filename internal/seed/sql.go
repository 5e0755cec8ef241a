package seed

import (
	"fmt"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/auth"
	"stockledger/internal/infrastructure/storage/postgres"
)

// BatchQueries returns idempotent inserts of the reference tables and default accounts.
// Existing rows are left untouched, passwords included.
func BatchQueries() ([]postgres.BatchQuery, error) {
	var q []postgres.BatchQuery
	add := func(sql string, args ...any) {
		q = append(q, postgres.BatchQuery{SQL: sql, Args: args})
	}

	for _, l := range Locations {
		add(`INSERT INTO locations (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, l.ID, l.Name)
	}
	for _, w := range Warehouses {
		add(`INSERT INTO warehouses (id, name, location_id) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			w.ID, w.Name, w.Location)
	}
	for _, p := range Products {
		add(`INSERT INTO products (id, name, material, color) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Material, p.Color)
	}
	for _, t := range []struct {
		table string
		rows  []Named
	}{
		{"employees", Employees},
		{"suppliers", Suppliers},
		{"customers", Customers},
	} {
		for _, r := range t.rows {
			add(fmt.Sprintf(`INSERT INTO %s (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, t.table), r.ID, r.Name)
		}
	}
	for _, v := range Vehicles {
		add(`INSERT INTO vehicles (id, plate) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, v.ID, v.Name)
	}

	for _, a := range Accounts {
		hash, err := auth.HashPassword(a.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password of %s: %w", a.Username, err)
		}
		add(`
			INSERT INTO users (id, username, password_hash, full_name, role, assigned_warehouse_id, employee_id)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
			ON CONFLICT (username) DO NOTHING`,
			id.New().String(), a.Username, hash, a.FullName, string(a.Role), a.Warehouse, a.Employee)
	}
	return q, nil
}
