// Package seed holds the reference data and default accounts loaded into a fresh ledger.
package seed

import (
	"stockledger/internal/core/security"
)

// Named is a reference row with an id and a display name.
type Named struct {
	ID   string
	Name string
}

// Account is a default login.
type Account struct {
	Username  string
	Password  string
	FullName  string
	Role      security.Role
	Warehouse string
	Employee  string
}

// Locations are the sites warehouses belong to.
var Locations = []Named{
	{"HN", "Ha Noi"},
	{"HCM", "Ho Chi Minh City"},
}

// Warehouse is a warehouse with its location.
type Warehouse struct {
	ID       string
	Name     string
	Location string
}

// Warehouses are the demo warehouses.
var Warehouses = []Warehouse{
	{"K1", "Kho 1", "HN"},
	{"K2", "Kho 2", "HN"},
	{"K3", "Kho 3", "HCM"},
}

// Product is a demo catalog item.
type Product struct {
	ID       string
	Name     string
	Material string
	Color    string
}

// Products are the demo catalog.
var Products = []Product{
	{"SP001", "Ao thun", "Cotton", "Trang"},
	{"SP002", "Quan jean", "Denim", "Xanh"},
	{"SP003", "Ao khoac", "Polyester", "Den"},
	{"SP004", "Vay lien", "Lua", "Do"},
	{"SP005", "Mu luoi trai", "Kaki", "Be"},
}

// Employees are the staff members stamped on movements.
var Employees = []Named{
	{"NV001", "Nguyen Van A"},
	{"NV002", "Tran Thi B"},
	{"NV003", "Le Van C"},
}

// Suppliers are the demo suppliers.
var Suppliers = []Named{
	{"NCC01", "Cong ty Det May Viet"},
	{"NCC02", "Xuong May Sai Gon"},
}

// Customers are the demo customers.
var Customers = []Named{
	{"KH01", "Shop Thoi Trang An"},
	{"KH02", "Cua hang Binh"},
}

// Vehicles maps vehicle id to plate.
var Vehicles = []Named{
	{"XE01", "29C-123.45"},
	{"XE02", "51D-678.90"},
}

// Accounts are the default logins: one admin and one staff account per warehouse.
var Accounts = []Account{
	{Username: "admin", Password: "admin123", FullName: "Administrator", Role: security.RoleAdmin},
	{Username: "nv1", Password: "123456", FullName: "Nguyen Van A", Role: security.RoleStaff, Warehouse: "K1", Employee: "NV001"},
	{Username: "nv2", Password: "123456", FullName: "Tran Thi B", Role: security.RoleStaff, Warehouse: "K2", Employee: "NV002"},
	{Username: "nv3", Password: "123456", FullName: "Le Van C", Role: security.RoleStaff, Warehouse: "K3", Employee: "NV003"},
}
