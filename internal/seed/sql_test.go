package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchQueries(t *testing.T) {
	queries, err := BatchQueries()
	require.NoError(t, err)

	want := len(Locations) + len(Warehouses) + len(Products) + len(Employees) +
		len(Suppliers) + len(Customers) + len(Vehicles) + len(Accounts)
	assert.Len(t, queries, want)

	for _, q := range queries {
		assert.Contains(t, q.SQL, "ON CONFLICT")
	}

	// Warehouses must follow their locations for the foreign key.
	first := func(table string) int {
		for i, q := range queries {
			if strings.Contains(q.SQL, "INSERT INTO "+table+" ") {
				return i
			}
		}
		return -1
	}
	assert.Less(t, first("locations"), first("warehouses"))
	assert.Less(t, first("employees"), first("users"))

	last := queries[len(queries)-1]
	assert.NotEqual(t, Accounts[len(Accounts)-1].Password, last.Args[2], "password must be hashed")
}
