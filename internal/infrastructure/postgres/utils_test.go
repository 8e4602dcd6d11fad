package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert product: %w", unique)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, isCheckViolation(fmt.Errorf("update: %w", &pgconn.PgError{Code: "23514"})))
	assert.False(t, isCheckViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isCheckViolation(errors.New("23514")))
}

func TestLimitOffset(t *testing.T) {
	lim, off := limitOffset(0, -3)
	assert.Nil(t, lim)
	assert.Equal(t, 0, off)

	lim, off = limitOffset(20, 40)
	assert.Equal(t, 20, lim)
	assert.Equal(t, 40, off)
}

func TestMigracionesEmbebidas(t *testing.T) {
	names, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])

	sql, err := migrations.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	for _, table := range []string{"products", "boms", "bom_components", "stock_entries", "manufacturing_orders", "work_orders", "work_centers"} {
		assert.True(t, strings.Contains(string(sql), "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
	assert.Contains(t, string(sql), "UNIQUE (reference, product_id, transaction_type)")
	assert.Contains(t, string(sql), "CHECK (current_stock >= 0)")
}
