package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "name", "description", "price", "stock", "category",
	"images", "is_active", "created_by", "created_at", "updated_at",
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("ActiveByCategory", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE is_active = TRUE AND category = \$1`).
			WithArgs("shoes").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM products WHERE is_active = TRUE AND category = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
			WithArgs("shoes", 10, 0).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(1, "Runner", "light", "59.90", 4, "shoes", "{a.jpg,b.jpg}", true, 2, now, now))

		products, total, err := repo.List(ctx, ListFilter{Category: "shoes", OnlyActive: true, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)

		p := products[0]
		assert.True(t, decimal.RequireFromString("59.90").Equal(p.Price))
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
		require.NotNil(t, p.CreatedBy)
		assert.Equal(t, uint(2), *p.CreatedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoFilters", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM products ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(5, 5).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(1, "Orphan", "", "1.00", 0, "", "{}", false, nil, now, now))

		products, _, err := repo.List(ctx, ListFilter{Limit: 5, Offset: 5})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Nil(t, products[0].CreatedBy)
		assert.Equal(t, []string{}, products[0].Images)
	})

	t.Run("QueryError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT id`).WillReturnError(errors.New("db error"))

		_, _, err = repo.List(ctx, ListFilter{Limit: 5})
		assert.ErrorContains(t, err, "list products")
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(3, "Cap", "", "12.00", 1, "hats", "{}", true, nil, now, now))

	p, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Cap", p.Name)

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(4).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), 4)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	now := time.Now()
	admin := uint(1)

	p := &Product{
		Name:      "Cap",
		Price:     decimal.RequireFromString("12.50"),
		Stock:     3,
		Category:  "hats",
		Images:    []string{"cap.png"},
		CreatedBy: &admin,
	}

	mock.ExpectQuery(`INSERT INTO products \(name, description, price, stock, category, images, created_by\)`).
		WithArgs("Cap", "", "12.5", 3, "hats", "{\"cap.png\"}", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).
			AddRow(10, true, now, now))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, uint(10), p.ID)
	assert.True(t, p.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	now := time.Now()

	name := "Cap v2"
	stock := 9

	mock.ExpectQuery(`UPDATE products SET name = \$1, stock = \$2, updated_at = NOW\(\) WHERE id = \$3 RETURNING id`).
		WithArgs("Cap v2", 9, 3).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(3, "Cap v2", "", "12.00", 9, "hats", "{}", true, nil, now, now))

	p, err := repo.Update(context.Background(), 3, UpdateInput{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 9, p.Stock)

	mock.ExpectQuery(`UPDATE products SET name = \$1`).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Update(context.Background(), 99, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE products SET is_active = FALSE, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SoftDelete(context.Background(), 3))

	mock.ExpectExec(`UPDATE products SET is_active = FALSE`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(context.Background(), 4), ErrProductNotFound)
}
