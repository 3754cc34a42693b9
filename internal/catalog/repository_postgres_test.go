package catalog

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tienda-labs/ecommerce-backend/internal/category"
)

func TestDeactivateCategoryTree_CommitsWholeCascade(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE categories").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE subcategories").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE products").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectCommit()

	result, err := repo.DeactivateCategoryTree(1)
	if err != nil {
		t.Fatalf("cascade failed: %v", err)
	}
	if result.Subcategories != 3 || result.Products != 7 {
		t.Fatalf("unexpected cascade counts: %+v", result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeactivateCategoryTree_MissingCategoryRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE categories").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if _, err := repo.DeactivateCategoryTree(9); err != category.ErrNotFound {
		t.Fatalf("expected category.ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeactivateCategoryTree_MidCascadeFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE categories").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE subcategories").WithArgs(1).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if _, err := repo.DeactivateCategoryTree(1); err == nil {
		t.Fatalf("expected error from failed cascade")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeactivateSubcategoryTree(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subcategories").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	result, err := repo.DeactivateSubcategoryTree(4)
	if err != nil {
		t.Fatalf("cascade failed: %v", err)
	}
	if result.Products != 2 {
		t.Fatalf("unexpected cascade counts: %+v", result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCategoryStatsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM subcategories").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count", "active"}).AddRow(4, 3))
	mock.ExpectQuery("FROM products").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count", "active", "stock", "value"}).AddRow(10, 8, 120, 2599.50))

	stats, err := repo.CategoryStats(1)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Subcategories == nil || stats.Subcategories.Inactive != 1 {
		t.Fatalf("unexpected subcategory stats: %+v", stats.Subcategories)
	}
	if stats.Products.Inactive != 2 || stats.StockTotal != 120 || stats.InventoryValue != 2599.50 {
		t.Fatalf("unexpected product stats: %+v", stats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
