package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptrade "github.com/buneko/backend/internal/application/trade"
	"github.com/buneko/backend/tests/testutil"
)

var errOutOfStock = errors.New("out of stock")

func TestGormProductRepository_DecrementStockIsGuarded(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	repo := NewGormProductRepository(mdb.DB)

	mdb.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1 WHERE id = $2 AND stock >= $3`)).
		WithArgs(3, 7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.DecrementStock(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	mdb.ExpectationsWereMet(t)
}

func TestGormTransactionScope_RollsBackWhenGuardRejects(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	scope := NewGormTransactionScope(mdb.DB)

	mdb.Mock.ExpectBegin()
	mdb.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1 WHERE id = $2 AND stock >= $3`)).
		WithArgs(2, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mdb.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1 WHERE id = $2 AND stock >= $3`)).
		WithArgs(5, 2, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mdb.Mock.ExpectRollback()

	err := scope.Execute(context.Background(), func(repos apptrade.TransactionalRepositories) error {
		for _, line := range []struct {
			id  int64
			qty int
		}{{1, 2}, {2, 5}} {
			ok, err := repos.Products().DecrementStock(context.Background(), line.id, line.qty)
			if err != nil {
				return err
			}
			if !ok {
				return errOutOfStock
			}
		}
		return nil
	})

	assert.ErrorIs(t, err, errOutOfStock)
	mdb.ExpectationsWereMet(t)
}

func TestGormTransactionScope_CommitsOnSuccess(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	scope := NewGormTransactionScope(mdb.DB)

	mdb.Mock.ExpectBegin()
	mdb.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET "status"=$1,"updated_at"=$2 WHERE id = $3 AND status = $4`)).
		WithArgs("cancelled", sqlmock.AnyArg(), 9, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mdb.Mock.ExpectCommit()

	err := scope.Execute(context.Background(), func(repos apptrade.TransactionalRepositories) error {
		ok, err := repos.Orders().UpdateStatus(context.Background(), 9, "pending", "cancelled")
		if err != nil {
			return err
		}
		assert.True(t, ok)
		return nil
	})

	require.NoError(t, err)
	mdb.ExpectationsWereMet(t)
}
