package repository

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-coin/vendere/internal/models"
)

func TestMemoryTransactionCommits(t *testing.T) {
	db := NewMemoryDB()

	err := db.Transaction(func(tx models.Repository) error {
		if err := tx.AddItem(&models.ItemRecord{TokenID: 0, Receiver: "r", Price: "10"}); err != nil {
			return err
		}
		return tx.CreditNative("r", big.NewInt(10))
	})
	require.NoError(t, err)

	item, err := db.GetItem(0)
	require.NoError(t, err)
	assert.Equal(t, "10", item.Price)

	balance, err := db.GetNativeBalance("r")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), balance)
}

func TestMemoryTransactionRollsBack(t *testing.T) {
	db := NewMemoryDB()
	require.NoError(t, db.CreditNative("r", big.NewInt(5)))

	boom := errors.New("boom")
	err := db.Transaction(func(tx models.Repository) error {
		if err := tx.AddItem(&models.ItemRecord{TokenID: 0, Receiver: "r", Price: "10"}); err != nil {
			return err
		}
		if err := tx.CreditNative("r", big.NewInt(100)); err != nil {
			return err
		}
		if err := tx.AddOwnership(&models.Ownership{TokenID: 0, Owner: "o"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Everything the callback did is gone.
	_, err = db.GetItem(0)
	assert.ErrorIs(t, err, models.ErrInvalidItem)

	issued, err := db.HasOwner(0)
	require.NoError(t, err)
	assert.False(t, issued)

	balance, err := db.GetNativeBalance("r")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), balance)
}

func TestMemoryNestedTransactionJoins(t *testing.T) {
	db := NewMemoryDB()

	boom := errors.New("boom")
	err := db.Transaction(func(tx models.Repository) error {
		if err := tx.CreditNative("r", big.NewInt(1)); err != nil {
			return err
		}
		return tx.Transaction(func(inner models.Repository) error {
			if err := inner.CreditNative("r", big.NewInt(2)); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	// The inner failure aborted the outer transaction as a whole.
	balance, err := db.GetNativeBalance("r")
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestMemoryReturnsCopies(t *testing.T) {
	db := NewMemoryDB()
	require.NoError(t, db.AddItem(&models.ItemRecord{TokenID: 0, Receiver: "r", Price: "10"}))

	item, err := db.GetItem(0)
	require.NoError(t, err)
	item.Price = "999"

	stored, err := db.GetItem(0)
	require.NoError(t, err)
	assert.Equal(t, "10", stored.Price)

	balance, err := db.GetNativeBalance("r")
	require.NoError(t, err)
	balance.SetInt64(77)

	fresh, err := db.GetNativeBalance("r")
	require.NoError(t, err)
	assert.Zero(t, fresh.Sign())
}

func TestMemorySettings(t *testing.T) {
	db := NewMemoryDB()

	value, err := db.GetSetting(models.SettingBaseURI)
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, db.SetSetting(models.SettingBaseURI, "https://x/"))
	value, err = db.GetSetting(models.SettingBaseURI)
	require.NoError(t, err)
	assert.Equal(t, "https://x/", value)
}

func TestMemoryPaymentIDsIncrement(t *testing.T) {
	db := NewMemoryDB()

	first := &models.Payment{TokenID: 0, Buyer: "b"}
	second := &models.Payment{TokenID: 1, Buyer: "b"}
	require.NoError(t, db.AddPayment(first))
	require.NoError(t, db.AddPayment(second))
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	payments, err := db.GetPaymentsByToken(1)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, second.ID, payments[0].ID)
}

func TestMemoryListTokenBalances(t *testing.T) {
	db := NewMemoryDB()
	require.NoError(t, db.SetTokenBalance("t1", "holder", big.NewInt(5)))
	require.NoError(t, db.SetTokenBalance("t2", "holder", big.NewInt(7)))
	require.NoError(t, db.SetTokenBalance("t1", "other", big.NewInt(9)))

	balances, err := db.ListTokenBalances("holder")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "t1", balances[0].Token)
	assert.Equal(t, "5", balances[0].Amount)
	assert.Equal(t, "t2", balances[1].Token)
	assert.Equal(t, "7", balances[1].Amount)
}
