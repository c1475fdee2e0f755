package funds

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-coin/vendere/internal/models"
	"github.com/core-coin/vendere/internal/repository"
	"github.com/core-coin/vendere/pkg/logger"
)

var (
	buyer       = strings.Repeat("b1", 22)
	receiver    = strings.Repeat("cc", 22)
	feeReceiver = strings.Repeat("fe", 22)
	service     = strings.Repeat("5e", 22)
	payToken    = strings.Repeat("70", 22)
)

func newTestDistributor() *Distributor {
	return NewDistributor(feeReceiver, service, 500, logger.NewNop())
}

func nativeItem(price *big.Int) *models.ItemRecord {
	return &models.ItemRecord{TokenID: 0, Receiver: receiver, Price: price.String()}
}

func tokenItem(price *big.Int) *models.ItemRecord {
	return &models.ItemRecord{TokenID: 0, Receiver: receiver, PaymentToken: payToken, Price: price.String()}
}

func TestFeeComputation(t *testing.T) {
	d := newTestDistributor()

	cases := []struct {
		price, fee int64
	}{
		{10000, 500},
		{19999, 999}, // truncating division
		{3, 0},
		{0, 0},
	}
	for _, c := range cases {
		assert.Zero(t, big.NewInt(c.fee).Cmp(d.Fee(big.NewInt(c.price))), "price %d", c.price)
	}
}

func TestDistributeNativeExactMatch(t *testing.T) {
	d := newTestDistributor()
	repo := repository.NewMemoryDB()
	price := big.NewInt(10000)

	err := d.Distribute(repo, nativeItem(price), buyer, price, big.NewInt(10500))
	require.NoError(t, err)

	receiverBalance, err := repo.GetNativeBalance(receiver)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10000), receiverBalance)

	feeBalance, err := repo.GetNativeBalance(feeReceiver)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), feeBalance)
}

func TestDistributeNativeRejectsMismatch(t *testing.T) {
	d := newTestDistributor()
	repo := repository.NewMemoryDB()
	price := big.NewInt(10000)

	for _, value := range []*big.Int{nil, big.NewInt(0), big.NewInt(10499), big.NewInt(10501), big.NewInt(10000)} {
		err := d.Distribute(repo, nativeItem(price), buyer, price, value)
		assert.ErrorIs(t, err, models.ErrIncorrectPrice)
	}

	// Nothing was credited.
	receiverBalance, err := repo.GetNativeBalance(receiver)
	require.NoError(t, err)
	assert.Zero(t, receiverBalance.Sign())
}

func TestDistributeTokenPullsBothLegs(t *testing.T) {
	d := newTestDistributor()
	repo := repository.NewMemoryDB()
	price := big.NewInt(10000)
	total := big.NewInt(10500)

	require.NoError(t, repo.SetTokenBalance(payToken, buyer, total))
	require.NoError(t, repo.SetTokenAllowance(payToken, buyer, service, total))

	// Attached value is ignored on the token path.
	require.NoError(t, d.Distribute(repo, tokenItem(price), buyer, price, nil))

	buyerBalance, err := repo.GetTokenBalance(payToken, buyer)
	require.NoError(t, err)
	assert.Zero(t, buyerBalance.Sign())

	receiverBalance, err := repo.GetTokenBalance(payToken, receiver)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10000), receiverBalance)

	feeBalance, err := repo.GetTokenBalance(payToken, feeReceiver)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), feeBalance)

	allowance, err := repo.GetTokenAllowance(payToken, buyer, service)
	require.NoError(t, err)
	assert.Zero(t, allowance.Sign())
}

func TestDistributeTokenInsufficient(t *testing.T) {
	d := newTestDistributor()
	price := big.NewInt(10000)
	total := big.NewInt(10500)

	t.Run("allowance", func(t *testing.T) {
		repo := repository.NewMemoryDB()
		require.NoError(t, repo.SetTokenBalance(payToken, buyer, total))
		require.NoError(t, repo.SetTokenAllowance(payToken, buyer, service, price))

		err := d.Distribute(repo, tokenItem(price), buyer, price, nil)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	})

	t.Run("balance", func(t *testing.T) {
		repo := repository.NewMemoryDB()
		require.NoError(t, repo.SetTokenBalance(payToken, buyer, price))
		require.NoError(t, repo.SetTokenAllowance(payToken, buyer, service, total))

		err := d.Distribute(repo, tokenItem(price), buyer, price, nil)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	})
}

func TestDistributeZeroFee(t *testing.T) {
	d := NewDistributor(feeReceiver, service, 0, logger.NewNop())
	repo := repository.NewMemoryDB()
	price := big.NewInt(10000)

	require.NoError(t, d.Distribute(repo, nativeItem(price), buyer, price, price))

	feeBalance, err := repo.GetNativeBalance(feeReceiver)
	require.NoError(t, err)
	assert.Zero(t, feeBalance.Sign())
}

func TestDistributeReceiverIsFeeReceiver(t *testing.T) {
	d := newTestDistributor()
	repo := repository.NewMemoryDB()
	price := big.NewInt(10000)
	item := &models.ItemRecord{TokenID: 0, Receiver: feeReceiver, Price: price.String()}

	require.NoError(t, d.Distribute(repo, item, buyer, price, big.NewInt(10500)))

	// Both legs land on the same account.
	balance, err := repo.GetNativeBalance(feeReceiver)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10500), balance)
}
