package funds

import (
	"fmt"
	"math/big"

	"github.com/core-coin/vendere/internal/models"
	"github.com/core-coin/vendere/pkg/logger"
)

// FeeDenominator converts basis points to a fraction: fee = price * bps / 10000.
const FeeDenominator = 10000

// Distributor splits an incoming purchase between the item receiver and the
// fixed fee receiver. It holds no state of its own; every movement happens
// through the repository view it is handed, so a failing leg rolls the whole
// purchase back with the surrounding transaction.
type Distributor struct {
	logger *logger.Logger

	feeReceiver    string
	serviceAddress string
	feeBasisPoints int64
}

func NewDistributor(feeReceiver, serviceAddress string, feeBasisPoints int64, logger *logger.Logger) *Distributor {
	return &Distributor{
		logger:         logger,
		feeReceiver:    feeReceiver,
		serviceAddress: serviceAddress,
		feeBasisPoints: feeBasisPoints,
	}
}

// Fee computes the fee for a price, truncating integer division.
func (d *Distributor) Fee(price *big.Int) *big.Int {
	fee := new(big.Int).Mul(price, big.NewInt(d.feeBasisPoints))
	return fee.Div(fee, big.NewInt(FeeDenominator))
}

// FeeReceiver returns the fixed fee receiver address.
func (d *Distributor) FeeReceiver() string {
	return d.feeReceiver
}

// Distribute moves price + fee from the buyer and credits price to the
// receiver and fee to the fee receiver, in that order.
//
// Native payments require the attached value to equal price + fee exactly;
// there is no overpayment refund and no underpayment tolerance. Token
// payments ignore the attached value and pull price + fee from the buyer's
// pre-approved allowance for the service address.
func (d *Distributor) Distribute(repo models.Repository, item *models.ItemRecord, buyer string, price, value *big.Int) error {
	fee := d.Fee(price)
	total := new(big.Int).Add(price, fee)

	if models.IsNativePayment(item.PaymentToken) {
		if value == nil || value.Cmp(total) != 0 {
			return models.ErrIncorrectPrice
		}
		if err := repo.CreditNative(item.Receiver, price); err != nil {
			return fmt.Errorf("failed to credit receiver: %w", err)
		}
		if err := repo.CreditNative(d.feeReceiver, fee); err != nil {
			return fmt.Errorf("failed to credit fee receiver: %w", err)
		}
		return nil
	}

	return d.pullTokenPayment(repo, item, buyer, price, fee, total)
}

// pullTokenPayment settles a token-paid purchase: debit the buyer once for
// the full amount, burn the allowance, then credit the two legs.
func (d *Distributor) pullTokenPayment(repo models.Repository, item *models.ItemRecord, buyer string, price, fee, total *big.Int) error {
	token := item.PaymentToken

	allowance, err := repo.GetTokenAllowance(token, buyer, d.serviceAddress)
	if err != nil {
		return fmt.Errorf("failed to get allowance: %w", err)
	}
	balance, err := repo.GetTokenBalance(token, buyer)
	if err != nil {
		return fmt.Errorf("failed to get buyer balance: %w", err)
	}
	if allowance.Cmp(total) < 0 || balance.Cmp(total) < 0 {
		return models.ErrInsufficientFunds
	}

	if err := repo.SetTokenBalance(token, buyer, new(big.Int).Sub(balance, total)); err != nil {
		return fmt.Errorf("failed to debit buyer: %w", err)
	}
	if err := repo.SetTokenAllowance(token, buyer, d.serviceAddress, new(big.Int).Sub(allowance, total)); err != nil {
		return fmt.Errorf("failed to reduce allowance: %w", err)
	}

	receiverBalance, err := repo.GetTokenBalance(token, item.Receiver)
	if err != nil {
		return fmt.Errorf("failed to get receiver balance: %w", err)
	}
	if err := repo.SetTokenBalance(token, item.Receiver, new(big.Int).Add(receiverBalance, price)); err != nil {
		return fmt.Errorf("failed to credit receiver: %w", err)
	}

	feeBalance, err := repo.GetTokenBalance(token, d.feeReceiver)
	if err != nil {
		return fmt.Errorf("failed to get fee receiver balance: %w", err)
	}
	if err := repo.SetTokenBalance(token, d.feeReceiver, new(big.Int).Add(feeBalance, fee)); err != nil {
		return fmt.Errorf("failed to credit fee receiver: %w", err)
	}

	return nil
}
