package vendere

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/core-coin/vendere/internal/config"
	"github.com/core-coin/vendere/internal/funds"
	"github.com/core-coin/vendere/internal/models"
	"github.com/core-coin/vendere/pkg/logger"
	"github.com/core-coin/vendere/pkg/validation"
)

// NativeCurrency is the currency label recorded for native payments.
const NativeCurrency = "XCB"

// Vendere is the issuance engine. It owns the catalog, the ownership ledger,
// the access guard and the metadata resolver, and drives the fund
// distributor for paid mints.
//
// Every state-changing operation runs under the engine mutex and inside one
// repository transaction: the issuance check happens before any fund
// movement, the ownership assignment after, and a failure anywhere rolls the
// whole call back.
type Vendere struct {
	logger *logger.Logger
	config *config.Config

	repo        models.Repository
	distributor *funds.Distributor
	notificator models.NotificationService

	mu    sync.Mutex
	admin string
}

// NewVendere creates the engine, restoring the current admin from the
// repository (the admin is transferable) and seeding the base URI on first
// run.
func NewVendere(
	repo models.Repository,
	distributor *funds.Distributor,
	notificator models.NotificationService,
	logger *logger.Logger,
	config *config.Config,
) (*Vendere, error) {
	v := &Vendere{
		repo:        repo,
		distributor: distributor,
		notificator: notificator,
		logger:      logger,
		config:      config,
	}

	admin, err := repo.GetSetting(models.SettingAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin setting: %w", err)
	}
	if admin == "" {
		admin = validation.NormalizeAddress(config.AdminAddress)
		if err := repo.SetSetting(models.SettingAdmin, admin); err != nil {
			return nil, fmt.Errorf("failed to store admin setting: %w", err)
		}
	}
	v.admin = admin

	baseURI, err := repo.GetSetting(models.SettingBaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to read base URI setting: %w", err)
	}
	if baseURI == "" && config.BaseURI != "" {
		if err := repo.SetSetting(models.SettingBaseURI, config.BaseURI); err != nil {
			return nil, fmt.Errorf("failed to store base URI setting: %w", err)
		}
	}

	return v, nil
}

// requireAdmin gates admin-only operations on the explicit caller identity.
func (v *Vendere) requireAdmin(caller string) error {
	if validation.NormalizeAddress(caller) != v.admin {
		return models.ErrUnauthorized
	}
	return nil
}

// Admin returns the current admin address.
func (v *Vendere) Admin() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.admin
}

// TransferAdmin hands the admin capability to a new address.
func (v *Vendere) TransferAdmin(caller, newAdmin string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	normalized, err := validation.ValidateAndNormalizeAddress(newAdmin)
	if err != nil {
		return fmt.Errorf("invalid new admin address: %w", err)
	}
	if err := v.repo.SetSetting(models.SettingAdmin, normalized); err != nil {
		return fmt.Errorf("failed to store admin setting: %w", err)
	}
	v.logger.Info("Admin transferred ", "from ", v.admin, " to ", normalized)
	v.admin = normalized
	return nil
}

// AddToken registers a new item record and assigns it the next sequential
// token id, starting at 0. Terms are stored as given: the zero receiver and
// a zero price are permitted.
func (v *Vendere) AddToken(caller string, terms models.TokenTerms) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAdmin(caller); err != nil {
		return 0, err
	}

	var tokenID uint64
	err := v.repo.Transaction(func(tx models.Repository) error {
		next, err := tx.CountItems()
		if err != nil {
			return err
		}
		tokenID = next
		now := time.Now().Unix()
		return tx.AddItem(&models.ItemRecord{
			TokenID:      tokenID,
			Receiver:     validation.NormalizeAddress(terms.Receiver),
			PaymentToken: normalizePaymentToken(terms.PaymentToken),
			Price:        priceString(terms.Price),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if err != nil {
		return 0, err
	}

	v.logger.Info("Token added ", "id ", tokenID, " price ", priceString(terms.Price))
	return tokenID, nil
}

// UpdateToken overwrites the purchase terms of an existing item record.
// Issued items stay amendable unless LOCK_ISSUED_ITEMS is set.
func (v *Vendere) UpdateToken(caller string, tokenID uint64, terms models.TokenTerms) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAdmin(caller); err != nil {
		return err
	}

	return v.repo.Transaction(func(tx models.Repository) error {
		item, err := tx.GetItem(tokenID)
		if err != nil {
			return err
		}
		if v.config.LockIssuedItems {
			issued, err := tx.HasOwner(tokenID)
			if err != nil {
				return err
			}
			if issued {
				return models.ErrAlreadyIssued
			}
		}
		item.Receiver = validation.NormalizeAddress(terms.Receiver)
		item.PaymentToken = normalizePaymentToken(terms.PaymentToken)
		item.Price = priceString(terms.Price)
		item.UpdatedAt = time.Now().Unix()
		return tx.UpdateItem(item)
	})
}

// GetTokenInfo returns the stored terms plus the fee derived from the
// current price and the issuance state.
func (v *Vendere) GetTokenInfo(tokenID uint64) (*models.TokenInfo, error) {
	item, err := v.repo.GetItem(tokenID)
	if err != nil {
		return nil, err
	}
	return v.tokenInfo(item)
}

// ListTokens returns the whole catalog.
func (v *Vendere) ListTokens() ([]*models.TokenInfo, error) {
	items, err := v.repo.ListItems()
	if err != nil {
		return nil, err
	}
	infos := make([]*models.TokenInfo, 0, len(items))
	for _, item := range items {
		info, err := v.tokenInfo(item)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (v *Vendere) tokenInfo(item *models.ItemRecord) (*models.TokenInfo, error) {
	price, err := validation.ParseAmount(item.Price)
	if err != nil {
		return nil, fmt.Errorf("corrupt price for token %d: %w", item.TokenID, err)
	}
	info := &models.TokenInfo{
		TokenID:      item.TokenID,
		Receiver:     item.Receiver,
		PaymentToken: item.PaymentToken,
		Price:        price,
		Fee:          v.distributor.Fee(price),
	}
	ownership, err := v.repo.GetOwnership(item.TokenID)
	if err == nil {
		info.Issued = true
		info.Owner = ownership.Owner
	} else if !errors.Is(err, models.ErrInvalidItem) {
		return nil, err
	}
	return info, nil
}

// Mint is the public paid issuance path. The caller pays price + fee for the
// item (exact native value or a payment-token allowance pull), the funds are
// split between the item receiver and the fee receiver, and the token is
// irreversibly assigned to the recipient.
func (v *Vendere) Mint(caller, recipient string, tokenID uint64, value *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	buyer := validation.NormalizeAddress(caller)
	owner := validation.NormalizeAddress(recipient)

	var notice *models.IssuanceNotice
	err := v.repo.Transaction(func(tx models.Repository) error {
		item, err := tx.GetItem(tokenID)
		if err != nil {
			return err
		}
		issued, err := tx.HasOwner(tokenID)
		if err != nil {
			return err
		}
		if issued {
			return models.ErrAlreadyIssued
		}

		price, err := validation.ParseAmount(item.Price)
		if err != nil {
			return fmt.Errorf("corrupt price for token %d: %w", tokenID, err)
		}
		fee := v.distributor.Fee(price)

		if err := v.distributor.Distribute(tx, item, buyer, price, value); err != nil {
			return err
		}

		now := time.Now().Unix()
		if err := tx.AddOwnership(&models.Ownership{
			TokenID:  tokenID,
			Owner:    owner,
			MintedBy: buyer,
			MintedAt: now,
		}); err != nil {
			return err
		}

		currency := NativeCurrency
		if !models.IsNativePayment(item.PaymentToken) {
			currency = item.PaymentToken
		}
		if err := tx.AddPayment(&models.Payment{
			TokenID:   tokenID,
			Buyer:     buyer,
			Recipient: owner,
			Receiver:  item.Receiver,
			Currency:  currency,
			Price:     price.String(),
			Fee:       fee.String(),
			Timestamp: now,
		}); err != nil {
			return err
		}

		notice = &models.IssuanceNotice{
			TokenID:  tokenID,
			Owner:    owner,
			Buyer:    buyer,
			Currency: currency,
			Price:    price.String(),
			Fee:      fee.String(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	v.logger.Info("Token minted ", "id ", tokenID, " owner ", owner)
	v.notify(notice)
	return nil
}

// AdminMint issues a token without payment. It does not require a catalog
// entry: the admin may issue ids that were never catalogued.
func (v *Vendere) AdminMint(caller, recipient string, tokenID uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	owner := validation.NormalizeAddress(recipient)

	err := v.repo.Transaction(func(tx models.Repository) error {
		issued, err := tx.HasOwner(tokenID)
		if err != nil {
			return err
		}
		if issued {
			return models.ErrAlreadyIssued
		}
		return tx.AddOwnership(&models.Ownership{
			TokenID:   tokenID,
			Owner:     owner,
			MintedBy:  validation.NormalizeAddress(caller),
			AdminMint: true,
			MintedAt:  time.Now().Unix(),
		})
	})
	if err != nil {
		return err
	}

	v.logger.Info("Token admin-minted ", "id ", tokenID, " owner ", owner)
	v.notify(&models.IssuanceNotice{TokenID: tokenID, Owner: owner, AdminMint: true})
	return nil
}

// OwnerOf returns the current owner of an issued token.
func (v *Vendere) OwnerOf(tokenID uint64) (string, error) {
	ownership, err := v.repo.GetOwnership(tokenID)
	if err != nil {
		return "", err
	}
	return ownership.Owner, nil
}

// TokenURI resolves the metadata descriptor for a catalogued token: the
// per-item override when set, otherwise base URI + id. An empty base URI
// with no override resolves to the empty string.
func (v *Vendere) TokenURI(tokenID uint64) (string, error) {
	item, err := v.repo.GetItem(tokenID)
	if err != nil {
		return "", err
	}
	if item.URI != "" {
		return item.URI, nil
	}
	baseURI, err := v.repo.GetSetting(models.SettingBaseURI)
	if err != nil {
		return "", err
	}
	if baseURI == "" {
		return "", nil
	}
	return baseURI + strconv.FormatUint(tokenID, 10), nil
}

// SetBaseURI replaces the catalog-wide base URI.
func (v *Vendere) SetBaseURI(caller, uri string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	return v.repo.SetSetting(models.SettingBaseURI, uri)
}

// UpdateTokenURI sets the per-item metadata override.
func (v *Vendere) UpdateTokenURI(caller string, tokenID uint64, uri string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	return v.repo.Transaction(func(tx models.Repository) error {
		item, err := tx.GetItem(tokenID)
		if err != nil {
			return err
		}
		item.URI = uri
		item.UpdatedAt = time.Now().Unix()
		return tx.UpdateItem(item)
	})
}

// DepositToken credits payment-token balance to a holder. This is the
// funding side of the payment-token double.
func (v *Vendere) DepositToken(token, holder string, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	normalizedToken := validation.NormalizeAddress(token)
	normalizedHolder := validation.NormalizeAddress(holder)
	return v.repo.Transaction(func(tx models.Repository) error {
		balance, err := tx.GetTokenBalance(normalizedToken, normalizedHolder)
		if err != nil {
			return err
		}
		return tx.SetTokenBalance(normalizedToken, normalizedHolder, new(big.Int).Add(balance, amount))
	})
}

// ApproveToken sets the allowance spender may pull from owner in token.
func (v *Vendere) ApproveToken(token, owner, spender string, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.repo.SetTokenAllowance(
		validation.NormalizeAddress(token),
		validation.NormalizeAddress(owner),
		validation.NormalizeAddress(spender),
		amount,
	)
}

// GetFunds returns the native and token balances of an address.
func (v *Vendere) GetFunds(address string) (*models.Funds, error) {
	normalized := validation.NormalizeAddress(address)
	native, err := v.repo.GetNativeBalance(normalized)
	if err != nil {
		return nil, err
	}
	balances, err := v.repo.ListTokenBalances(normalized)
	if err != nil {
		return nil, err
	}
	result := &models.Funds{Address: normalized, Native: native, Tokens: make(map[string]*big.Int, len(balances))}
	for _, balance := range balances {
		amount, err := validation.ParseAmount(balance.Amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt balance for %s: %w", balance.Token, err)
		}
		result.Tokens[balance.Token] = amount
	}
	return result, nil
}

// ListPayments returns the payment audit trail.
func (v *Vendere) ListPayments() ([]*models.Payment, error) {
	return v.repo.ListPayments()
}

func (v *Vendere) notify(notice *models.IssuanceNotice) {
	if v.notificator == nil || notice == nil {
		return
	}
	go v.notificator.SendIssuance(notice)
}

func normalizePaymentToken(paymentToken string) string {
	if models.IsNativePayment(paymentToken) {
		return ""
	}
	return validation.NormalizeAddress(paymentToken)
}

func priceString(price *big.Int) string {
	if price == nil {
		return "0"
	}
	return price.String()
}
