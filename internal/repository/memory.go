package repository

import (
	"math/big"
	"sort"
	"sync"

	"github.com/core-coin/vendere/internal/models"
)

// MemoryDB is an in-memory Repository used by tests and --development runs.
// Transaction takes a deep snapshot of the state and restores it when the
// callback fails, which gives the same all-or-nothing behavior as the
// Postgres implementation.
type MemoryDB struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
}

type state struct {
	items         map[uint64]*models.ItemRecord
	owners        map[uint64]*models.Ownership
	settings      map[string]string
	native        map[string]*big.Int
	tokenBalances map[string]*big.Int // token + "|" + holder
	allowances    map[string]*big.Int // token + "|" + owner + "|" + spender
	payments      []*models.Payment
	nextPaymentID int64
}

func NewMemoryDB() models.Repository {
	return &MemoryDB{
		mu: &sync.Mutex{},
		st: &state{
			items:         make(map[uint64]*models.ItemRecord),
			owners:        make(map[uint64]*models.Ownership),
			settings:      make(map[string]string),
			native:        make(map[string]*big.Int),
			tokenBalances: make(map[string]*big.Int),
			allowances:    make(map[string]*big.Int),
			nextPaymentID: 1,
		},
	}
}

func (m *MemoryDB) lock() {
	if !m.inTx {
		m.mu.Lock()
	}
}

func (m *MemoryDB) unlock() {
	if !m.inTx {
		m.mu.Unlock()
	}
}

func (m *MemoryDB) Close() error { return nil }

func (m *MemoryDB) Transaction(fn func(models.Repository) error) error {
	if m.inTx {
		// Nested transaction joins the outer one.
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	tx := &MemoryDB{mu: m.mu, st: m.st, inTx: true}
	if err := fn(tx); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (s *state) clone() *state {
	c := &state{
		items:         make(map[uint64]*models.ItemRecord, len(s.items)),
		owners:        make(map[uint64]*models.Ownership, len(s.owners)),
		settings:      make(map[string]string, len(s.settings)),
		native:        make(map[string]*big.Int, len(s.native)),
		tokenBalances: make(map[string]*big.Int, len(s.tokenBalances)),
		allowances:    make(map[string]*big.Int, len(s.allowances)),
		payments:      make([]*models.Payment, len(s.payments)),
		nextPaymentID: s.nextPaymentID,
	}
	for k, v := range s.items {
		item := *v
		c.items[k] = &item
	}
	for k, v := range s.owners {
		ownership := *v
		c.owners[k] = &ownership
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	for k, v := range s.native {
		c.native[k] = new(big.Int).Set(v)
	}
	for k, v := range s.tokenBalances {
		c.tokenBalances[k] = new(big.Int).Set(v)
	}
	for k, v := range s.allowances {
		c.allowances[k] = new(big.Int).Set(v)
	}
	for i, p := range s.payments {
		payment := *p
		c.payments[i] = &payment
	}
	return c
}

func (m *MemoryDB) CountItems() (uint64, error) {
	m.lock()
	defer m.unlock()
	return uint64(len(m.st.items)), nil
}

func (m *MemoryDB) AddItem(item *models.ItemRecord) error {
	m.lock()
	defer m.unlock()
	stored := *item
	m.st.items[item.TokenID] = &stored
	return nil
}

func (m *MemoryDB) GetItem(tokenID uint64) (*models.ItemRecord, error) {
	m.lock()
	defer m.unlock()
	item, ok := m.st.items[tokenID]
	if !ok {
		return nil, models.ErrInvalidItem
	}
	copied := *item
	return &copied, nil
}

func (m *MemoryDB) ListItems() ([]*models.ItemRecord, error) {
	m.lock()
	defer m.unlock()
	items := make([]*models.ItemRecord, 0, len(m.st.items))
	for _, item := range m.st.items {
		copied := *item
		items = append(items, &copied)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].TokenID < items[j].TokenID })
	return items, nil
}

func (m *MemoryDB) UpdateItem(item *models.ItemRecord) error {
	m.lock()
	defer m.unlock()
	stored := *item
	m.st.items[item.TokenID] = &stored
	return nil
}

func (m *MemoryDB) HasOwner(tokenID uint64) (bool, error) {
	m.lock()
	defer m.unlock()
	_, ok := m.st.owners[tokenID]
	return ok, nil
}

func (m *MemoryDB) GetOwnership(tokenID uint64) (*models.Ownership, error) {
	m.lock()
	defer m.unlock()
	ownership, ok := m.st.owners[tokenID]
	if !ok {
		return nil, models.ErrInvalidItem
	}
	copied := *ownership
	return &copied, nil
}

func (m *MemoryDB) AddOwnership(ownership *models.Ownership) error {
	m.lock()
	defer m.unlock()
	stored := *ownership
	m.st.owners[ownership.TokenID] = &stored
	return nil
}

func (m *MemoryDB) GetSetting(key string) (string, error) {
	m.lock()
	defer m.unlock()
	return m.st.settings[key], nil
}

func (m *MemoryDB) SetSetting(key, value string) error {
	m.lock()
	defer m.unlock()
	m.st.settings[key] = value
	return nil
}

func (m *MemoryDB) GetNativeBalance(address string) (*big.Int, error) {
	m.lock()
	defer m.unlock()
	if balance, ok := m.st.native[address]; ok {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}

func (m *MemoryDB) CreditNative(address string, amount *big.Int) error {
	m.lock()
	defer m.unlock()
	current, ok := m.st.native[address]
	if !ok {
		current = new(big.Int)
	}
	m.st.native[address] = new(big.Int).Add(current, amount)
	return nil
}

func balanceKey(token, holder string) string { return token + "|" + holder }

func allowanceKey(token, owner, spender string) string {
	return token + "|" + owner + "|" + spender
}

func (m *MemoryDB) GetTokenBalance(token, holder string) (*big.Int, error) {
	m.lock()
	defer m.unlock()
	if balance, ok := m.st.tokenBalances[balanceKey(token, holder)]; ok {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}

func (m *MemoryDB) SetTokenBalance(token, holder string, amount *big.Int) error {
	m.lock()
	defer m.unlock()
	m.st.tokenBalances[balanceKey(token, holder)] = new(big.Int).Set(amount)
	return nil
}

func (m *MemoryDB) ListTokenBalances(holder string) ([]*models.TokenBalance, error) {
	m.lock()
	defer m.unlock()
	suffix := "|" + holder
	var balances []*models.TokenBalance
	for key, amount := range m.st.tokenBalances {
		if len(key) > len(suffix) && key[len(key)-len(suffix):] == suffix {
			balances = append(balances, &models.TokenBalance{
				Token:  key[:len(key)-len(suffix)],
				Holder: holder,
				Amount: amount.String(),
			})
		}
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Token < balances[j].Token })
	return balances, nil
}

func (m *MemoryDB) GetTokenAllowance(token, owner, spender string) (*big.Int, error) {
	m.lock()
	defer m.unlock()
	if allowance, ok := m.st.allowances[allowanceKey(token, owner, spender)]; ok {
		return new(big.Int).Set(allowance), nil
	}
	return new(big.Int), nil
}

func (m *MemoryDB) SetTokenAllowance(token, owner, spender string, amount *big.Int) error {
	m.lock()
	defer m.unlock()
	m.st.allowances[allowanceKey(token, owner, spender)] = new(big.Int).Set(amount)
	return nil
}

func (m *MemoryDB) AddPayment(payment *models.Payment) error {
	m.lock()
	defer m.unlock()
	stored := *payment
	stored.ID = m.st.nextPaymentID
	m.st.nextPaymentID++
	m.st.payments = append(m.st.payments, &stored)
	payment.ID = stored.ID
	return nil
}

func (m *MemoryDB) ListPayments() ([]*models.Payment, error) {
	m.lock()
	defer m.unlock()
	payments := make([]*models.Payment, 0, len(m.st.payments))
	for _, p := range m.st.payments {
		copied := *p
		payments = append(payments, &copied)
	}
	return payments, nil
}

func (m *MemoryDB) GetPaymentsByToken(tokenID uint64) ([]*models.Payment, error) {
	m.lock()
	defer m.unlock()
	var payments []*models.Payment
	for _, p := range m.st.payments {
		if p.TokenID == tokenID {
			copied := *p
			payments = append(payments, &copied)
		}
	}
	return payments, nil
}
