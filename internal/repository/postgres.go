package repository

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/core-coin/vendere/internal/models"
	"github.com/core-coin/vendere/pkg/logger"
	"github.com/core-coin/vendere/pkg/validation"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (models.Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use standard logger
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond, // Log queries slower than this
			LogLevel:                  gormLogger.Warn,        // Only log warnings or errors
			IgnoreRecordNotFoundError: true,                   // Suppress "record not found" errors
			Colorful:                  true,                   // Enable colorful logs
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(
		&models.ItemRecord{},
		&models.Ownership{},
		&models.Setting{},
		&models.NativeBalance{},
		&models.TokenBalance{},
		&models.TokenAllowance{},
		&models.Payment{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

// Transaction runs fn against a transactional view of the repository. An
// error from fn rolls back everything fn did through that view.
func (db *PostgresDB) Transaction(fn func(models.Repository) error) error {
	return db.Conn.Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresDB{Conn: tx, logger: db.logger})
	})
}

func (db *PostgresDB) CountItems() (uint64, error) {
	var count int64
	if err := db.Conn.Model(&models.ItemRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count items: %s", err)
	}
	return uint64(count), nil
}

func (db *PostgresDB) AddItem(item *models.ItemRecord) error {
	if err := db.Conn.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %s", err)
	}
	return nil
}

func (db *PostgresDB) GetItem(tokenID uint64) (*models.ItemRecord, error) {
	var item models.ItemRecord
	if err := db.Conn.Where("token_id = ?", tokenID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrInvalidItem
		}
		return nil, fmt.Errorf("failed to get item: %s", err)
	}
	return &item, nil
}

func (db *PostgresDB) ListItems() ([]*models.ItemRecord, error) {
	var items []*models.ItemRecord
	if err := db.Conn.Order("token_id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %s", err)
	}
	return items, nil
}

func (db *PostgresDB) UpdateItem(item *models.ItemRecord) error {
	if err := db.Conn.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update item: %s", err)
	}
	return nil
}

func (db *PostgresDB) HasOwner(tokenID uint64) (bool, error) {
	var ownership models.Ownership
	if err := db.Conn.Where("token_id = ?", tokenID).First(&ownership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check ownership: %s", err)
	}
	return true, nil
}

func (db *PostgresDB) GetOwnership(tokenID uint64) (*models.Ownership, error) {
	var ownership models.Ownership
	if err := db.Conn.Where("token_id = ?", tokenID).First(&ownership).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.ErrInvalidItem
		}
		return nil, fmt.Errorf("failed to get ownership: %s", err)
	}
	return &ownership, nil
}

func (db *PostgresDB) AddOwnership(ownership *models.Ownership) error {
	if err := db.Conn.Create(ownership).Error; err != nil {
		return fmt.Errorf("failed to create ownership: %s", err)
	}
	return nil
}

func (db *PostgresDB) GetSetting(key string) (string, error) {
	var setting models.Setting
	if err := db.Conn.Where("key = ?", key).First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting: %s", err)
	}
	return setting.Value, nil
}

func (db *PostgresDB) SetSetting(key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	if err := db.Conn.Save(&setting).Error; err != nil {
		return fmt.Errorf("failed to set setting: %s", err)
	}
	return nil
}

func (db *PostgresDB) GetNativeBalance(address string) (*big.Int, error) {
	var balance models.NativeBalance
	if err := db.Conn.Where("address = ?", address).First(&balance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("failed to get native balance: %s", err)
	}
	return validation.ParseAmount(balance.Amount)
}

func (db *PostgresDB) CreditNative(address string, amount *big.Int) error {
	current, err := db.GetNativeBalance(address)
	if err != nil {
		return err
	}
	next := new(big.Int).Add(current, amount)
	balance := models.NativeBalance{Address: address, Amount: next.String()}
	if err := db.Conn.Save(&balance).Error; err != nil {
		return fmt.Errorf("failed to credit native balance: %s", err)
	}
	return nil
}

func (db *PostgresDB) GetTokenBalance(token, holder string) (*big.Int, error) {
	var balance models.TokenBalance
	if err := db.Conn.Where("token = ? AND holder = ?", token, holder).First(&balance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("failed to get token balance: %s", err)
	}
	return validation.ParseAmount(balance.Amount)
}

func (db *PostgresDB) SetTokenBalance(token, holder string, amount *big.Int) error {
	var balance models.TokenBalance
	err := db.Conn.Where("token = ? AND holder = ?", token, holder).First(&balance).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to get token balance: %s", err)
	}
	balance.Token = token
	balance.Holder = holder
	balance.Amount = amount.String()
	if err := db.Conn.Save(&balance).Error; err != nil {
		return fmt.Errorf("failed to set token balance: %s", err)
	}
	return nil
}

func (db *PostgresDB) ListTokenBalances(holder string) ([]*models.TokenBalance, error) {
	var balances []*models.TokenBalance
	if err := db.Conn.Where("holder = ?", holder).Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to list token balances: %s", err)
	}
	return balances, nil
}

func (db *PostgresDB) GetTokenAllowance(token, owner, spender string) (*big.Int, error) {
	var allowance models.TokenAllowance
	if err := db.Conn.Where("token = ? AND owner = ? AND spender = ?", token, owner, spender).First(&allowance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("failed to get token allowance: %s", err)
	}
	return validation.ParseAmount(allowance.Amount)
}

func (db *PostgresDB) SetTokenAllowance(token, owner, spender string, amount *big.Int) error {
	var allowance models.TokenAllowance
	err := db.Conn.Where("token = ? AND owner = ? AND spender = ?", token, owner, spender).First(&allowance).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to get token allowance: %s", err)
	}
	allowance.Token = token
	allowance.Owner = owner
	allowance.Spender = spender
	allowance.Amount = amount.String()
	if err := db.Conn.Save(&allowance).Error; err != nil {
		return fmt.Errorf("failed to set token allowance: %s", err)
	}
	return nil
}

func (db *PostgresDB) AddPayment(payment *models.Payment) error {
	if err := db.Conn.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to add payment: %s", err)
	}
	return nil
}

func (db *PostgresDB) ListPayments() ([]*models.Payment, error) {
	var payments []*models.Payment
	if err := db.Conn.Order("id asc").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %s", err)
	}
	return payments, nil
}

func (db *PostgresDB) GetPaymentsByToken(tokenID uint64) ([]*models.Payment, error) {
	var payments []*models.Payment
	if err := db.Conn.Where("token_id = ?", tokenID).Order("id asc").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to get payments by token: %s", err)
	}
	return payments, nil
}
