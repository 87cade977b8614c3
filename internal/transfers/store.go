package transfers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/paystream/paystream/pkg/models"
)

// ErrNotFound is returned when a transfer id does not exist.
var ErrNotFound = errors.New("transfer not found")

// Store provides database access to transfers.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a transfer store.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// ListByAccounts returns transfers touching any of the given accounts as
// source or destination, most recent first, capped at limit. This is the
// feed's poll query.
func (s *Store) ListByAccounts(ctx context.Context, accountIDs []string, limit int) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := s.db.WithContext(ctx).
		Where("from_account_id IN ? OR to_account_id IN ?", accountIDs, accountIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers by accounts: %w", err)
	}
	return transfers, nil
}

// List returns transfers visible to a user (any transfer touching one of the
// user's accounts), paginated.
func (s *Store) List(ctx context.Context, userID string, limit, offset int) ([]models.Transfer, int64, error) {
	sub := s.db.Model(&models.Account{}).Select("id").Where("user_id = ?", userID)
	query := s.db.WithContext(ctx).Model(&models.Transfer{}).
		Where("from_account_id IN (?) OR to_account_id IN (?)", sub, sub)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var transfers []models.Transfer
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transfers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, total, nil
}

// Get returns one transfer by id.
func (s *Store) Get(ctx context.Context, id string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

// Create inserts a new transfer. The id and creation timestamp are assigned
// here; callers supply the rest.
func (s *Store) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	if transfer.Status == "" {
		transfer.Status = models.TransferStatusDraft
	}
	transfer.CreatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	s.logger.Info("transfer created",
		zap.String("id", transfer.ID),
		zap.String("from", transfer.FromAccountID),
		zap.String("to", transfer.ToAccountID),
		zap.String("amount", transfer.Amount.String()))
	return nil
}

// UpdateStatus moves a transfer to a new status and stamps updated_at.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.TransferStatus) (*models.Transfer, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid transfer status: %s", status)
	}
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&models.Transfer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update transfer status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}
