package transfers_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/paystream/paystream/internal/accounts"
	"github.com/paystream/paystream/internal/database"
	"github.com/paystream/paystream/internal/transfers"
	"github.com/paystream/paystream/pkg/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createAccount(t *testing.T, store *accounts.Store, userID, name string) *models.Account {
	t.Helper()
	account := &models.Account{UserID: userID, Name: name, Currency: "EUR"}
	require.NoError(t, store.Create(context.Background(), account))
	return account
}

func createTransfer(t *testing.T, store *transfers.Store, from, to *models.Account, status models.TransferStatus) *models.Transfer {
	t.Helper()
	transfer := &models.Transfer{
		FromAccountID:   from.ID,
		FromAccountName: from.Name,
		ToAccountID:     to.ID,
		ToAccountName:   to.Name,
		Amount:          decimal.RequireFromString("25.50"),
		Type:            "internal",
		Status:          status,
	}
	require.NoError(t, store.Create(context.Background(), transfer))
	return transfer
}

func TestListByAccountsMatchesSourceOrDestination(t *testing.T) {
	db := openTestDB(t)
	logger := zap.NewNop()
	accountStore := accounts.NewStore(db, logger)
	store := transfers.NewStore(db, logger)

	userID := uuid.NewString()
	a := createAccount(t, accountStore, userID, "Checking")
	b := createAccount(t, accountStore, userID, "Savings")
	c := createAccount(t, accountStore, uuid.NewString(), "Other")

	outbound := createTransfer(t, store, a, c, models.TransferStatusPending)
	inbound := createTransfer(t, store, c, a, models.TransferStatusDraft)
	unrelated := createTransfer(t, store, c, b, models.TransferStatusDraft)

	got, err := store.ListByAccounts(context.Background(), []string{a.ID}, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := []string{got[0].ID, got[1].ID}
	assert.Contains(t, ids, outbound.ID)
	assert.Contains(t, ids, inbound.ID)
	assert.NotContains(t, ids, unrelated.ID)
}

func TestListByAccountsOrdersNewestFirstAndCaps(t *testing.T) {
	db := openTestDB(t)
	logger := zap.NewNop()
	accountStore := accounts.NewStore(db, logger)
	store := transfers.NewStore(db, logger)

	userID := uuid.NewString()
	a := createAccount(t, accountStore, userID, "Checking")
	b := createAccount(t, accountStore, userID, "Savings")

	var created []*models.Transfer
	for i := 0; i < 5; i++ {
		created = append(created, createTransfer(t, store, a, b, models.TransferStatusPending))
	}

	got, err := store.ListByAccounts(context.Background(), []string{a.ID}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Most recent first.
	assert.Equal(t, created[4].ID, got[0].ID)
	assert.False(t, got[0].CreatedAt.Before(got[1].CreatedAt))
	assert.False(t, got[1].CreatedAt.Before(got[2].CreatedAt))
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	db := openTestDB(t)
	logger := zap.NewNop()
	accountStore := accounts.NewStore(db, logger)
	store := transfers.NewStore(db, logger)

	userID := uuid.NewString()
	a := createAccount(t, accountStore, userID, "Checking")
	b := createAccount(t, accountStore, userID, "Savings")

	transfer := &models.Transfer{
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        decimal.RequireFromString("10.00"),
		Type:          "internal",
	}
	require.NoError(t, store.Create(context.Background(), transfer))

	assert.NotEmpty(t, transfer.ID)
	assert.Equal(t, models.TransferStatusDraft, transfer.Status)
	assert.False(t, transfer.CreatedAt.IsZero())
	assert.Nil(t, transfer.UpdatedAt)
}

func TestUpdateStatusStampsUpdatedAt(t *testing.T) {
	db := openTestDB(t)
	logger := zap.NewNop()
	accountStore := accounts.NewStore(db, logger)
	store := transfers.NewStore(db, logger)

	userID := uuid.NewString()
	a := createAccount(t, accountStore, userID, "Checking")
	b := createAccount(t, accountStore, userID, "Savings")
	transfer := createTransfer(t, store, a, b, models.TransferStatusDraft)

	updated, err := store.UpdateStatus(context.Background(), transfer.ID, models.TransferStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	_, err = store.UpdateStatus(context.Background(), uuid.NewString(), models.TransferStatusFailed)
	assert.ErrorIs(t, err, transfers.ErrNotFound)

	_, err = store.UpdateStatus(context.Background(), transfer.ID, models.TransferStatus("bogus"))
	assert.Error(t, err)
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	db := openTestDB(t)
	store := transfers.NewStore(db, zap.NewNop())

	_, err := store.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, transfers.ErrNotFound)
}

func TestListScopesToUserAccounts(t *testing.T) {
	db := openTestDB(t)
	logger := zap.NewNop()
	accountStore := accounts.NewStore(db, logger)
	store := transfers.NewStore(db, logger)

	owner := uuid.NewString()
	stranger := uuid.NewString()
	mine := createAccount(t, accountStore, owner, "Checking")
	other := createAccount(t, accountStore, stranger, "Elsewhere")
	theirs := createAccount(t, accountStore, stranger, "Private")

	visible := createTransfer(t, store, mine, other, models.TransferStatusPending)
	hidden := createTransfer(t, store, other, theirs, models.TransferStatusPending)

	got, total, err := store.List(context.Background(), owner, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, visible.ID, got[0].ID)
	assert.NotEqual(t, hidden.ID, got[0].ID)
}
