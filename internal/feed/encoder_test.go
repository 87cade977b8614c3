package feed_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystream/paystream/internal/feed"
	"github.com/paystream/paystream/pkg/models"
)

func TestEncodeConnected(t *testing.T) {
	data, err := feed.EncodeConnected()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"connected"}`, string(data))
}

func TestEncodeUpdateCarriesWireFieldNames(t *testing.T) {
	t1 := makeTransfer("t1", models.TransferStatusPending)
	data, err := feed.EncodeUpdate([]models.Transfer{t1})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "update", decoded["type"])

	transfers, ok := decoded["transfers"].([]interface{})
	require.True(t, ok)
	require.Len(t, transfers, 1)
	first := transfers[0].(map[string]interface{})
	assert.Equal(t, "t1", first["id"])
	assert.Equal(t, "a1", first["fromAccountId"])
	assert.Equal(t, "a2", first["toAccountId"])
	assert.Equal(t, "Checking", first["fromAccountName"])
	assert.Equal(t, "pending", first["status"])
	assert.Contains(t, first, "amount")
	assert.Contains(t, first, "createdAt")
}

func TestEncodeUpdateNilBecomesEmptyList(t *testing.T) {
	data, err := feed.EncodeUpdate(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"update","transfers":[]}`, string(data))
}
