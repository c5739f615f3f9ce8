package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/idhash"
)

const exportSample = `[
  {
    "_id": {"$oid": "681d38fed63812d4655f571a"},
    "userWallet": "0x00000000001accfa9cef68cf5371a23025b6d4b6",
    "network": "polygon",
    "protocol": "aave_v2",
    "txHash": "0x695c69acf608fbf5d38e48ca5535e118cc213a89e3d6d2e66e6b0e3b2e8d4190",
    "logId": "0x695c69acf608fbf5d38e48ca5535e118cc213a89e3d6d2e66e6b0e3b2e8d4190_Deposit",
    "timestamp": 1629178166,
    "blockNumber": 1629178166,
    "action": "deposit",
    "actionData": {
      "type": "Deposit",
      "amount": "2000000000",
      "assetSymbol": "USDC",
      "assetPriceUSD": "0.9938318274296357543568636362026045",
      "poolId": "0x2791bca1f2de4661ed88a30c99a7a9449aa84174",
      "userId": "0x00000000001accfa9cef68cf5371a23025b6d4b6"
    },
    "__v": 0,
    "createdAt": {"$date": "2025-05-08T23:06:39.465Z"},
    "updatedAt": {"$date": "2025-05-08T23:06:39.465Z"}
  },
  {
    "userWallet": "0x000000000051d07a4fb3bd10121a343d85818da6",
    "txHash": "0xabc",
    "timestamp": {"$numberLong": "1621525013"},
    "action": "liquidationcall",
    "actionData": {
      "type": "LiquidationCall",
      "collateralAmount": "1000",
      "principalAmount": 25.5,
      "borrowRate": null
    }
  },
  {
    "userWallet": "0x0000000000e189dd664b9ab08a33c4839953852c",
    "action": "redeemunderlying"
  }
]`

func TestDecodeEvents_Array(t *testing.T) {
	events, err := DecodeEvents(strings.NewReader(exportSample))
	require.NoError(t, err)
	require.Len(t, events, 3)

	dep := events[0]
	assert.Equal(t, "681d38fed63812d4655f571a", dep.EventID)
	assert.Equal(t, "0x00000000001accfa9cef68cf5371a23025b6d4b6", dep.WalletAddress)
	assert.Equal(t, domain.ActionDeposit, dep.Action)
	require.NotNil(t, dep.Timestamp)
	assert.Equal(t, int64(1629178166), *dep.Timestamp)
	assert.Equal(t, "polygon", dep.Network)
	require.NotNil(t, dep.CreatedAt)
	assert.Equal(t, 2025, dep.CreatedAt.Year())
	require.NotNil(t, dep.Payload)
	assert.Equal(t, "2000000000", *dep.Payload.Amount)
	assert.Equal(t, "USDC", *dep.Payload.AssetSymbol)
	assert.Nil(t, dep.Payload.BorrowRate)

	liq := events[1]
	assert.Equal(t, int64(1621525013), *liq.Timestamp)
	assert.Equal(t, "25.5", *liq.Payload.PrincipalAmount)
	assert.Nil(t, liq.Payload.BorrowRate)
	assert.Nil(t, liq.Payload.Amount)
	assert.Equal(t,
		idhash.ComputeEventID(liq.WalletAddress, "0xabc", "", domain.ActionLiquidationCall, liq.Timestamp),
		liq.EventID)

	redeem := events[2]
	assert.Nil(t, redeem.Payload)
	assert.Nil(t, redeem.Timestamp)
	assert.NotEmpty(t, redeem.EventID)
}

func TestDecodeEvents_Stream(t *testing.T) {
	input := `
{"userWallet":"0x1","txHash":"a","action":"deposit","timestamp":1}
{"userWallet":"0x2","txHash":"b","action":"borrow","timestamp":"2"}
`
	events, err := DecodeEvents(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "0x2", events[1].WalletAddress)
	assert.Equal(t, int64(2), *events[1].Timestamp)
}

func TestDecodeEvents_EmptyAndMalformed(t *testing.T) {
	events, err := DecodeEvents(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = DecodeEvents(strings.NewReader(`[{"userWallet": }]`))
	assert.Error(t, err)
}

func TestJSONFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user-wallet-transactions.json")
	require.NoError(t, os.WriteFile(path, []byte(exportSample), 0o644))

	src := NewJSONFileSource(path)
	events, err := src.Events(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 3)

	fp, err := src.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, idhash.ComputeSourceID([]byte(exportSample)), fp)
}

func TestJSONFileSource_Missing(t *testing.T) {
	src := NewJSONFileSource(filepath.Join(t.TempDir(), "nope.json"))

	_, err := src.Events(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Contains(t, err.Error(), "nope.json")
}
