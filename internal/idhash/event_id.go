package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"wallet-credit-score/internal/domain"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Used when the source record carries no object id.
// Formula: SHA256(wallet|tx_hash|log_id|action|timestamp), timestamp empty when absent.
// Returns hex-encoded hash (64 characters).
func ComputeEventID(
	wallet string,
	txHash string,
	logID string,
	action domain.ActionKind,
	timestamp *int64,
) string {
	tsStr := ""
	if timestamp != nil {
		tsStr = fmt.Sprintf("%d", *timestamp)
	}

	data := fmt.Sprintf("%s|%s|%s|%s|%s",
		wallet,
		txHash,
		logID,
		string(action),
		tsStr,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeSourceID hashes the content of a source artifact.
// Identical bytes always yield the same id, regardless of file name.
func ComputeSourceID(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ComputeDataVersion hashes scored rows into a short version tag.
// rows must already be in a deterministic order.
// Returns the first 16 hex characters.
func ComputeDataVersion(rows []*domain.WalletScoreRecord) string {
	h := sha256.New()
	for _, r := range rows {
		fmt.Fprintf(h, "%s|%d\n", r.WalletAddress, r.FinalCreditScore)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
