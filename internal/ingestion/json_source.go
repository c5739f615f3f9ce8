package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/idhash"
)

// JSONFileSource reads a bulk export of lending-protocol transactions.
// The file is either one JSON array of records or newline-delimited records.
type JSONFileSource struct {
	path string
}

// NewJSONFileSource creates a source for the file at path.
func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

// Name returns the file path.
func (s *JSONFileSource) Name() string {
	return s.path
}

// Events reads and decodes the whole file.
// Returns an error wrapping ErrMissingInput if the file does not exist.
func (s *JSONFileSource) Events(ctx context.Context) ([]*domain.RawEvent, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	events, err := DecodeEvents(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return events, nil
}

// Fingerprint returns the content hash of the file.
func (s *JSONFileSource) Fingerprint(_ context.Context) (string, error) {
	data, err := s.read()
	if err != nil {
		return "", err
	}
	return idhash.ComputeSourceID(data), nil
}

func (s *JSONFileSource) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: transaction file %s not found", ErrMissingInput, s.path)
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

var (
	_ EventSource   = (*JSONFileSource)(nil)
	_ Fingerprinter = (*JSONFileSource)(nil)
)

// DecodeEvents decodes either a JSON array of records or a stream of
// whitespace-separated records. Empty input yields no events.
func DecodeEvents(r io.Reader) ([]*domain.RawEvent, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)

	if first == '[' {
		var records []sourceRecord
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
		events := make([]*domain.RawEvent, 0, len(records))
		for i := range records {
			events = append(events, records[i].toRawEvent())
		}
		return events, nil
	}

	var events []*domain.RawEvent
	for {
		var rec sourceRecord
		err := dec.Decode(&rec)
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(events), err)
		}
		events = append(events, rec.toRawEvent())
	}
}

// peekNonSpace discards leading whitespace and returns the next byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}

// sourceRecord mirrors one exported transaction document.
type sourceRecord struct {
	ID          oidField      `json:"_id"`
	UserWallet  flexValue     `json:"userWallet"`
	Network     flexValue     `json:"network"`
	Protocol    flexValue     `json:"protocol"`
	TxHash      flexValue     `json:"txHash"`
	LogID       flexValue     `json:"logId"`
	Timestamp   flexValue     `json:"timestamp"`
	BlockNumber flexValue     `json:"blockNumber"`
	Action      flexValue     `json:"action"`
	ActionData  *actionRecord `json:"actionData"`
	CreatedAt   dateField     `json:"createdAt"`
}

type actionRecord struct {
	Type                    flexValue `json:"type"`
	Amount                  flexValue `json:"amount"`
	AssetSymbol             flexValue `json:"assetSymbol"`
	AssetPriceUSD           flexValue `json:"assetPriceUSD"`
	BorrowRate              flexValue `json:"borrowRate"`
	BorrowRateMode          flexValue `json:"borrowRateMode"`
	VariableTokenDebt       flexValue `json:"variableTokenDebt"`
	StableTokenDebt         flexValue `json:"stableTokenDebt"`
	CollateralAmount        flexValue `json:"collateralAmount"`
	CollateralAssetPriceUSD flexValue `json:"collateralAssetPriceUSD"`
	PrincipalAmount         flexValue `json:"principalAmount"`
	BorrowAssetPriceUSD     flexValue `json:"borrowAssetPriceUSD"`
}

func (rec *sourceRecord) toRawEvent() *domain.RawEvent {
	e := &domain.RawEvent{
		WalletAddress: rec.UserWallet.String(),
		Action:        domain.ActionKind(rec.Action.String()),
		Timestamp:     rec.Timestamp.Int64(),
		TxHash:        rec.TxHash.String(),
		LogID:         rec.LogID.String(),
		Network:       rec.Network.String(),
		Protocol:      rec.Protocol.String(),
		BlockNumber:   rec.BlockNumber.Int64(),
		CreatedAt:     rec.CreatedAt.t,
	}

	if a := rec.ActionData; a != nil {
		e.Payload = &domain.ActionPayload{
			Type:                    a.Type.String(),
			Amount:                  a.Amount.Ptr(),
			AssetSymbol:             a.AssetSymbol.Ptr(),
			AssetPriceUSD:           a.AssetPriceUSD.Ptr(),
			BorrowRate:              a.BorrowRate.Ptr(),
			BorrowRateMode:          a.BorrowRateMode.Ptr(),
			VariableTokenDebt:       a.VariableTokenDebt.Ptr(),
			StableTokenDebt:         a.StableTokenDebt.Ptr(),
			CollateralAmount:        a.CollateralAmount.Ptr(),
			CollateralAssetPriceUSD: a.CollateralAssetPriceUSD.Ptr(),
			PrincipalAmount:         a.PrincipalAmount.Ptr(),
			BorrowAssetPriceUSD:     a.BorrowAssetPriceUSD.Ptr(),
		}
	}

	e.EventID = rec.ID.oid
	if e.EventID == "" {
		e.EventID = idhash.ComputeEventID(e.WalletAddress, e.TxHash, e.LogID, e.Action, e.Timestamp)
	}
	return e
}

// flexValue keeps a JSON scalar verbatim: string content, or the literal text
// of a number or boolean. Extended-JSON number wrappers ($numberLong and friends)
// are unwrapped. null and missing fields are absent.
type flexValue struct {
	set bool
	v   string
}

func (f *flexValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = flexValue{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexValue{set: true, v: s}
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		for _, key := range []string{"$numberLong", "$numberInt", "$numberDouble", "$numberDecimal"} {
			if inner, ok := wrapper[key]; ok {
				return f.UnmarshalJSON(inner)
			}
		}
		*f = flexValue{set: true, v: string(trimmed)}
	default:
		*f = flexValue{set: true, v: string(trimmed)}
	}
	return nil
}

// String returns the value, or "" when absent.
func (f flexValue) String() string {
	return f.v
}

// Ptr returns the value, or nil when absent.
func (f flexValue) Ptr() *string {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}

// Int64 parses the value as an integer; fractional values are truncated.
// Returns nil when absent or not numeric.
func (f flexValue) Int64() *int64 {
	if !f.set {
		return nil
	}
	s := strings.TrimSpace(f.v)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &i
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(fl) && math.Abs(fl) < math.MaxInt64 {
		i := int64(fl)
		return &i
	}
	return nil
}

// oidField accepts {"$oid": "..."} or a plain string id.
type oidField struct {
	oid string
}

func (o *oidField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		o.oid = wrapper.OID
		return nil
	}
	var f flexValue
	if err := f.UnmarshalJSON(trimmed); err != nil {
		return err
	}
	o.oid = f.String()
	return nil
}

// dateField accepts {"$date": "RFC3339"}, {"$date": {"$numberLong": "ms"}}, or an RFC3339 string.
// Unparsable dates are absent.
type dateField struct {
	t *time.Time
}

func (d *dateField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	var value flexValue
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Date flexValue `json:"$date"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		value = wrapper.Date
	} else if err := value.UnmarshalJSON(trimmed); err != nil {
		return err
	}

	if !value.set {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value.v); err == nil {
		t = t.UTC()
		d.t = &t
		return nil
	}
	if ms, err := strconv.ParseInt(value.v, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		d.t = &t
	}
	return nil
}
