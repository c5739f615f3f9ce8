package domain

// ActionKind is the lending-protocol operation recorded by an event.
// The set is open: kinds not listed below are carried through but never counted.
type ActionKind string

const (
	ActionDeposit          ActionKind = "deposit"
	ActionBorrow           ActionKind = "borrow"
	ActionRepay            ActionKind = "repay"
	ActionLiquidationCall  ActionKind = "liquidationcall"
	ActionRedeemUnderlying ActionKind = "redeemunderlying"
)

// String returns the string representation of ActionKind.
func (a ActionKind) String() string {
	return string(a)
}

// IsCounted reports whether the aggregator keeps a per-kind counter for a.
func (a ActionKind) IsCounted() bool {
	switch a {
	case ActionDeposit, ActionBorrow, ActionRepay, ActionLiquidationCall:
		return true
	default:
		return false
	}
}
