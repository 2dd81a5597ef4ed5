package domain

// Order statuses. Wire values match the storefront's historical strings;
// any status is reachable from any other (admin-driven, unordered).
const (
	OrderStatusPending    = "Pending"
	OrderStatusInProgress = "In Progress"
	OrderStatusCompleted  = "Completed"
)

// Fund transfer request statuses. Pending is the only non-terminal state.
const (
	FundStatusPending  = "Pending"
	FundStatusApproved = "Approved"
	FundStatusRejected = "Rejected"
)

// Sentinel platform ids for orders that cannot be tied to a catalog
// platform: balance top-up pseudo-orders and legacy records.
const (
	PlatformFundTransfer = "internal_fund_transfer"
	PlatformUnknown      = "unknown"
)

// MessageSenderAdmin is the only inbox sender the storefront supports.
const MessageSenderAdmin = "Admin"

// Entity id prefixes kept from the storefront's historical format.
const (
	OrderIDPrefix   = "ORD"
	FundIDPrefix    = "FTR"
	MessageIDPrefix = "MSG"
	APIKeyPrefix    = "sk_"
)

func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

func IsFundDecision(s string) bool {
	return s == FundStatusApproved || s == FundStatusRejected
}
