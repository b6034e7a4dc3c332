package enum

// ── Sale lifecycle (CHECK constrained in DB) ──

const (
	SaleStatusPaid      = "PAID"
	SaleStatusPending   = "PENDING"
	SaleStatusCancelled = "CANCELLED"
)

// ── Payment methods (CHECK constrained in DB) ──
// Reporting only splits cash vs everything-else; any method that is not CASH
// lands in the debit/credit bucket.

const (
	PaymentMethodCash   = "CASH"
	PaymentMethodDebit  = "DEBIT"
	PaymentMethodCredit = "CREDIT"
)

// ── User roles ──

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
)

// ── Return reasons (configurable labels, no DB constraint) ──

const (
	ReturnReasonDefective    = "DEFECTIVE"
	ReturnReasonWrongSize    = "WRONG_SIZE"
	ReturnReasonChangeOfMind = "CHANGE_OF_MIND"
	ReturnReasonOther        = "OTHER"
)
