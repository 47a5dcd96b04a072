package domain

// Receivable is the derived outstanding balance for a user or a company.
// It is never persisted; it reflects orders minus allocations at read time.
type Receivable struct {
	UserID       string `json:"user_id,omitempty"`
	UserName     string `json:"user_name,omitempty"`
	CompanyName  string `json:"company_name"`
	UserCount    int    `json:"user_count,omitempty"`
	TotalOrders  int    `json:"total_orders"`
	TotalOrdered int64  `json:"total_ordered"`
	TotalPaid    int64  `json:"total_paid"`
	Outstanding  int64  `json:"outstanding_amount"`
}

// UserTotals is the per-user aggregation row used both for receivable
// listings and for company payment allocation.
type UserTotals struct {
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	CompanyName  string `json:"company_name"`
	TotalOrders  int    `json:"total_orders"`
	TotalOrdered int64  `json:"total_ordered"`
	TotalPaid    int64  `json:"total_paid"`
}

func (t UserTotals) Outstanding() int64 {
	return t.TotalOrdered - t.TotalPaid
}

// Sort keys accepted by the listing operations.
const (
	SortOutstanding = "outstanding"
	SortName        = "name"
	SortOrders      = "orders"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

type ListRequest struct {
	Query string
	Sort  string
	Order string
}
