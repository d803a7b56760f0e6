package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Day counts cross the API as plain JSON numbers (0.5, 1, 3), matching
	// the persisted NUMERIC values.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	TypeCasual      = "Casual"
	TypeSick        = "Sick"
	TypeEarned      = "Earned"
	TypeMaternity   = "Maternity"
	TypePaternity   = "Paternity"
	TypeBereavement = "Bereavement"
	TypePaid        = "Paid"
	TypeUnpaid      = "Unpaid"
)

var Types = []string{
	TypeCasual, TypeSick, TypeEarned,
	TypeMaternity, TypePaternity, TypeBereavement,
	TypePaid, TypeUnpaid,
}

type Request struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employeeId"`
	Type               string          `json:"type"`
	From               time.Time       `json:"from"`
	To                 time.Time       `json:"to"`
	Days               decimal.Decimal `json:"days"`
	IsHalfDay          bool            `json:"isHalfDay"`
	IsPaid             bool            `json:"isPaid"`
	PaidDays           decimal.Decimal `json:"paidDays"`
	Status             string          `json:"status"`
	Reason             string          `json:"reason"`
	ContactDuringLeave string          `json:"contactDuringLeave,omitempty"`
	AddressDuringLeave string          `json:"addressDuringLeave,omitempty"`
	ApprovedBy         string          `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason    string          `json:"rejectionReason,omitempty"`
	ManagerNotes       string          `json:"managerNotes,omitempty"`
	AppliedAt          time.Time       `json:"appliedAt"`
}

// BucketBalances is the stored per-employee balance row. The paid-leave pool
// is deliberately absent: it is derived from tenure and approved history, not
// materialized.
type BucketBalances struct {
	EmployeeID  string          `json:"employeeId"`
	Casual      decimal.Decimal `json:"casual"`
	Sick        decimal.Decimal `json:"sick"`
	Earned      decimal.Decimal `json:"earned"`
	Maternity   decimal.Decimal `json:"maternity"`
	Paternity   decimal.Decimal `json:"paternity"`
	Bereavement decimal.Decimal `json:"bereavement"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (b BucketBalances) Get(bucket string) decimal.Decimal {
	switch bucket {
	case "casual":
		return b.Casual
	case "sick":
		return b.Sick
	case "earned":
		return b.Earned
	case "maternity":
		return b.Maternity
	case "paternity":
		return b.Paternity
	case "bereavement":
		return b.Bereavement
	default:
		return decimal.Zero
	}
}

// PoolBalance is the derived accrual-pool snapshot for an employee.
type PoolBalance struct {
	Earned         int             `json:"earned"`
	Consumed       decimal.Decimal `json:"consumed"`
	Pending        decimal.Decimal `json:"pending"`
	Available      decimal.Decimal `json:"available"`
	NextCreditDate time.Time       `json:"nextCreditDate"`
}

type Statistics struct {
	Total    int             `json:"total"`
	Pending  int             `json:"pending"`
	Approved int             `json:"approved"`
	Rejected int             `json:"rejected"`
	ByType   []TypeBreakdown `json:"byType"`
}

type TypeBreakdown struct {
	Type  string          `json:"type"`
	Count int             `json:"count"`
	Days  decimal.Decimal `json:"days"`
}
