package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types. The set is open: administrative tooling may introduce
// new tags, so validation happens on buckets and statuses, not types.
const (
	TxTypeDeposit    = "deposit"
	TxTypeWithdraw   = "withdraw"
	TxTypeInvest     = "invest"
	TxTypeAdjustment = "adjustment"
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

const (
	BucketChecking = "checking"
	BucketSavings  = "savings"
	BucketUSDT     = "usdt"
)

func IsBucket(name string) bool {
	switch name {
	case BucketChecking, BucketSavings, BucketUSDT:
		return true
	}
	return false
}

type User struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// Balance holds the three bucket amounts for one user, in cents.
type Balance struct {
	ID       int   `db:"id"`
	UserID   int   `db:"user_id"`
	Checking int64 `db:"checking"`
	Savings  int64 `db:"savings"`
	USDT     int64 `db:"usdt"`
}

// Bucket returns the amount held in the named bucket.
func (b *Balance) Bucket(name string) int64 {
	switch name {
	case BucketChecking:
		return b.Checking
	case BucketSavings:
		return b.Savings
	case BucketUSDT:
		return b.USDT
	}
	return 0
}

// Total returns the sum of all buckets.
func (b *Balance) Total() int64 {
	return b.Checking + b.Savings + b.USDT
}

// Transaction is one entry of the transaction log. Once Status leaves
// Pending the row is never updated again except for the soft-delete mark.
type Transaction struct {
	ID         uuid.UUID  `db:"id"`
	UserID     int        `db:"user_id"`
	Type       string     `db:"type"`
	Amount     int64      `db:"amount"`
	Method     string     `db:"method"`
	Account    string     `db:"account"`
	Status     string     `db:"status"`
	ReceiptRef string     `db:"receipt_ref"`
	Date       time.Time  `db:"date"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

// Investment is a locked principal position. Derived fields (progress,
// expected profit) are computed on read and never stored.
type Investment struct {
	ID           int        `db:"id"`
	UserID       int        `db:"user_id"`
	Plan         string     `db:"plan"`
	Amount       int64      `db:"amount"`
	Rate         float64    `db:"rate"`
	SourceBucket string     `db:"source_bucket"`
	StartDate    time.Time  `db:"start_date"`
	MaturityDate time.Time  `db:"maturity_date"`
	RedeemedAt   *time.Time `db:"redeemed_at"`
}

// InvestmentPlan is read-only catalog data; Min and Max are in cents.
type InvestmentPlan struct {
	Name string
	Rate float64
	Term string
	Days int
	Min  int64
	Max  int64
}

// Alert is a standalone operator alert, persisted outside the transaction
// log so it survives even when the log itself is in doubt.
type Alert struct {
	ID        int64     `db:"id"`
	Kind      string    `db:"kind"`
	TxID      uuid.UUID `db:"tx_id"`
	UserID    int       `db:"user_id"`
	Details   string    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
}
