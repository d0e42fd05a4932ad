package account

// Totals aggregates the signed amounts posted to one account.
type Totals struct {
	SumCents    int64
	CreditCents int64 // sum of positive amounts
	DebitCents  int64 // sum of negative amounts, <= 0
}

// TotalsOf aggregates amounts in memory. It must agree with the store's SQL aggregation.
func TotalsOf(amounts []int64) Totals {
	var t Totals

	for _, a := range amounts {
		t.SumCents += a

		if a > 0 {
			t.CreditCents += a
		} else {
			t.DebitCents += a
		}
	}

	return t
}

// CurrentBalance is the starting balance plus every posted amount, for every account type.
// Loan repayments are posted as positive amounts, so they raise the loan account's balance.
func CurrentBalance(a *Account, t Totals) int64 {
	return a.StartingBalanceCents + t.SumCents
}

// TotalSpendingOrPayments is what has been paid toward a loan, or spent from any other
// account, capped at the starting balance.
func TotalSpendingOrPayments(a *Account, t Totals) int64 {
	var total int64
	if a.IsLoan() {
		total = t.CreditCents
	} else {
		total = -t.DebitCents
	}

	return min(total, a.StartingBalanceCents)
}

// Balance is an account together with its derived figures.
type Balance struct {
	Account                 *Account
	Totals                  Totals
	CurrentCents            int64
	SpendingOrPaymentsCents int64
}

func NewBalance(a *Account, t Totals) Balance {
	return Balance{
		Account:                 a,
		Totals:                  t,
		CurrentCents:            CurrentBalance(a, t),
		SpendingOrPaymentsCents: TotalSpendingOrPayments(a, t),
	}
}
