package internal

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// AmountPayable returns the monetary value attributed to a requirement in amount views.
// A stored non-zero AmountToPay is authoritative. Otherwise the penalty is only deducted
// once the requirement has been received or paid.
func AmountPayable(req Requirement, status Status) decimal.Decimal {
	if !req.AmountToPay.IsZero() {
		return req.AmountToPay
	}
	switch status {
	case StatusReceived, StatusPaid:
		return req.TotalPrice.Sub(req.Penalty)
	default:
		return req.TotalPrice
	}
}

// ValueOf returns what a requirement contributes to a bucket in the given view mode
func ValueOf(req Requirement, status Status, mode ViewMode) decimal.Decimal {
	if mode == ViewAmount {
		return AmountPayable(req, status)
	}
	return one
}

// percentOf returns part/total*100, or 0 when total is zero
func percentOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
