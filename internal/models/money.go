package models

import "math"

// MaxMoney is the largest amount a NUMERIC(10,2) column holds
const MaxMoney = 99999999.99

// MoneyProblem reports why amount cannot be stored as a price, or "" if it can.
// Prices are positive, at most MaxMoney and carry at most two decimals.
func MoneyProblem(amount float64) string {
	switch {
	case math.IsNaN(amount) || amount <= 0:
		return "must be a positive amount"
	case amount > MaxMoney:
		return "amount is too large"
	case math.Round(amount*100)/100 != amount:
		return "at most two decimal places are allowed"
	}
	return ""
}
