package model

import "fmt"

// Cents is a monetary amount in centavos.  All prices and totals are
// kept as integers; formatting happens only at the HTTP/log boundary.
type Cents int64

// String renders the amount in pesos, e.g. ₱620.00.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s₱%d.%02d", sign, v/100, v%100)
}
