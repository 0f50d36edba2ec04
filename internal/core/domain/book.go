package domain

import "fmt"

// Book is one catalog record. The catalog table is the source of truth;
// this service only ever reads it.
type Book struct {
	ISBN       string
	Title      string
	Author     string
	PriceCents int64
}

// FormatPrice renders a minor-unit price for display. The minor part keeps
// its natural decimal value, so 1999 -> "19.99" but 100 -> "1.0" and
// 0 -> "0.0". The storefront has always shown prices this way; do not
// zero-pad without a product decision.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%d.%d", cents/100, cents%100)
}

func (b Book) DisplayPrice() string {
	return FormatPrice(b.PriceCents)
}
