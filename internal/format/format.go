// Package format normalizes the values Binga is picky about: monetary
// amounts as fixed 2-decimal strings and timestamps in the gateway's GMT
// textual shape.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GMT is the fixed zone the gateway renders and parses every timestamp in.
var GMT = time.FixedZone("GMT", 0)

// expirationLayout renders e.g. "2026-08-28T15:04:05GMT". The trailing zone
// abbreviation with no separator is part of the wire format; the checksum and
// the gateway both depend on this exact shape.
const expirationLayout = "2006-01-02T15:04:05MST"

// timestampLayouts are tried in order when hydrating order dates. The
// gateway emits the first; the rest keep parsing liberal for older
// responses.
var timestampLayouts = []string{
	"2006-01-02T15:04:05MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Amount renders a monetary amount as a fixed-point string with exactly two
// fraction digits, rounding half away from zero. Decimal arithmetic avoids
// binary float representation error (19.999 becomes "20.00", never
// "19.999999...").
func Amount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// ParseAmount is the inverse of Amount for values coming back from the
// gateway, which transmits all monetary fields as decimal strings.
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// ExpirationDate returns the order expiration timestamp expireDays calendar
// days from now, rendered in GMT. Non-positive expireDays clamps to 7, the
// gateway default. A zero now means time.Now().
func ExpirationDate(expireDays int, now time.Time) string {
	if expireDays <= 0 {
		expireDays = 7
	}
	if now.IsZero() {
		now = time.Now()
	}
	return now.In(GMT).AddDate(0, 0, expireDays).Format(expirationLayout)
}

// ParseTimestamp parses a gateway timestamp in GMT. Order fields are
// optional, so callers treat an error as "field absent".
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, GMT); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
