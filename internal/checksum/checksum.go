// Package checksum generates the signing digest Binga expects on charge
// requests. The digest proves the payload was built by the holder of the
// merchant private key.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
)

const (
	tagPay    = "PAY"
	tagPrepay = "PRE-PAY"
)

// Generate computes the order checksum for a charge request.
//
// The gateway concatenates the fields in this exact order, with no
// separators, and compares MD5 digests: tag, amount (already formatted as a
// fixed 2-decimal string), store id, external id, buyer email, private key.
// Any deviation in order or formatting makes the signature mismatch.
//
// chargeType "pay" selects the "PAY" tag; any other value, including
// unrecognized ones, falls back to "PRE-PAY". That fallback matches the
// gateway's own behavior and must not be turned into an error.
func Generate(chargeType, amount, storeID, externalID, buyerEmail, privateKey string) string {
	tag := tagPrepay
	if chargeType == "pay" {
		tag = tagPay
	}
	sum := md5.Sum([]byte(tag + amount + storeID + externalID + buyerEmail + privateKey))
	return hex.EncodeToString(sum[:])
}
