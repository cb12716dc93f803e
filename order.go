package binga

import (
	"time"

	"github.com/moudarir/binga/internal/format"
)

// Order is one payment order on the gateway, hydrated from a decoded
// response record. Every field is optional: the gateway omits fields freely,
// and an absent field reads as its zero value. Orders are immutable once
// returned.
type Order struct {
	code       string
	externalID string
	id         string
	status     string
	apiVersion string

	amount              float64
	totalAmount         float64
	stampDuty           float64
	clientStampDuty     float64
	serviceCharge       float64
	clientServiceCharge float64

	bookURL    string
	payURL     string
	successURL string
	failureURL string

	buyerAddress   string
	buyerEmail     string
	buyerFirstName string
	buyerLastName  string
	buyerPhone     string

	archived bool
	offline  bool

	creationDate     time.Time
	expirationDate   time.Time
	modificationDate time.Time

	raw map[string]any
}

// orderFromRecord hydrates an Order from one decoded order record. Only the
// known fields are mapped, explicitly; unknown keys are ignored and absent
// keys leave zero values. Monetary fields arrive as decimal strings (or
// numbers under JSON), booleans only as the literal "true", timestamps in
// GMT.
func orderFromRecord(rec map[string]any) *Order {
	o := &Order{raw: rec}

	o.code = stringField(rec, "code")
	o.externalID = stringField(rec, "externalId")
	o.id = stringField(rec, "id")
	o.status = stringField(rec, "status")
	o.apiVersion = stringField(rec, "apiVersion")

	o.amount = amountField(rec, "amount")
	o.totalAmount = amountField(rec, "totalAmount")
	o.stampDuty = amountField(rec, "stampDuty")
	o.clientStampDuty = amountField(rec, "clientStampDuty")
	o.serviceCharge = amountField(rec, "serviceCharge")
	o.clientServiceCharge = amountField(rec, "clientServiceCharge")

	o.bookURL = stringField(rec, "bookUrl")
	o.payURL = stringField(rec, "payUrl")
	o.successURL = stringField(rec, "successUrl")
	o.failureURL = stringField(rec, "failureUrl")

	o.buyerAddress = stringField(rec, "buyerAddress")
	o.buyerEmail = stringField(rec, "buyerEmail")
	o.buyerFirstName = stringField(rec, "buyerFirstName")
	o.buyerLastName = stringField(rec, "buyerLastName")
	o.buyerPhone = stringField(rec, "buyerPhone")

	o.archived = boolField(rec, "archived")
	o.offline = boolField(rec, "offline")

	o.creationDate = timeField(rec, "creationDate")
	o.expirationDate = timeField(rec, "expirationDate")
	o.modificationDate = timeField(rec, "modificationDate")

	return o
}

func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}

func amountField(rec map[string]any, key string) float64 {
	switch v := rec[key].(type) {
	case string:
		f, err := format.ParseAmount(v)
		if err != nil {
			return 0
		}
		return f
	case float64:
		return v
	default:
		return 0
	}
}

func boolField(rec map[string]any, key string) bool {
	switch v := rec[key].(type) {
	case string:
		return v == "true"
	case bool:
		return v
	default:
		return false
	}
}

func timeField(rec map[string]any, key string) time.Time {
	s, ok := rec[key].(string)
	if !ok {
		return time.Time{}
	}
	t, err := format.ParseTimestamp(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (o *Order) Code() string       { return o.code }
func (o *Order) ExternalID() string { return o.externalID }
func (o *Order) ID() string         { return o.id }
func (o *Order) Status() string     { return o.status }
func (o *Order) APIVersion() string { return o.apiVersion }

func (o *Order) Amount() float64              { return o.amount }
func (o *Order) TotalAmount() float64         { return o.totalAmount }
func (o *Order) StampDuty() float64           { return o.stampDuty }
func (o *Order) ClientStampDuty() float64     { return o.clientStampDuty }
func (o *Order) ServiceCharge() float64       { return o.serviceCharge }
func (o *Order) ClientServiceCharge() float64 { return o.clientServiceCharge }

func (o *Order) BookURL() string    { return o.bookURL }
func (o *Order) PayURL() string     { return o.payURL }
func (o *Order) SuccessURL() string { return o.successURL }
func (o *Order) FailureURL() string { return o.failureURL }

func (o *Order) BuyerAddress() string   { return o.buyerAddress }
func (o *Order) BuyerEmail() string     { return o.buyerEmail }
func (o *Order) BuyerFirstName() string { return o.buyerFirstName }
func (o *Order) BuyerLastName() string  { return o.buyerLastName }
func (o *Order) BuyerPhone() string     { return o.buyerPhone }

func (o *Order) Archived() bool { return o.archived }
func (o *Order) Offline() bool  { return o.offline }

func (o *Order) CreationDate() time.Time     { return o.creationDate }
func (o *Order) ExpirationDate() time.Time   { return o.expirationDate }
func (o *Order) ModificationDate() time.Time { return o.modificationDate }

// Raw returns a copy of the decoded record the Order was hydrated from,
// including any fields this version of the client does not map.
func (o *Order) Raw() map[string]any {
	out := make(map[string]any, len(o.raw))
	for k, v := range o.raw {
		out[k] = v
	}
	return out
}
