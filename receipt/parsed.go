package receipt

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// DefaultCurrency is used for items that do not carry a currency.
const DefaultCurrency = "INR"

// ErrInvalidJSON is returned when the OCR reply is not a JSON object.
var ErrInvalidJSON = errors.New("receipt parser returned invalid JSON")

// Item is a single line of a parsed receipt. Quantity and Rate keep the textual form
// the parser sent, since they are only ever displayed.
type Item struct {
	Description string
	Quantity    string
	Rate        string
	Currency    string
	Amount      float64 // Missing or null amounts are 0.
}

// Parsed is the result of parsing a receipt.
type Parsed struct {
	Raw        json.RawMessage // The reply exactly as received.
	VendorName string
	BillNumber string
	Items      []Item
}

// Total returns the sum of all item amounts.
func (p *Parsed) Total() float64 {
	var total float64
	for _, item := range p.Items {
		total += item.Amount
	}
	return total
}

// Decode extracts the fields used by the expense claim flow from an OCR reply.
func Decode(raw []byte) (*Parsed, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, ErrInvalidJSON
	}

	parsed := &Parsed{
		Raw:        json.RawMessage(raw),
		VendorName: root.Get("vendor_name").String(),
		BillNumber: root.Get("bill_number").String(),
	}

	for _, item := range root.Get("items").Array() {
		currency := item.Get("currency").String()
		if currency == "" {
			currency = DefaultCurrency
		}
		parsed.Items = append(parsed.Items, Item{
			Description: item.Get("description").String(),
			Quantity:    item.Get("quantity").String(),
			Rate:        item.Get("rate").String(),
			Currency:    currency,
			Amount:      item.Get("amount").Float(),
		})
	}

	return parsed, nil
}
