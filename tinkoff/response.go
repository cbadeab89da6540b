package tinkoff

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Response is the constraint every typed gateway response satisfies through
// an embedded BaseResponse. The query executor uses it to read the Success
// discriminant without knowing the concrete shape.
type Response interface {
	Successful() bool
}

// BaseResponse carries the two fields the gateway returns on every
// operation: the Success discriminant and an error code ("0" on success).
type BaseResponse struct {
	Success   bool   `json:"Success"`
	ErrorCode string `json:"ErrorCode"`
}

// Successful reports whether the gateway accepted the request.
func (r BaseResponse) Successful() bool {
	return r.Success
}

// FlexInt is an int64 that the gateway serializes inconsistently: sometimes
// as a JSON number, sometimes as a quoted decimal string ("13660"). Both
// forms decode; an absent or empty value decodes to zero.
type FlexInt int64

// UnmarshalJSON accepts a JSON number, a quoted decimal string, or null.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*f = FlexInt(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexInt(v)
	return nil
}

// Int64 returns the value as a plain int64.
func (f FlexInt) Int64() int64 {
	return int64(f)
}

// ErrorResponse is the generic failure shape: every rejected operation
// carries at least a message, optionally extra details.
type ErrorResponse struct {
	BaseResponse
	Message string `json:"Message"`
	Details string `json:"Details"`
}

// InitResponse is the result of registering a new payment.
type InitResponse struct {
	BaseResponse
	Amount     FlexInt `json:"Amount"`
	OrderID    string  `json:"OrderId"`
	Status     string  `json:"Status"`
	PaymentID  FlexInt `json:"PaymentId"`
	PaymentURL string  `json:"PaymentURL"`
}

// ConfirmResponse is the result of confirming a two-stage payment.
type ConfirmResponse struct {
	BaseResponse
	OrderID   string  `json:"OrderId"`
	PaymentID FlexInt `json:"PaymentId"`
	Status    string  `json:"Status"`
}

// CancelResponse is the result of cancelling a payment; for a partial
// cancellation NewAmount is the remaining amount.
type CancelResponse struct {
	BaseResponse
	PaymentID      FlexInt `json:"PaymentId"`
	OrderID        string  `json:"OrderId"`
	OriginalAmount FlexInt `json:"OriginalAmount"`
	NewAmount      FlexInt `json:"NewAmount"`
	Status         string  `json:"Status"`
}

// GetStateResponse is the current state of a payment.
type GetStateResponse struct {
	BaseResponse
	PaymentID FlexInt `json:"PaymentId"`
	NewAmount FlexInt `json:"NewAmount"`
	Status    string  `json:"Status"`
}

// ResendResponse reports how many undelivered notifications were queued for
// resending.
type ResendResponse struct {
	BaseResponse
	Count FlexInt `json:"Count"`
}

// ChargeResponse is the result of charging a recurring payment.
type ChargeResponse struct {
	BaseResponse
	Amount    FlexInt `json:"Amount"`
	OrderID   string  `json:"OrderId"`
	PaymentID FlexInt `json:"PaymentId"`
	Status    string  `json:"Status"`
}

// CustomerResponse describes a stored customer.
type CustomerResponse struct {
	BaseResponse
	CustomerKey string `json:"CustomerKey"`
	Email       string `json:"Email"`
	Phone       string `json:"Phone"`
	Pan         string `json:"Pan"`
	ExpDate     string `json:"ExpDate"`
}

// Card is one stored card in a card list.
type Card struct {
	CardID   string  `json:"CardId"`
	Pan      string  `json:"Pan"`
	ExpDate  string  `json:"ExpDate"`
	Status   string  `json:"Status"`
	RebillID FlexInt `json:"RebillId"`
}

// CardResponse describes a single stored card, returned by RemoveCard.
type CardResponse struct {
	BaseResponse
	CardID  string `json:"CardId"`
	Pan     string `json:"Pan"`
	ExpDate string `json:"ExpDate"`
}

// CardListResponse holds a customer's stored cards. On success the gateway
// returns a bare JSON array rather than an object, so decoding handles both:
// an array becomes the card list with an implicit success, while an object
// (the failure shape) decodes field-wise and falls through to the error
// path of the query executor.
type CardListResponse struct {
	BaseResponse
	Cards []Card
}

// UnmarshalJSON decodes either the bare-array success shape or the object
// failure shape.
func (r *CardListResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &r.Cards); err != nil {
			return err
		}
		r.Success = true
		r.ErrorCode = "0"
		return nil
	}
	return json.Unmarshal(data, &r.BaseResponse)
}

// EmptyResponse is returned by operations whose success carries no
// operation-specific fields (AddCustomer, RemoveCustomer).
type EmptyResponse struct {
	BaseResponse
}
