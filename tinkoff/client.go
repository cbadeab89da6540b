package tinkoff

import (
	"context"
	"net/http"
)

// Client is the operation facade over the merchant gateway API. Every
// method validates its inputs locally, builds a payload, delegates to the
// query executor and returns either the typed result or the executor's
// error unchanged. Methods are single round-trips: no retries, no
// multi-step orchestration. A Client is safe for concurrent use.
type Client struct {
	api *API
}

// NewClient creates a client with a default HTTP client.
func NewClient(credential Credential) *Client {
	return NewClientWithHTTP(nil, credential)
}

// NewClientWithHTTP creates a client over a caller-supplied HTTP client,
// which owns all transport policy (timeouts, pooling, TLS).
func NewClientWithHTTP(client *http.Client, credential Credential) *Client {
	return &Client{api: NewAPI(client, credential)}
}

// InitOptions are the optional Init parameters. Zero values mean "use the
// gateway default": one-stage pay type, Russian form language.
type InitOptions struct {
	PayType         string
	Language        string
	CustomerKey     string
	Recurrent       bool
	IP              string
	Description     string
	NotificationURL string
	SuccessURL      string
	FailURL         string
}

// Init registers a new payment. Amount is in minor currency units (kopecks)
// with 1 to 10 digits; orderID is the merchant's order identifier, 1 to 20
// characters. A recurrent payment requires a customer key.
func (c *Client) Init(ctx context.Context, amount int64, orderID string, opts *InitOptions) (InitResponse, error) {
	if opts == nil {
		opts = &InitOptions{}
	}
	payType := opts.PayType
	if payType == "" {
		payType = PayTypeOneStage
	}
	language := opts.Language
	if language == "" {
		language = LanguageRU
	}

	if err := validateIntLength("Amount", amount, 1, 10); err != nil {
		return InitResponse{}, err
	}
	if err := validateStringLength("OrderId", orderID, 1, 20); err != nil {
		return InitResponse{}, err
	}
	if err := validateInEnum("PayType", payType, PayTypes()); err != nil {
		return InitResponse{}, err
	}
	if err := validateInEnum("Language", language, FormLanguages()); err != nil {
		return InitResponse{}, err
	}
	if opts.Recurrent && opts.CustomerKey == "" {
		return InitResponse{}, &ValidationError{
			Field:   "CustomerKey",
			Message: "CustomerKey is required for recurrent payment.",
		}
	}

	payload := NewPayload()
	payload.Set("Amount", amount)
	payload.Set("OrderId", orderID)
	payload.Set("PayType", payType)
	payload.Set("Language", language)

	if opts.Recurrent {
		payload.Set("Recurrent", RecurrentValue)
	}
	if opts.CustomerKey != "" {
		if err := validateStringLength("CustomerKey", opts.CustomerKey, 1, 36); err != nil {
			return InitResponse{}, err
		}
		payload.Set("CustomerKey", opts.CustomerKey)
	}
	if err := c.setOptionalIP(payload, opts.IP); err != nil {
		return InitResponse{}, err
	}
	if opts.Description != "" {
		if err := validateStringLength("Description", opts.Description, 1, 250); err != nil {
			return InitResponse{}, err
		}
		payload.Set("Description", opts.Description)
	}
	if opts.NotificationURL != "" {
		payload.Set("NotificationURL", opts.NotificationURL)
	}
	if opts.SuccessURL != "" {
		payload.Set("SuccessURL", opts.SuccessURL)
	}
	if opts.FailURL != "" {
		payload.Set("FailURL", opts.FailURL)
	}

	return buildQuery[InitResponse](ctx, c.api, pathInit, payload)
}

// ConfirmOptions are the optional Confirm parameters. A zero Amount means
// "confirm the full authorized amount".
type ConfirmOptions struct {
	Amount int64
	IP     string
}

// Confirm captures a two-stage payment in AUTHORIZED state.
func (c *Client) Confirm(ctx context.Context, paymentID int64, opts *ConfirmOptions) (ConfirmResponse, error) {
	if opts == nil {
		opts = &ConfirmOptions{}
	}
	payload, err := c.paymentPayload(paymentID, opts.Amount, opts.IP)
	if err != nil {
		return ConfirmResponse{}, err
	}
	return buildQuery[ConfirmResponse](ctx, c.api, pathConfirm, payload)
}

// CancelOptions are the optional Cancel parameters. A zero Amount means
// "cancel the full amount".
type CancelOptions struct {
	Amount int64
	IP     string
}

// Cancel reverses or refunds a payment depending on its current state.
func (c *Client) Cancel(ctx context.Context, paymentID int64, opts *CancelOptions) (CancelResponse, error) {
	if opts == nil {
		opts = &CancelOptions{}
	}
	payload, err := c.paymentPayload(paymentID, opts.Amount, opts.IP)
	if err != nil {
		return CancelResponse{}, err
	}
	return buildQuery[CancelResponse](ctx, c.api, pathCancel, payload)
}

// GetStateOptions are the optional GetState parameters.
type GetStateOptions struct {
	IP string
}

// GetState returns the current payment state.
func (c *Client) GetState(ctx context.Context, paymentID int64, opts *GetStateOptions) (GetStateResponse, error) {
	if opts == nil {
		opts = &GetStateOptions{}
	}
	if err := validateIntLength("PaymentId", paymentID, 1, 20); err != nil {
		return GetStateResponse{}, err
	}

	payload := NewPayload()
	payload.Set("PaymentId", paymentID)
	if err := c.setOptionalIP(payload, opts.IP); err != nil {
		return GetStateResponse{}, err
	}

	return buildQuery[GetStateResponse](ctx, c.api, pathGetState, payload)
}

// Resend asks the gateway to re-deliver undelivered payment notifications.
func (c *Client) Resend(ctx context.Context) (ResendResponse, error) {
	return buildQuery[ResendResponse](ctx, c.api, pathResend, NewPayload())
}

// ChargeOptions are the optional Charge parameters.
type ChargeOptions struct {
	IP string
}

// Charge performs a recurring charge against a previously registered
// rebill identifier.
func (c *Client) Charge(ctx context.Context, paymentID, rebillID int64, opts *ChargeOptions) (ChargeResponse, error) {
	if opts == nil {
		opts = &ChargeOptions{}
	}
	if err := validateIntLength("PaymentId", paymentID, 1, 20); err != nil {
		return ChargeResponse{}, err
	}
	if err := validateIntLength("RebillId", rebillID, 1, 20); err != nil {
		return ChargeResponse{}, err
	}

	payload := NewPayload()
	payload.Set("PaymentId", paymentID)
	payload.Set("RebillId", rebillID)
	if err := c.setOptionalIP(payload, opts.IP); err != nil {
		return ChargeResponse{}, err
	}

	return buildQuery[ChargeResponse](ctx, c.api, pathCharge, payload)
}

// CustomerOptions are the optional parameters shared by the customer and
// card operations.
type CustomerOptions struct {
	IP string
}

// GetCustomer returns a stored customer.
func (c *Client) GetCustomer(ctx context.Context, customerKey string, opts *CustomerOptions) (CustomerResponse, error) {
	if opts == nil {
		opts = &CustomerOptions{}
	}
	payload, err := c.customerPayload(customerKey, opts.IP)
	if err != nil {
		return CustomerResponse{}, err
	}
	return buildQuery[CustomerResponse](ctx, c.api, pathGetCustomer, payload)
}

// AddCustomerOptions are the optional AddCustomer parameters.
type AddCustomerOptions struct {
	Phone string
	Email string
	IP    string
}

// AddCustomer registers a customer for card storage and recurring payments.
func (c *Client) AddCustomer(ctx context.Context, customerKey string, opts *AddCustomerOptions) (EmptyResponse, error) {
	if opts == nil {
		opts = &AddCustomerOptions{}
	}
	payload, err := c.customerPayload(customerKey, opts.IP)
	if err != nil {
		return EmptyResponse{}, err
	}

	if opts.Phone != "" {
		if err := validateStringLength("Phone", opts.Phone, 11, 15); err != nil {
			return EmptyResponse{}, err
		}
		payload.Set("Phone", opts.Phone)
	}
	if opts.Email != "" {
		if err := validateStringLength("Email", opts.Email, 6, 100); err != nil {
			return EmptyResponse{}, err
		}
		payload.Set("Email", opts.Email)
	}

	return buildQuery[EmptyResponse](ctx, c.api, pathAddCustomer, payload)
}

// RemoveCustomer deletes a stored customer.
func (c *Client) RemoveCustomer(ctx context.Context, customerKey string, opts *CustomerOptions) (EmptyResponse, error) {
	if opts == nil {
		opts = &CustomerOptions{}
	}
	payload, err := c.customerPayload(customerKey, opts.IP)
	if err != nil {
		return EmptyResponse{}, err
	}
	return buildQuery[EmptyResponse](ctx, c.api, pathRemoveCustomer, payload)
}

// GetCardList returns the customer's stored cards.
func (c *Client) GetCardList(ctx context.Context, customerKey string, opts *CustomerOptions) (CardListResponse, error) {
	if opts == nil {
		opts = &CustomerOptions{}
	}
	payload, err := c.customerPayload(customerKey, opts.IP)
	if err != nil {
		return CardListResponse{}, err
	}
	return buildQuery[CardListResponse](ctx, c.api, pathGetCardList, payload)
}

// RemoveCardOptions are the optional RemoveCard parameters.
type RemoveCardOptions struct {
	IP string
}

// RemoveCard deletes one stored card of a customer.
func (c *Client) RemoveCard(ctx context.Context, customerKey, cardID string, opts *RemoveCardOptions) (CardResponse, error) {
	if opts == nil {
		opts = &RemoveCardOptions{}
	}
	payload, err := c.customerPayload(customerKey, opts.IP)
	if err != nil {
		return CardResponse{}, err
	}

	if err := validateStringLength("CardId", cardID, 1, 40); err != nil {
		return CardResponse{}, err
	}
	payload.Set("CardId", cardID)

	return buildQuery[CardResponse](ctx, c.api, pathRemoveCard, payload)
}

// paymentPayload builds the shared Confirm/Cancel payload: a payment
// identifier plus optional amount and client IP.
func (c *Client) paymentPayload(paymentID, amount int64, ip string) (*Payload, error) {
	if err := validateIntLength("PaymentId", paymentID, 1, 20); err != nil {
		return nil, err
	}

	payload := NewPayload()
	payload.Set("PaymentId", paymentID)

	if amount != 0 {
		if err := validateIntLength("Amount", amount, 1, 10); err != nil {
			return nil, err
		}
		payload.Set("Amount", amount)
	}
	if err := c.setOptionalIP(payload, ip); err != nil {
		return nil, err
	}

	return payload, nil
}

// customerPayload builds the payload shared by the customer and card
// operations.
func (c *Client) customerPayload(customerKey, ip string) (*Payload, error) {
	if err := validateStringLength("CustomerKey", customerKey, 1, 36); err != nil {
		return nil, err
	}

	payload := NewPayload()
	payload.Set("CustomerKey", customerKey)

	if err := c.setOptionalIP(payload, ip); err != nil {
		return nil, err
	}

	return payload, nil
}

// setOptionalIP validates and sets the client IP field when present.
func (c *Client) setOptionalIP(payload *Payload, ip string) error {
	if ip == "" {
		return nil
	}
	if err := validateStringLength("IP", ip, 7, 40); err != nil {
		return err
	}
	payload.Set("IP", ip)
	return nil
}
