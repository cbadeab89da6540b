package tinkoff

import (
	"encoding/json"
	"testing"
)

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int64
		expectErr bool
	}{
		{"number", `13660`, 13660, false},
		{"quoted number", `"13660"`, 13660, false},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"not a number", `"abc"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexInt
			err := json.Unmarshal([]byte(tt.input), &f)
			if (err != nil) != tt.expectErr {
				t.Fatalf("Unmarshal(%s) error = %v, expectErr %v", tt.input, err, tt.expectErr)
			}
			if err == nil && f.Int64() != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, f.Int64(), tt.want)
			}
		})
	}
}

func TestInitResponseIgnoresUnknownFields(t *testing.T) {
	body := `{
		"Success": true,
		"ErrorCode": "0",
		"TerminalKey": "1234567890123DEMO",
		"Status": "NEW",
		"PaymentId": "13660",
		"OrderId": "201709",
		"Amount": 10000,
		"PaymentURL": "https://securepay.tinkoff.ru/rest/Authorize/1B63Y1",
		"SomeFutureField": {"nested": true}
	}`

	var resp InitResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if !resp.Successful() {
		t.Error("Successful() = false")
	}
	if resp.PaymentID.Int64() != 13660 {
		t.Errorf("PaymentID = %d", resp.PaymentID.Int64())
	}
	if resp.Amount.Int64() != 10000 {
		t.Errorf("Amount = %d", resp.Amount.Int64())
	}
	if resp.Status != StatusNew {
		t.Errorf("Status = %s", resp.Status)
	}
	if resp.PaymentURL != "https://securepay.tinkoff.ru/rest/Authorize/1B63Y1" {
		t.Errorf("PaymentURL = %s", resp.PaymentURL)
	}
}

func TestCardListResponseArrayShape(t *testing.T) {
	body := `[
		{"CardId": "881900", "Pan": "518223******0036", "Status": "A", "RebillId": "12121212", "ExpDate": "0619"},
		{"CardId": "881901", "Pan": "430000******0777", "Status": "A", "RebillId": "", "ExpDate": "1122"}
	]`

	var resp CardListResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if !resp.Successful() {
		t.Error("array shape should imply success")
	}
	if resp.ErrorCode != "0" {
		t.Errorf("ErrorCode = %s, want 0", resp.ErrorCode)
	}
	if len(resp.Cards) != 2 {
		t.Fatalf("len(Cards) = %d, want 2", len(resp.Cards))
	}
	if resp.Cards[0].CardID != "881900" {
		t.Errorf("Cards[0].CardID = %s", resp.Cards[0].CardID)
	}
	if resp.Cards[0].RebillID.Int64() != 12121212 {
		t.Errorf("Cards[0].RebillID = %d", resp.Cards[0].RebillID.Int64())
	}
}

func TestCardListResponseObjectShape(t *testing.T) {
	body := `{"Success": false, "ErrorCode": "7", "Message": "Customer not found"}`

	var resp CardListResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if resp.Successful() {
		t.Error("failure object must not decode as success")
	}
	if resp.ErrorCode != "7" {
		t.Errorf("ErrorCode = %s, want 7", resp.ErrorCode)
	}
	if len(resp.Cards) != 0 {
		t.Errorf("Cards should be empty on the failure shape")
	}
}
