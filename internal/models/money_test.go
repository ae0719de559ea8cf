package models

import (
	"encoding/json"
	"testing"
)

func TestMoneyLineTotalRoundsToCents(t *testing.T) {
	price, err := NewMoneyFromString("19.995")
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	total := price.LineTotal(3)
	if total.String() != "60.00" {
		t.Fatalf("expected 60.00, got %s", total.String())
	}
	sum := total.Plus(NewMoneyFromDecimal(price.Decimal))
	if sum.String() != "80.00" {
		t.Fatalf("expected 80.00, got %s", sum.String())
	}
}

func TestMoneyJSONAcceptsStringAndNumber(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"12.5","b":3.456}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.A.String() != "12.50" || payload.B.String() != "3.46" {
		t.Fatalf("unexpected amounts: %s %s", payload.A, payload.B)
	}
	raw, err := json.Marshal(payload.A)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"12.50"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}
