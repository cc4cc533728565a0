package liquid

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFilterNumberFormat(t *testing.T) {
	ctx := newContext(nil, &Options{}, nil, nil)
	in := NumberValue(decimal.NewFromFloat(1234.5))
	v, err := filterNumberFormat(in, &Args{ctx: ctx, positional: []Value{IntValue(2)}}, ctx)
	if err != nil {
		t.Fatalf("number_format: %v", err)
	}
	if got := v.ToString(); got != "1,234.50" {
		t.Errorf("number_format: got %q", got)
	}
}

func TestFilterMoney(t *testing.T) {
	ctx := newContext(nil, &Options{}, nil, nil)
	in := NumberValue(decimal.NewFromFloat(19.9))
	v, err := filterMoney(in, &Args{ctx: ctx, positional: []Value{StringValue("USD")}}, ctx)
	if err != nil {
		t.Fatalf("money: %v", err)
	}
	if got := v.ToString(); got != "$19.90" {
		t.Errorf("money: got %q", got)
	}
}

func TestFilterMoneyUnknownCurrency(t *testing.T) {
	ctx := newContext(nil, &Options{}, nil, nil)
	in := NumberValue(decimal.NewFromInt(1))
	_, err := filterMoney(in, &Args{ctx: ctx, positional: []Value{StringValue("NOTACODE")}}, ctx)
	if err == nil {
		t.Error("expected error for invalid currency code")
	}
}
