package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// contract_price must round-trip through JSON without passing through a
// binary float: 123.4567 in is 123.4567 out, exactly.
func TestVendorContractLine_PriceJSONRoundTrip(t *testing.T) {
	price, err := decimal.NewFromString("123.4567")
	if err != nil {
		t.Fatalf("bad decimal: %v", err)
	}
	line := VendorContractLine{
		VendorItemNumber: "A-100",
		VendorUom:        "EA",
		ContractPrice:    price,
		Currency:         "USD",
	}

	encoded, err := json.Marshal(line)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(encoded), `"123.4567"`) {
		t.Fatalf("price should serialize as a decimal string, got %s", encoded)
	}

	var decoded VendorContractLine
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.ContractPrice.Equal(price) || decoded.ContractPrice.String() != "123.4567" {
		t.Fatalf("round trip gave %s, want 123.4567", decoded.ContractPrice.String())
	}
}

func TestEnumValidators(t *testing.T) {
	for _, s := range []ExceptionStatus{ExceptionStatusOpen, ExceptionStatusAcknowledged, ExceptionStatusResolved, ExceptionStatusDismissed} {
		if !ValidExceptionStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if ValidExceptionStatus("closed") {
		t.Error("unknown exception status should be invalid")
	}

	for _, rt := range []RunType{RunTypeManual, RunTypeScheduled, RunTypeRetry} {
		if !ValidRunType(rt) {
			t.Errorf("%s should be valid", rt)
		}
	}
	if ValidRunType("cron") {
		t.Error("unknown run type should be invalid")
	}
}
