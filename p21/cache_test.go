package p21

import (
	"errors"
	"testing"
)

func TestDecodeCachedPrice_PositiveEntry(t *testing.T) {
	price, err := decodeCachedPrice(cachedPrice{
		ItemNumber: "A-100",
		UnitPrice:  "12.5000",
		UOM:        "EA",
	})
	if err != nil {
		t.Fatalf("decodeCachedPrice: %v", err)
	}
	if price.ItemNumber != "A-100" || price.UOM != "EA" {
		t.Fatalf("record = %+v", price)
	}
	if price.UnitPrice.String() != "12.5000" {
		t.Fatalf("unit price = %s, want 12.5000", price.UnitPrice.String())
	}
}

func TestDecodeCachedPrice_NegativeEntryIsNotFound(t *testing.T) {
	_, err := decodeCachedPrice(cachedPrice{ItemNumber: "GONE-1", NotFound: true})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("negative entry should decode to ErrItemNotFound, got %v", err)
	}
}

func TestDecodeCachedPrice_CorruptEntryIsNeitherHitNorMiss(t *testing.T) {
	_, err := decodeCachedPrice(cachedPrice{ItemNumber: "A-100", UnitPrice: "garbage"})
	if err == nil || errors.Is(err, ErrItemNotFound) {
		t.Fatalf("corrupt entry must force a live lookup, got %v", err)
	}
}
