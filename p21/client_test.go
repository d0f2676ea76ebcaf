package p21

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTestConnection_NotConfigured(t *testing.T) {
	t.Setenv("P21_ODATA_BASE_URL", "")
	t.Setenv("P21_ODATA_API_KEY", "")

	client := NewClient("", "")
	if _, err := client.TestConnection(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestTestConnection_ReportsStatusAndSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/$metadata" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "<edmx/>")
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "secret-token")
	result, err := client.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
	if result.Status != "ok" {
		t.Fatalf("status = %q, want ok", result.Status)
	}
	if result.HTTPStatus != http.StatusOK {
		t.Fatalf("http status = %d, want 200", result.HTTPStatus)
	}
	if result.Endpoint != srv.URL+"/$metadata" {
		t.Fatalf("endpoint = %q", result.Endpoint)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
}

func TestTestConnection_Non2xxStillReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	result, err := client.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("a 401 from the feed is still reachable: %v", err)
	}
	if result.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("http status = %d, want 401", result.HTTPStatus)
	}
}

func TestItemPrice_FollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"value":[{"item_number":"B-200","unit_price":7.25,"uom":"CS"}]}`)
			return
		}
		fmt.Fprintf(w, `{"value":[{"item_number":"A-100","unit_price":1.5,"uom":"EA"}],"@odata.nextLink":"%s/items?page=2"}`, srv.URL)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	price, err := client.ItemPrice(context.Background(), "B-200")
	if err != nil {
		t.Fatalf("ItemPrice: %v", err)
	}
	if price.ItemNumber != "B-200" || price.UOM != "CS" {
		t.Fatalf("unexpected record %+v", price)
	}
	if price.UnitPrice.String() != "7.25" {
		t.Fatalf("unit price = %s, want 7.25", price.UnitPrice.String())
	}
}

func TestItemPrice_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.ItemPrice(context.Background(), "NOPE"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItemPrice_StringPricesParse(t *testing.T) {
	// Some OData emitters serialize Edm.Decimal as a JSON string.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[{"item_number":"A-100","unit_price":"123.4567","uom":"EA"}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	price, err := client.ItemPrice(context.Background(), "a-100")
	if err != nil {
		t.Fatalf("ItemPrice: %v", err)
	}
	if price.UnitPrice.String() != "123.4567" {
		t.Fatalf("unit price = %s, want 123.4567", price.UnitPrice.String())
	}
}

func TestItemPrice_ServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.ItemPrice(context.Background(), "A-100")
	if err == nil || errors.Is(err, ErrItemNotFound) {
		t.Fatalf("a 500 must surface as a lookup failure, got %v", err)
	}
}
