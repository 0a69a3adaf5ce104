package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestYooKassaCreatePayment(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "shop-1" || pass != "secret" {
			t.Errorf("bad basic auth %q/%q", user, pass)
		}
		if r.Header.Get("Idempotence-Key") == "" {
			t.Error("missing Idempotence-Key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "2c85-000f",
			"status": "pending",
			"confirmation": map[string]any{
				"confirmation_url": "https://yookassa.example/confirm/2c85",
			},
		})
	}))
	defer srv.Close()

	client := NewYooKassaClient(YooKassaOptions{ShopID: "shop-1", SecretKey: "secret", BaseURL: srv.URL})
	link, err := client.CreatePayment(context.Background(), 399, "Покупка 10 Реставраций, ID: 42")
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if link.ID != "2c85-000f" || link.URL != "https://yookassa.example/confirm/2c85" {
		t.Fatalf("link = %+v", link)
	}

	amount := gotBody["amount"].(map[string]any)
	if amount["value"] != "399.00" || amount["currency"] != "RUB" {
		t.Fatalf("amount = %v", amount)
	}
	if gotBody["capture"] != true {
		t.Fatal("capture not requested")
	}
}

func TestYooKassaCheckPayment(t *testing.T) {
	status := "pending"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/2c85-000f" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "2c85-000f", "status": status})
	}))
	defer srv.Close()

	client := NewYooKassaClient(YooKassaOptions{ShopID: "shop-1", SecretKey: "secret", BaseURL: srv.URL})
	paid, err := client.CheckPayment(context.Background(), "2c85-000f")
	if err != nil || paid {
		t.Fatalf("pending check = %v, %v", paid, err)
	}

	status = "succeeded"
	paid, err = client.CheckPayment(context.Background(), "2c85-000f")
	if err != nil || !paid {
		t.Fatalf("succeeded check = %v, %v", paid, err)
	}
}

func TestOxaCreatePaymentConvertsRate(t *testing.T) {
	var rateHits atomic.Int32
	rateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rateHits.Add(1)
		json.NewEncoder(w).Encode(map[string]map[string]float64{"tether": {"rub": 100}})
	}))
	defer rateSrv.Close()

	var gotAmount float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/merchants/request" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotAmount = body["amount"].(float64)
		if body["merchant"] != "oxa-key" || body["currency"] != "USDT" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result":  100,
			"trackId": "track-9",
			"payLink": "https://oxapay.example/pay/track-9",
		})
	}))
	defer srv.Close()

	client := NewOxaClient(OxaOptions{APIKey: "oxa-key", BaseURL: srv.URL, RateURL: rateSrv.URL})
	link, err := client.CreatePayment(context.Background(), 399)
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if link.ID != "track-9" || link.URL != "https://oxapay.example/pay/track-9" {
		t.Fatalf("link = %+v", link)
	}
	if gotAmount != 3.99 {
		t.Fatalf("amount = %v, want 3.99", gotAmount)
	}

	// Second invoice reuses the cached exchange rate.
	if _, err := client.CreatePayment(context.Background(), 150); err != nil {
		t.Fatalf("second CreatePayment: %v", err)
	}
	if hits := rateHits.Load(); hits != 1 {
		t.Fatalf("rate endpoint hits = %d, want 1", hits)
	}
}

func TestOxaCheckPayment(t *testing.T) {
	status := "Waiting"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/merchants/inquiry" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["trackId"] != "track-9" {
			t.Errorf("trackId = %v", body["trackId"])
		}
		json.NewEncoder(w).Encode(map[string]any{"result": 100, "status": status})
	}))
	defer srv.Close()

	client := NewOxaClient(OxaOptions{APIKey: "oxa-key", BaseURL: srv.URL})
	paid, err := client.CheckPayment(context.Background(), "track-9")
	if err != nil || paid {
		t.Fatalf("waiting check = %v, %v", paid, err)
	}

	status = "Paid"
	paid, err = client.CheckPayment(context.Background(), "track-9")
	if err != nil || !paid {
		t.Fatalf("paid check = %v, %v", paid, err)
	}
}
