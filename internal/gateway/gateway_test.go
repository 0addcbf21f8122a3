package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"vet-clinic-console/internal/gateway"
	"vet-clinic-console/internal/platform/metrics"
)

type captureRecorder struct {
	mu    sync.Mutex
	calls []string // "operation/outcome"
}

func (c *captureRecorder) Observe(op, outcome string, _ time.Duration) {
	c.mu.Lock()
	c.calls = append(c.calls, op+"/"+outcome)
	c.mu.Unlock()
}

func newGateway(t *testing.T, h http.HandlerFunc, rec metrics.Recorder) *gateway.Gateway {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	gw, err := gateway.New(gateway.Config{BaseURL: ts.URL, Metrics: rec})
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	return gw
}

func TestListOwners_DecodesPayload(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/owners" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"o1","first_name":"Ana","last_name":"Suárez","phone":"5551234"}]`))
	}, nil)

	owners, err := gw.ListOwners(context.Background())
	if err != nil {
		t.Fatalf("ListOwners: %v", err)
	}
	if len(owners) != 1 || owners[0].ID != "o1" || owners[0].FirstName != "Ana" {
		t.Fatalf("decoded %+v", owners)
	}
}

func TestNon2xx_BecomesRequestErrorWithServerMessage(t *testing.T) {
	rec := &captureRecorder{}
	gw := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"owner not found"}`))
	}, rec)

	err := gw.DeleteOwner(context.Background(), "missing")
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		t.Fatalf("want *gateway.Error, got %T: %v", err, err)
	}
	if ge.Transport {
		t.Fatal("a 404 is not a transport failure")
	}
	if ge.Status != http.StatusNotFound || ge.Message != "owner not found" {
		t.Fatalf("got status=%d msg=%q", ge.Status, ge.Message)
	}
	if !gateway.IsStatus(err, http.StatusNotFound) {
		t.Fatal("IsStatus should match")
	}
	if len(rec.calls) != 1 || rec.calls[0] != "delete_owner/request_error" {
		t.Fatalf("metrics calls = %v", rec.calls)
	}
}

func TestNon2xx_GarbageBodyFallsBackToGenericMessage(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>boom</html>"))
	}, nil)

	err := gw.DeleteBill(context.Background(), "b1")
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		t.Fatalf("want *gateway.Error, got %T", err)
	}
	if ge.Message != gateway.FallbackMessage {
		t.Fatalf("message = %q, want fallback", ge.Message)
	}
}

func TestNon2xx_EmptyBodyDoesNotCrash(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, nil)

	err := gw.UpsertVetLink(context.Background(), gateway.VetLinkInput{PetID: "p", VetID: "v"})
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		t.Fatalf("want *gateway.Error, got %T", err)
	}
	if ge.Status != http.StatusBadRequest || ge.Message != gateway.FallbackMessage {
		t.Fatalf("got status=%d msg=%q", ge.Status, ge.Message)
	}
}

func TestUnreachableBackend_BecomesTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close() // la URL queda válida pero nadie escucha

	rec := &captureRecorder{}
	gw, err := gateway.New(gateway.Config{BaseURL: ts.URL, Metrics: rec})
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}

	_, err = gw.ListBills(context.Background())
	var ge *gateway.Error
	if !errors.As(err, &ge) {
		t.Fatalf("want *gateway.Error, got %T: %v", err, err)
	}
	if !ge.Transport {
		t.Fatal("connection refused should be a transport failure")
	}
	if ge.Message != gateway.FallbackMessage {
		t.Fatalf("transport failures carry the generic message, got %q", ge.Message)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "list_bills/transport_error" {
		t.Fatalf("metrics calls = %v", rec.calls)
	}
}

func TestPayBill_SendsModeInBody(t *testing.T) {
	var gotPath, gotBody string
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}, nil)

	if err := gw.PayBill(context.Background(), "app1", "bill1", "Cash"); err != nil {
		t.Fatalf("PayBill: %v", err)
	}
	if gotPath != "/billing/app1/bill1/pay" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody != `{"mode":"Cash"}` {
		t.Fatalf("body = %q", gotBody)
	}
}
