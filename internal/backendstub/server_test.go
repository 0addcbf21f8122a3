package backendstub_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vet-clinic-console/internal/backendstub"
	"vet-clinic-console/internal/clinic"
)

func doReq(t *testing.T, base, method, path string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, base+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func TestHTTP_VisitLifecycle(t *testing.T) {
	stub := backendstub.New()
	vets := stub.SeedVets("Dr. Patel")
	ts := httptest.NewServer(stub.Handler())
	defer ts.Close()

	// 1) Alta de dueño y mascota
	st, body := doReq(t, ts.URL, "POST", "/owners", map[string]any{
		"first_name": "Ana", "last_name": "Suárez",
		"phone": "5551234", "address": "Calle 1",
	})
	if st != http.StatusCreated {
		t.Fatalf("create owner: %d %s", st, body)
	}
	var owner clinic.Owner
	_ = json.Unmarshal(body, &owner)

	st, body = doReq(t, ts.URL, "POST", "/pets", map[string]any{
		"name": "Milo", "species": "dog", "owner_id": owner.ID,
	})
	if st != http.StatusCreated {
		t.Fatalf("create pet: %d %s", st, body)
	}
	var pet clinic.Pet
	_ = json.Unmarshal(body, &pet)

	// 2) Reservar cita
	st, body = doReq(t, ts.URL, "POST", "/appointments", map[string]any{
		"pet_id": pet.ID, "vet_id": vets[0].ID,
		"date": "2026-09-10", "time": "10:30", "reason": "vaccine",
	})
	if st != http.StatusCreated {
		t.Fatalf("create appointment: %d %s", st, body)
	}
	var appt clinic.Appointment
	_ = json.Unmarshal(body, &appt)
	if appt.Status != clinic.AppointmentScheduled || appt.PetName != "Milo" {
		t.Fatalf("appointment = %+v", appt)
	}

	// 3) Una cita Scheduled no se puede borrar
	if st, _ = doReq(t, ts.URL, "DELETE", "/appointments/"+appt.ID, nil); st != http.StatusConflict {
		t.Fatalf("delete scheduled: got %d, want 409", st)
	}

	// 4) Completar la visita genera exactamente una factura Unpaid
	st, body = doReq(t, ts.URL, "POST", "/appointments/"+appt.ID+"/complete", map[string]any{
		"description": "annual check", "cost": 120.5,
	})
	if st != http.StatusOK {
		t.Fatalf("complete: %d %s", st, body)
	}

	st, body = doReq(t, ts.URL, "GET", "/billing", nil)
	if st != http.StatusOK {
		t.Fatalf("list bills: %d", st)
	}
	var bills []clinic.Bill
	_ = json.Unmarshal(body, &bills)
	if len(bills) != 1 || bills[0].Status != clinic.BillUnpaid || bills[0].AppointmentID != appt.ID {
		t.Fatalf("bills = %+v", bills)
	}

	// 5) Completar dos veces es conflicto
	if st, _ = doReq(t, ts.URL, "POST", "/appointments/"+appt.ID+"/complete", map[string]any{
		"description": "again", "cost": 1,
	}); st != http.StatusConflict {
		t.Fatalf("second complete: got %d, want 409", st)
	}

	// 6) Pagar sin modo es 400; con modo transiciona a Paid
	payPath := "/billing/" + appt.ID + "/" + bills[0].ID + "/pay"
	if st, _ = doReq(t, ts.URL, "PUT", payPath, map[string]any{"mode": ""}); st != http.StatusBadRequest {
		t.Fatalf("pay without mode: got %d, want 400", st)
	}
	st, body = doReq(t, ts.URL, "PUT", payPath, map[string]any{"mode": "Cash"})
	if st != http.StatusOK {
		t.Fatalf("pay: %d %s", st, body)
	}
	var paid clinic.Bill
	_ = json.Unmarshal(body, &paid)
	if paid.Status != clinic.BillPaid || paid.Mode != "Cash" {
		t.Fatalf("paid bill = %+v", paid)
	}

	// 7) El historial de la mascota refleja la visita
	st, body = doReq(t, ts.URL, "GET", "/pet-history/"+pet.ID, nil)
	if st != http.StatusOK {
		t.Fatalf("history: %d", st)
	}
	var history []clinic.HistoryEntry
	_ = json.Unmarshal(body, &history)
	if len(history) != 1 || history[0].VetName != "Dr. Patel" || history[0].OwnerContact != "5551234" {
		t.Fatalf("history = %+v", history)
	}

	// 8) Ahora sí: la cita Completed se puede borrar
	if st, _ = doReq(t, ts.URL, "DELETE", "/appointments/"+appt.ID, nil); st != http.StatusOK {
		t.Fatalf("delete completed: got %d, want 200", st)
	}
}

func TestHTTP_ErrorBodiesCarryMessage(t *testing.T) {
	stub := backendstub.New()
	ts := httptest.NewServer(stub.Handler())
	defer ts.Close()

	st, body := doReq(t, ts.URL, "DELETE", "/owners/nope", nil)
	if st != http.StatusNotFound {
		t.Fatalf("got %d, want 404", st)
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		t.Fatalf("error body should carry a message: %s", body)
	}
}

func TestHTTP_DeleteOwnerCascadesPets(t *testing.T) {
	stub := backendstub.New()
	ts := httptest.NewServer(stub.Handler())
	defer ts.Close()

	_, body := doReq(t, ts.URL, "POST", "/owners", map[string]any{
		"first_name": "Ana", "last_name": "Suárez", "phone": "5551234", "address": "x",
	})
	var owner clinic.Owner
	_ = json.Unmarshal(body, &owner)

	_, _ = doReq(t, ts.URL, "POST", "/pets", map[string]any{
		"name": "Milo", "species": "dog", "owner_id": owner.ID,
	})

	if st, _ := doReq(t, ts.URL, "DELETE", "/owners/"+owner.ID, nil); st != http.StatusOK {
		t.Fatalf("delete owner: %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/owners/"+owner.ID+"/pets", nil); st != http.StatusNotFound {
		t.Fatalf("pets of deleted owner: got %d, want 404", st)
	}
}
