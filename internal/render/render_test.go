package render_test

import (
	"bytes"
	"strings"
	"testing"

	"vet-clinic-console/internal/clinic"
	"vet-clinic-console/internal/render"
	"vet-clinic-console/internal/store"
)

func sampleSnapshot() store.Snapshot {
	return store.Snapshot{
		Owners: []clinic.Owner{
			{ID: "o1", FirstName: "Ana", LastName: "Suárez", Phone: "5551234", Address: "Calle 1"},
			{ID: "o2", FirstName: "Bruno", LastName: "Paz", Phone: "7779999", Address: "Calle 2"},
		},
		Pets: []clinic.Pet{
			{ID: "p1", Name: "Milo", Species: "Dog", OwnerID: "o1", Age: 3},
			{ID: "p2", Name: "Luna", Species: "Cat", OwnerID: "o1", Age: 5},
		},
		Vets: []clinic.Veterinarian{
			{ID: "v1", Name: "Dr. Patel"},
			{ID: "v2", Name: "Dr. Gomez"},
			{ID: "v3", Name: "Dr. Lindqvist"},
		},
		PetVets: []clinic.PetVet{
			{VetID: "v1", VetName: "Dr. Patel", IsPrimary: true},
			{VetID: "v2", VetName: "Dr. Gomez", IsPrimary: false},
		},
		Appointments: []clinic.Appointment{
			{ID: "a1", Date: "2026-09-01", Time: "10:00", Status: clinic.AppointmentScheduled, PetName: "Milo"},
			{ID: "a2", Date: "2026-09-02", Time: "11:00", Status: clinic.AppointmentCompleted, PetName: "Luna"},
		},
		Bills: []clinic.Bill{
			{ID: "b1", AppointmentID: "a2", Amount: 100, Status: clinic.BillUnpaid, Date: "2026-09-02"},
			{ID: "b2", AppointmentID: "a0", Amount: 50, Status: clinic.BillPaid, Mode: "Cash", Date: "2026-08-20"},
		},
		UI: store.UIState{ModalTargetID: "p1", OpenModal: store.ModalAssignVet},
	}
}

func TestProject_CountsMatchFilteredCardinality(t *testing.T) {
	snap := sampleSnapshot()
	snap.UI.OwnerQuery = "ana"
	snap.UI.SpeciesFilter = "dog"
	snap.UI.ApptStatus = clinic.AppointmentScheduled
	snap.UI.BillStatus = clinic.BillPaid

	vm := render.Project(snap)

	if vm.OwnerCount != len(vm.OwnerRows) || vm.OwnerCount != 1 {
		t.Fatalf("owner count = %d, rows = %d", vm.OwnerCount, len(vm.OwnerRows))
	}
	if vm.PetCount != len(vm.PetRows) || vm.PetCount != 1 {
		t.Fatalf("pet count = %d, rows = %d", vm.PetCount, len(vm.PetRows))
	}
	if vm.ScheduleCount != len(vm.ScheduleRows) || vm.ScheduleCount != 1 {
		t.Fatalf("schedule count = %d, rows = %d", vm.ScheduleCount, len(vm.ScheduleRows))
	}
	if vm.BillingCount != len(vm.BillingRows) || vm.BillingCount != 1 {
		t.Fatalf("billing count = %d, rows = %d", vm.BillingCount, len(vm.BillingRows))
	}
}

func TestProject_StatsComeFromFullCache(t *testing.T) {
	snap := sampleSnapshot()
	snap.UI.BillStatus = clinic.BillPaid // el filtro no toca las stats

	vm := render.Project(snap)
	if vm.Stats.Total != 150 || vm.Stats.PaidCount != 1 || vm.Stats.UnpaidCount != 1 {
		t.Fatalf("stats = %+v", vm.Stats)
	}
	if vm.Stats.DueAmount != 100 || vm.Stats.PaidAmount != 50 {
		t.Fatalf("stats amounts = %+v", vm.Stats)
	}
}

func TestProject_ScheduleActionDependsOnStatus(t *testing.T) {
	vm := render.Project(sampleSnapshot())

	if got := vm.ScheduleRows[0][len(vm.ScheduleRows[0])-1]; got != "Complete Visit" {
		t.Fatalf("scheduled action = %q", got)
	}
	if got := vm.ScheduleRows[1][len(vm.ScheduleRows[1])-1]; got != "Remove" {
		t.Fatalf("completed action = %q", got)
	}
}

func TestVetOptions_MarkAssignedAndPrimary(t *testing.T) {
	opts := render.VetOptions(sampleSnapshot())
	if len(opts) != 3 {
		t.Fatalf("options = %d, want 3", len(opts))
	}

	byValue := map[string]string{}
	for _, o := range opts {
		byValue[o.Value] = o.Label
	}
	if byValue["v1"] != "Dr. Patel (primary)" {
		t.Fatalf("primary label = %q", byValue["v1"])
	}
	if byValue["v2"] != "Dr. Gomez (assigned)" {
		t.Fatalf("assigned label = %q", byValue["v2"])
	}
	if byValue["v3"] != "Dr. Lindqvist" {
		t.Fatalf("unlinked label = %q", byValue["v3"])
	}
}

func TestBookingCascade_PetOptionsAndPrimaryVet(t *testing.T) {
	snap := sampleSnapshot()

	opts := render.PetOptionsForOwner(snap, "o1")
	if len(opts) != 2 || opts[0].Value != "p1" || opts[1].Value != "p2" {
		t.Fatalf("pet options = %+v", opts)
	}
	if opts := render.PetOptionsForOwner(snap, "o2"); len(opts) != 0 {
		t.Fatalf("owner without pets should yield no options, got %+v", opts)
	}

	vetID, ok := render.PrimaryVetFor(snap, "p1")
	if !ok || vetID != "v1" {
		t.Fatalf("primary vet = %q ok=%v, want v1", vetID, ok)
	}
	if _, ok := render.PrimaryVetFor(snap, "p2"); ok {
		t.Fatal("pet without cached links must not auto-select a vet")
	}
}

func TestProject_ModalPrefill(t *testing.T) {
	snap := sampleSnapshot()
	snap.UI.OpenModal = store.ModalEditOwner
	snap.UI.ModalTargetID = "o1"

	vm := render.Project(snap)
	if vm.ModalPrefill["first_name"] != "Ana" || vm.ModalPrefill["phone"] != "5551234" {
		t.Fatalf("prefill = %+v", vm.ModalPrefill)
	}
}

func TestWriteTable_AlignsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	err := render.WriteTable(&buf, "Owners", render.OwnerHeader, []render.Row{
		{"Ana Suárez", "5551234", "Calle 1", ""},
	})
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Owners (1)") {
		t.Fatalf("missing title with count:\n%s", out)
	}
	if !strings.Contains(out, "Ana Suárez") {
		t.Fatalf("missing row:\n%s", out)
	}
}
