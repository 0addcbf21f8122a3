// Package store es el View-State Store: el snapshot de cada colección tal
// cual la devolvió el backend (reemplazo total, sin merge incremental) más
// el estado efímero de la vista. El store es el único dueño del cache;
// filtro y renderer solo leen.
package store

import (
	"slices"
	"sync"

	"vet-clinic-console/internal/clinic"
)

// Snapshot es una copia consistente del estado para consumidores puros.
type Snapshot struct {
	Owners       []clinic.Owner
	Pets         []clinic.Pet // mascotas del owner seleccionado
	Vets         []clinic.Veterinarian
	PetVets      []clinic.PetVet // vets de la mascota target del modal
	Appointments []clinic.Appointment
	Bills        []clinic.Bill
	History      []clinic.HistoryEntry

	UI UIState
}

type Store struct {
	mu sync.RWMutex

	owners       []clinic.Owner
	pets         []clinic.Pet
	vets         []clinic.Veterinarian
	petVets      []clinic.PetVet
	appointments []clinic.Appointment
	bills        []clinic.Bill
	history      []clinic.HistoryEntry

	ui UIState

	// Hooks post-mutación (p.ej. re-render). Lista explícita,
	// nunca reasignación de funciones.
	hooks []func()
}

func New() *Store {
	return &Store{}
}

// OnChange registra un hook que corre después de cada mutación
// (replace de colección, selección o cambio de filtro).
func (s *Store) OnChange(hook func()) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// Snapshot devuelve una copia; los slices internos nunca se comparten.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Owners:       slices.Clone(s.owners),
		Pets:         slices.Clone(s.pets),
		Vets:         slices.Clone(s.vets),
		PetVets:      slices.Clone(s.petVets),
		Appointments: slices.Clone(s.appointments),
		Bills:        slices.Clone(s.bills),
		History:      slices.Clone(s.history),
		UI:           s.ui,
	}
}

func (s *Store) UI() UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ui
}

// --- Replaces: sobrescritura total, preservando el orden del backend ---

func (s *Store) ReplaceOwners(records []clinic.Owner) {
	s.mu.Lock()
	s.owners = slices.Clone(records)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ReplacePets(records []clinic.Pet) {
	s.mu.Lock()
	s.pets = slices.Clone(records)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ReplaceVets(records []clinic.Veterinarian) {
	s.mu.Lock()
	s.vets = slices.Clone(records)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ReplacePetVets(records []clinic.PetVet) {
	s.mu.Lock()
	s.petVets = slices.Clone(records)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ReplaceAppointments(records []clinic.Appointment) {
	s.mu.Lock()
	s.appointments = slices.Clone(records)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ReplaceBills(records []clinic.Bill) {
	s.mu.Lock()
	s.bills = slices.Clone(records)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ReplaceHistory(records []clinic.HistoryEntry) {
	s.mu.Lock()
	s.history = slices.Clone(records)
	s.mu.Unlock()
	s.notify()
}

// SelectOwner aplica la invariante de selección única: elegir otro owner
// descarta la lista de mascotas del anterior antes de que se vea nada
// del nuevo. Seleccionar "" limpia todo.
func (s *Store) SelectOwner(id string) {
	s.mu.Lock()
	if s.ui.SelectedOwnerID != id {
		s.pets = nil
	}
	s.ui.SelectedOwnerID = id
	s.mu.Unlock()
	s.notify()
}

// UpdateUI muta el estado de vista (filtros, modal) bajo lock y notifica.
func (s *Store) UpdateUI(fn func(*UIState)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	fn(&s.ui)
	s.mu.Unlock()
	s.notify()
}

// notify corre fuera del lock: los hooks suelen leer Snapshot().
func (s *Store) notify() {
	s.mu.RLock()
	hooks := slices.Clone(s.hooks)
	s.mu.RUnlock()

	for _, h := range hooks {
		h()
	}
}
