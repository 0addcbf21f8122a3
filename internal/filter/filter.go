// Package filter aplica predicados componibles sobre las colecciones
// cacheadas del store. Funciones puras: acá nunca se dispara un fetch,
// y cada cambio de filtro recomputa la vista completa desde el cache
// (nada de esconder filas una por una).
package filter

import (
	"strings"

	"vet-clinic-console/internal/clinic"
)

// Appointments filtra por fecha exacta y/o status. Con ambos seteados se
// componen con AND; sin ninguno devuelve el set completo tal cual.
// La fecha se compara solo por la porción de día, ignorando hora.
func Appointments(list []clinic.Appointment, date string, status clinic.AppointmentStatus) []clinic.Appointment {
	date = strings.TrimSpace(date)
	if date == "" && status == "" {
		return list
	}

	out := make([]clinic.Appointment, 0, len(list))
	for _, a := range list {
		if date != "" && DatePart(a.Date) != DatePart(date) {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Owners busca substring case-insensitive contra "First Last" O el teléfono.
func Owners(list []clinic.Owner, query string) []clinic.Owner {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list
	}

	out := make([]clinic.Owner, 0, len(list))
	for _, o := range list {
		name := strings.ToLower(o.DisplayName())
		if strings.Contains(name, query) || strings.Contains(strings.ToLower(o.Phone), query) {
			out = append(out, o)
		}
	}
	return out
}

// PetsBySpecies busca substring case-insensitive sobre la especie.
func PetsBySpecies(list []clinic.Pet, query string) []clinic.Pet {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list
	}

	out := make([]clinic.Pet, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Species), query) {
			out = append(out, p)
		}
	}
	return out
}

// BillsByStatus es match exacto; reemplaza el set renderizado completo.
func BillsByStatus(list []clinic.Bill, status clinic.BillStatus) []clinic.Bill {
	if status == "" {
		return list
	}

	out := make([]clinic.Bill, 0, len(list))
	for _, b := range list {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

// DatePart recorta un timestamp a su porción YYYY-MM-DD.
// Tolera "2024-05-01", "2024-05-01T10:30:00Z" y "2024-05-01 10:30".
func DatePart(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}
