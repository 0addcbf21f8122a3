package workflow

import (
	"regexp"
	"sort"
	"strings"
)

// phoneRe se aplica después de normalizar: prefijo + opcional, 7 a 15 dígitos.
var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidationError es local al formulario: nunca llega a la red.
// Fields mapea campo -> primer mensaje que falló (la primera regla gana;
// chequeos posteriores del mismo pase no pisan el mensaje).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors acumula errores por campo respetando "la primera regla gana".
type fieldErrors map[string]string

func (f fieldErrors) set(field, msg string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = msg
}

func (f fieldErrors) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.set(field, "required")
	}
}

func (f fieldErrors) err() *ValidationError {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// normalizePhone descarta espacios, guiones, paréntesis y puntos.
func normalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func validPhone(s string) bool {
	return phoneRe.MatchString(normalizePhone(s))
}

// validEmail chequea la forma local@domain.tld: un solo @, al menos un
// punto después del @, sin espacios. Vacío es válido (el campo es opcional).
func validEmail(s string) bool {
	if s == "" {
		return true
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
