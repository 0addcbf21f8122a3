package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vet-clinic-console/internal/platform/httpclient"
)

// FallbackMessage se muestra cuando el server no mandó mensaje
// (o el body no se pudo parsear).
const FallbackMessage = "the request could not be completed, please try again"

// Error es la forma única de falla que devuelve el gateway.
// Transport=true: falla de red o parseo, sin respuesta del server.
// Transport=false: respuesta no-2xx; Status trae el código HTTP.
// Quien llama nunca necesita distinguir más allá del texto del mensaje.
type Error struct {
	Transport bool
	Status    int
	Message   string
}

func (e *Error) Error() string {
	if e.Transport {
		return fmt.Sprintf("gateway: transport failure: %s", e.Message)
	}
	return fmt.Sprintf("gateway: status=%d: %s", e.Status, e.Message)
}

// IsStatus reporta si err es un *Error no-transporte con ese status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && !e.Transport && e.Status == status
}

// normalize convierte cualquier error del httpclient en *Error.
// Una respuesta no-2xx y una falla de transporte terminan con la misma forma.
func normalize(err error) *Error {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return &Error{
			Status:  httpErr.StatusCode,
			Message: messageFrom(httpErr.Body),
		}
	}
	return &Error{
		Transport: true,
		Message:   FallbackMessage,
	}
}

// messageFrom extrae el campo opcional {"message": ...} de un body de error.
// Body vacío o basura no rompe nada: cae al mensaje genérico.
func messageFrom(body string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}
	return FallbackMessage
}
