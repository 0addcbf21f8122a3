// stubserver levanta el backend de clínica en memoria para desarrollo
// local del cliente. Datos volátiles: se pierden al cortar el proceso.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"vet-clinic-console/internal/backendstub"
	"vet-clinic-console/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	stub := backendstub.New()
	stub.SeedVets("Dr. Patel", "Dr. Gomez", "Dr. Lindqvist")

	srv := &http.Server{
		Addr:         addr,
		Handler:      stub.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting stub clinic backend", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
