// console es el front-end de terminal: proyecta el estado del cliente de
// clínica como tablas de texto. Comandos:
//
//	console owners [-q texto]
//	console pets -owner <ownerID> [-species texto]
//	console schedule [-date YYYY-MM-DD] [-status scheduled|completed]
//	console billing [-status unpaid|paid]
//	console history -pet <petID>
//
// CLINIC_API_URL apunta al backend (default el stubserver local).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"vet-clinic-console/internal/gateway"
	"vet-clinic-console/internal/platform/logger"
	"vet-clinic-console/internal/platform/metrics"
	"vet-clinic-console/internal/render"
	"vet-clinic-console/internal/store"
	"vet-clinic-console/internal/workflow"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	log := logger.NewFromEnv()

	gw, err := gateway.New(gateway.Config{
		BaseURL: getEnv("CLINIC_API_URL", "http://localhost:8080"),
		Timeout: 10 * time.Second,
		Logger:  log,
		Metrics: metrics.New(prometheus.DefaultRegisterer),
	})
	if err != nil {
		log.Error("bad backend url", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	st := store.New()
	ctrl := workflow.NewController(gw, st, log)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	ctx := context.Background()
	if err := run(ctx, ctrl, st, cmd, args); err != nil {
		log.Error("command failed", map[string]any{"cmd": cmd, "err": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, ctrl *workflow.Controller, st *store.Store, cmd string, args []string) error {
	switch cmd {
	case "owners":
		fs := flag.NewFlagSet("owners", flag.ExitOnError)
		q := fs.String("q", "", "search by name or phone")
		_ = fs.Parse(args)

		if err := ctrl.LoadAll(ctx); err != nil {
			return err
		}
		ctrl.SetOwnerQuery(*q)

		vm := render.Project(st.Snapshot())
		return render.WriteTable(os.Stdout, "Owners", render.OwnerHeader, vm.OwnerRows)

	case "pets":
		fs := flag.NewFlagSet("pets", flag.ExitOnError)
		owner := fs.String("owner", "", "owner id")
		species := fs.String("species", "", "filter by species")
		_ = fs.Parse(args)
		if *owner == "" {
			return fmt.Errorf("pets: -owner is required")
		}

		if err := ctrl.SelectOwner(ctx, *owner); err != nil {
			return err
		}
		ctrl.SetSpeciesFilter(*species)

		vm := render.Project(st.Snapshot())
		return render.WriteTable(os.Stdout, "Pets", render.PetHeader, vm.PetRows)

	case "schedule":
		fs := flag.NewFlagSet("schedule", flag.ExitOnError)
		date := fs.String("date", "", "filter by date (YYYY-MM-DD)")
		status := fs.String("status", "", "filter by status")
		_ = fs.Parse(args)

		if err := ctrl.LoadAll(ctx); err != nil {
			return err
		}
		ctrl.SetAppointmentFilters(*date, *status)

		vm := render.Project(st.Snapshot())
		return render.WriteTable(os.Stdout, "Schedule", render.ScheduleHeader, vm.ScheduleRows)

	case "billing":
		fs := flag.NewFlagSet("billing", flag.ExitOnError)
		status := fs.String("status", "", "filter by status")
		_ = fs.Parse(args)

		if err := ctrl.LoadAll(ctx); err != nil {
			return err
		}
		ctrl.SetBillFilter(*status)

		vm := render.Project(st.Snapshot())
		if err := render.WriteTable(os.Stdout, "Billing", render.BillingHeader, vm.BillingRows); err != nil {
			return err
		}
		fmt.Printf("total=%.2f paid=%d (%.2f) unpaid=%d (%.2f)\n",
			vm.Stats.Total, vm.Stats.PaidCount, vm.Stats.PaidAmount,
			vm.Stats.UnpaidCount, vm.Stats.DueAmount)
		return nil

	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		pet := fs.String("pet", "", "pet id")
		_ = fs.Parse(args)
		if *pet == "" {
			return fmt.Errorf("history: -pet is required")
		}

		if err := ctrl.LoadHistory(ctx, *pet); err != nil {
			return err
		}

		vm := render.Project(st.Snapshot())
		return render.WriteTable(os.Stdout, "Clinical history", render.HistoryHeader, vm.HistoryRows)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: console owners|pets|schedule|billing|history [flags]")
}
