package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecoaction/ecoaction/pkg/log"
	"github.com/ecoaction/ecoaction/pkg/metrics"
	"github.com/ecoaction/ecoaction/pkg/mockapi"
	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory backend for local development",
	Long: `Run an in-memory stand-in for the EcoAction backend.

Serves the /users, /missions, and /participations collections with
json-server semantics, plus Prometheus metrics on /metrics. All data
is lost when the process exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		seed, _ := cmd.Flags().GetBool("seed")

		log.Init(log.Config{Level: log.InfoLevel})

		api := mockapi.New()
		if seed {
			if err := seedDemoData(api); err != nil {
				return err
			}
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/", api.Handler())

		server := &http.Server{Addr: addr, Handler: mux}
		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		fmt.Printf("Mock backend listening on %s", addr)
		if seed {
			fmt.Print(" (seeded, demo login: demo@ecoaction.fr / ecoaction)")
		}
		fmt.Println("\nPress Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("mock backend failed: %w", err)
		case <-sigCh:
		}

		fmt.Println("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	mockServerCmd.Flags().String("addr", ":3001", "Listen address")
	mockServerCmd.Flags().Bool("seed", true, "Seed demo missions and a demo account")
}

// seedDemoData loads a demo account and a handful of missions so the CLI
// is usable out of the box.
func seedDemoData(api *mockapi.Server) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("ecoaction"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}
	api.SeedUser(types.User{
		ID:       "demo",
		Name:     "Léa Martin",
		Email:    "demo@ecoaction.fr",
		Password: string(hash),
		Bio:      "Bénévole passionnée de protection du littoral",
		Stats:    types.UserStats{MissionsCompleted: 12, TotalHours: 36, Impact: "45 kg de déchets collectés"},
	})

	missions := []types.Mission{
		{
			ID: "m1", Title: "Nettoyage de la plage du Prado", Category: types.CategoryBeach,
			Description: "Ramassage de déchets sur la plage avec tri sélectif",
			Date:        "2026-09-12", Time: "09:00", Location: "Plage du Prado", City: "Marseille",
			Spots: 20, SpotsLeft: 8, Organizer: "Surfrider Foundation", Duration: "3h",
			Requirements: []string{"Gants fournis", "Prévoir de l'eau"},
		},
		{
			ID: "m2", Title: "Plantation d'arbres en Chartreuse", Category: types.CategoryForest,
			Description: "Reboisement d'une parcelle incendiée",
			Date:        "2026-09-20", Time: "08:30", Location: "Col de Porte", City: "Grenoble",
			Spots: 15, SpotsLeft: 15, Organizer: "ONF", Duration: "6h",
			Requirements: []string{"Chaussures de marche"},
		},
		{
			ID: "m3", Title: "Collecte de déchets au parc", Category: types.CategoryWaste,
			Description: "Collecte et sensibilisation au tri",
			Date:        "2026-08-15", Time: "14:00", Location: "Parc de la Tête d'Or", City: "Lyon",
			Spots: 30, SpotsLeft: 0, Organizer: "Zéro Déchet Lyon", Duration: "2h",
		},
		{
			ID: "m4", Title: "Atelier compost à l'école", Category: types.CategoryEducation,
			Description: "Animation pédagogique sur le compostage",
			Date:        "2026-10-05", Time: "10:00", Location: "École Jean Jaurès", City: "Nice",
			Spots: 5, SpotsLeft: 3, Organizer: "Les Petits Composteurs", Duration: "2h",
		},
	}
	for _, m := range missions {
		api.SeedMission(m)
	}
	return nil
}
