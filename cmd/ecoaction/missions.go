package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecoaction/ecoaction/pkg/cache"
	"github.com/ecoaction/ecoaction/pkg/gateway"
	"github.com/ecoaction/ecoaction/pkg/types"
	"github.com/ecoaction/ecoaction/pkg/views"
	"github.com/spf13/cobra"
)

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "Browse volunteer missions",
}

var missionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List missions, optionally filtered by category and search text",
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryFlag, _ := cmd.Flags().GetString("category")
		search, _ := cmd.Flags().GetString("search")

		category := types.Category(categoryFlag)
		if category != types.CategoryAll && !category.Valid() {
			return fmt.Errorf("unknown category %q (all|beach|forest|waste|education)", categoryFlag)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		missions, err := app.missions(cmd.Context())
		if err != nil {
			return err
		}

		filtered := views.FilterMissions(missions, category, search)
		if len(filtered) == 0 {
			fmt.Println("No missions match.")
			return nil
		}
		for _, m := range filtered {
			printMissionLine(m)
		}
		return nil
	},
}

var missionsGetCmd = &cobra.Command{
	Use:   "get <mission-id>",
	Short: "Show one mission in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		missionID := args[0]

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		snap, err := awaitSnapshot(cmd.Context(), app.cache, cache.Query{
			Key:        cache.MissionKey(missionID),
			StaleAfter: app.cfg.Missions.StaleAfter,
			RetainFor:  app.cfg.Missions.RetainFor,
			Retries:    app.cfg.Retries,
			Fetch: func(ctx context.Context) (any, error) {
				return app.gw.GetMission(ctx, missionID)
			},
		})
		if err != nil {
			if gateway.IsNotFound(err) {
				return fmt.Errorf("mission %s not found", missionID)
			}
			return fmt.Errorf("failed to load mission: %w", err)
		}

		mission, ok := snap.Payload.(*types.Mission)
		if !ok {
			return fmt.Errorf("mission %s not found", missionID)
		}
		printMissionDetail(*mission)
		return nil
	},
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <mission-id>",
	Short: "Enroll in a mission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		missionID := args[0]

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		userID, err := app.requireUser()
		if err != nil {
			return err
		}

		// Warm both collections so the optimistic patch has state to work on.
		if _, err := app.missions(cmd.Context()); err != nil {
			return err
		}
		if _, err := app.participations(cmd.Context(), userID); err != nil {
			return err
		}

		p, err := app.coord.Enroll(cmd.Context(), userID, missionID)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Enrolled in mission %s (participation %s)\n", missionID, p.ID)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <mission-id>",
	Short: "Cancel your participation in a mission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		missionID := args[0]

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		userID, err := app.requireUser()
		if err != nil {
			return err
		}

		if _, err := app.missions(cmd.Context()); err != nil {
			return err
		}
		parts, err := app.participations(cmd.Context(), userID)
		if err != nil {
			return err
		}

		var target *types.Participation
		for i := range parts {
			if parts[i].MissionID == missionID && parts[i].Status == types.ParticipationConfirmed {
				target = &parts[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("not enrolled in mission %s", missionID)
		}

		if err := app.coord.Cancel(cmd.Context(), target.ID, missionID, userID); err != nil {
			return err
		}

		fmt.Printf("✓ Cancelled participation in mission %s\n", missionID)
		return nil
	},
}

var myMissionsCmd = &cobra.Command{
	Use:   "my-missions",
	Short: "List your enrolled missions, upcoming and past",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		userID, err := app.requireUser()
		if err != nil {
			return err
		}

		missions, err := app.missions(cmd.Context())
		if err != nil {
			return err
		}
		parts, err := app.participations(cmd.Context(), userID)
		if err != nil {
			return err
		}

		enrolled := views.EnrolledMissions(parts, missions)
		if len(enrolled) == 0 {
			fmt.Println("No enrolled missions.")
			return nil
		}

		p := views.PartitionByTime(enrolled, time.Now())
		fmt.Printf("Upcoming (%d):\n", len(p.Upcoming))
		for _, m := range p.Upcoming {
			printMissionLine(m)
		}
		fmt.Printf("\nPast (%d):\n", len(p.Past))
		for _, m := range p.Past {
			printMissionLine(m)
		}
		return nil
	},
}

func init() {
	missionsListCmd.Flags().String("category", "all", "Filter by category (all|beach|forest|waste|education)")
	missionsListCmd.Flags().String("search", "", "Free-text search over title, city, and description")

	missionsCmd.AddCommand(missionsListCmd)
	missionsCmd.AddCommand(missionsGetCmd)
}

func printMissionLine(m types.Mission) {
	fmt.Printf("%-12s %-10s %-30s %-15s %s  %d/%d spots left\n",
		m.ID, m.Category, m.Title, m.City, m.Date, m.SpotsLeft, m.Spots)
}

func printMissionDetail(m types.Mission) {
	fmt.Printf("%s\n", m.Title)
	fmt.Printf("  ID:        %s\n", m.ID)
	fmt.Printf("  Category:  %s\n", m.Category)
	fmt.Printf("  Date:      %s %s\n", m.Date, m.Time)
	fmt.Printf("  Location:  %s, %s\n", m.Location, m.City)
	fmt.Printf("  Duration:  %s\n", m.Duration)
	fmt.Printf("  Organizer: %s\n", m.Organizer)
	fmt.Printf("  Spots:     %d/%d left\n", m.SpotsLeft, m.Spots)
	if len(m.Requirements) > 0 {
		fmt.Printf("  Requires:  %s\n", strings.Join(m.Requirements, ", "))
	}
	if m.Description != "" {
		fmt.Printf("\n%s\n", m.Description)
	}
	if m.LongDescription != "" {
		fmt.Printf("\n%s\n", m.LongDescription)
	}
}
