// Command dbinspect prints the binders, display order and progress of one user.
//
// It reads the regular configuration (flags, environment, .env). The user is taken from
// INSPECT_USER; leave it empty to inspect the signed-out device binders.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/binderkeep/internal/di"
	"github.com/listenupapp/binderkeep/internal/di/providers"
	"github.com/listenupapp/binderkeep/internal/service"
)

func main() {
	userID := os.Getenv("INSPECT_USER")

	injector := di.NewContainer()
	defer injector.Shutdown()

	if err := di.Bootstrap(injector); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	binders := do.MustInvoke[*service.BinderService](injector)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("=== Binder Inspection ===")
	if userID == "" {
		fmt.Println("User: (signed out, device binders)")
	} else {
		fmt.Printf("User: %s\n", userID)
	}
	fmt.Println()

	progress, err := binders.Progress(ctx, userID)
	if err != nil {
		log.Fatalf("Error computing progress: %v", err)
	}

	filled, total := 0, 0
	for i, p := range progress {
		view, err := binders.View(ctx, userID, p.CollectionID)
		if err != nil {
			log.Printf("Error viewing binder %s: %v", p.CollectionID, err)
			continue
		}

		c := view.Collection
		fmt.Printf("[%d] %s\n", i+1, c.Name)
		fmt.Printf("  ID: %s\n", c.ID)
		fmt.Printf("  Type: %s\n", c.Type)
		fmt.Printf("  Stored slots: %d\n", len(c.Slots))
		fmt.Printf("  Progress: %d/%d (%.1f%%)\n", p.Count.Filled, p.Count.Total, p.Count.Percent())

		hidden := 0
		for _, s := range view.Slots {
			if s.Hidden {
				hidden++
			}
		}
		if hidden > 0 {
			fmt.Printf("  Hidden on this device: %d\n", hidden)
		}

		shown := 0
		for _, s := range view.Slots {
			if s.Card == nil {
				continue
			}
			if shown == 5 {
				fmt.Printf("    ... and %d more filled slots\n", p.Count.Filled-shown)
				break
			}
			fmt.Printf("    %s: %s (%s)\n", s.Key, s.Card.CardID, s.DisplayVariant)
			shown++
		}
		fmt.Println()

		filled += p.Count.Filled
		total += p.Count.Total
	}

	device := do.MustInvoke[*providers.DeviceStoreHandle](injector)
	migrated, err := device.MigratedUsers(ctx)
	if err != nil {
		log.Printf("Error reading migration markers: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Binders: %d\n", len(progress))
	fmt.Printf("Filled slots: %d/%d\n", filled, total)
	fmt.Printf("Device data migrated for: %d users\n", len(migrated))
	for _, u := range migrated {
		fmt.Printf("  %s\n", u)
	}
}
