package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/app"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/config"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/geom"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/storage"
	"github.com/alexxanorafa/Jornada-Arquetipica/internal/trigger"
)

// jitter is how far, in canvas pixels, the simulated hand wanders.
const jitter = 1.0

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	outDir := filepath.Join(os.TempDir(), "athanor-sim")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	a, err := app.New(ctx, app.Options{Config: cfg, Logger: logger, Store: storage.NewMemoryStore()})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer a.Close()

	rng := rand.New(rand.NewSource(1))

	// 1. Trace every pattern
	fmt.Println("--- Step 1: Tracing every pattern ---")
	for _, name := range a.Engine.PatternNames() {
		if err := a.Engine.SelectPattern(name); err != nil {
			log.Fatalf("Failed to select %s: %v", name, err)
		}
		rp, _ := a.Engine.ReferencePath()
		lines := rp.Lines()
		if len(lines) == 0 {
			continue
		}
		line := lines[0]
		a.Engine.Press(wobble(rng, line[0]))
		for _, p := range line[1:] {
			a.Engine.Move(wobble(rng, p))
		}
		res, _ := a.Engine.Release()
		fmt.Printf("%-9s %4d/%-4d on path (%.1f%%) success=%v\n",
			name, res.Matched, res.Total, res.Accuracy*100, res.Success(a.Engine.Threshold()))

		out := filepath.Join(outDir, name+".png")
		if err := a.Export(out); err != nil {
			fmt.Printf("Export failed: %v\n", err)
		}
	}
	fmt.Printf("Canvases written to %s\n\n", outDir)

	// 2. Fire every combination
	fmt.Println("--- Step 2: Firing every combination ---")
	var fired []trigger.Event
	a.Engine.Events().Trigger.On(func(e trigger.Event) { fired = append(fired, e) })
	for _, r := range a.Catalog.Rules {
		a.Engine.Reset()
		for _, id := range r.Elements {
			a.Engine.Toggle(id)
		}
	}
	for _, e := range fired {
		n, _ := a.Narrate(ctx, e)
		fmt.Printf("%s %s [%s]\n  %s\n", e.Rule.Icon, e.Rule.Name, e.Key, n.Narrative)
	}

	fmt.Printf("Labyrinth after reveals: %s\n", a.Engine.Pattern())

	// 3. Progress
	fmt.Println("\n--- Step 3: Journal ---")
	lvl := a.Journal.Level()
	fmt.Printf("Level %d (%s), %d XP, discovered %d/%d: %s\n",
		lvl.Number, lvl.Title, a.Journal.XP(), len(a.Journal.Discovered()), len(a.Catalog.Rules),
		strings.Join(a.Journal.Discovered(), ", "))
	n, total := a.Achievements.Progress()
	fmt.Printf("Achievements %d/%d: %s\n", n, total, strings.Join(a.Achievements.IDs(), ", "))
	summary, err := a.Summarize(ctx)
	if err != nil {
		fmt.Printf("Summary failed: %v\n", err)
	}
	fmt.Println(summary)
}

func wobble(rng *rand.Rand, p geom.Point) geom.Point {
	return geom.Pt(p.X+(rng.Float64()*2-1)*jitter, p.Y+(rng.Float64()*2-1)*jitter)
}
