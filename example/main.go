package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/editor"
	"github.com/meikuraledutech/orgchart/logging"
	"github.com/meikuraledutech/orgchart/memory"
	"github.com/meikuraledutech/orgchart/postgres"
	"github.com/meikuraledutech/orgchart/render"
	"github.com/meikuraledutech/orgchart/seed"
	"github.com/meikuraledutech/orgchart/viewer"
)

// printer stands in for the browser: alerts and page changes are printed.
type printer struct{}

func (printer) Alert(msg string) { fmt.Println("alert:", msg) }
func (printer) Navigate(path string) { fmt.Println("navigate:", path) }
func (printer) Reload() { fmt.Println("reload") }
func (printer) Confirm(string) bool { return true }

func main() {
	ctx := context.Background()

	logger, err := logging.New("info")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Postgres when DATABASE_URL is set, otherwise everything stays in memory.
	var store orgchart.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := postgres.Connect(ctx, dbURL, 0, logger)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Seed a chart using refs ───────────────────────────────────────
	file := &seed.File{Structures: []seed.Structure{{
		Name:  "Pemerintah Desa",
		Color: "#2563eb",
		Members: []seed.Member{
			{Ref: "kades", Name: "Budi Santoso", Position: "Kepala Desa"},
			{Ref: "sekdes", Parent: "kades", Name: "Siti Aminah", Position: "Sekretaris Desa"},
			{Ref: "kasi", Parent: "kades", Name: "Rudi", Position: "Kasi Pemerintahan"},
			{Ref: "kaur", Parent: "sekdes", Name: "Andi", Position: "Kaur Keuangan"},
		},
		Connections: []seed.Connection{
			{From: "kades", To: "sekdes"},
			{From: "kades", To: "kasi", Type: "dashed"},
		},
	}}}
	res, err := seed.Apply(ctx, store, file)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	sid := res.StructureIDs[0]
	fmt.Printf("seeded structure %s (%d members, %d connections)\n", sid, res.Members, res.Connections)

	tree, err := orgchart.Tree(ctx, store, sid)
	if err != nil {
		log.Fatalf("tree: %v", err)
	}
	printJSON(tree)

	ids := map[string]string{}
	orgchart.Walk(tree, func(m *orgchart.Member) bool {
		ids[m.Position] = m.ID
		return true
	})

	// ── Edit the layout ───────────────────────────────────────────────
	ui := printer{}
	ed := editor.New(sid, editor.Deps{
		Source:      orgchart.NewStoreSource(store),
		Positions:   store,
		Connections: store,
		Notifier:    ui,
		Navigator:   ui,
		Confirmer:   ui,
		Access:      editor.AdminFlag(true),
	}, editor.WithLogger(logger))
	if err := ed.Load(ctx); err != nil {
		log.Fatalf("editor load: %v", err)
	}

	// Drag the treasurer card 200px to the right.
	kaur := ed.Positions()[ids["Kaur Keuangan"]]
	grab := orgchart.Point{X: kaur.X + 10, Y: kaur.Y + 10}
	if err := ed.PointerDownNode(ctx, kaur.ID, grab); err != nil {
		log.Fatalf("drag: %v", err)
	}
	ed.PointerMove(orgchart.Point{X: grab.X + 200, Y: grab.Y})
	if err := ed.PointerUp(ctx); err != nil {
		log.Fatalf("drop: %v", err)
	}
	fmt.Printf("\nmoved card to %+v\n", ed.Positions()[kaur.ID])

	// Connect the secretary to the treasurer with a dotted green line.
	if err := ed.SetMode(editor.ModeConnect); err != nil {
		log.Fatal(err)
	}
	if err := ed.SetLineStyle(orgchart.Dotted, "#16a34a"); err != nil {
		log.Fatal(err)
	}
	for _, id := range []string{ids["Sekretaris Desa"], kaur.ID} {
		if err := ed.PointerDownNode(ctx, id, orgchart.Point{}); err != nil {
			log.Fatalf("connect: %v", err)
		}
	}

	// Bend the new connector at the middle of its first segment.
	if err := ed.SetMode(editor.ModeMove); err != nil {
		log.Fatal(err)
	}
	last := len(ed.Connections()) - 1
	if err := ed.AddWaypoint(ctx, last, 0); err != nil {
		log.Fatalf("waypoint: %v", err)
	}
	fmt.Println("\nconnectors:")
	printJSON(ed.Connectors())

	if err := ed.SaveLayout(ctx); err != nil {
		log.Fatalf("save layout: %v", err)
	}

	// ── View the saved chart ──────────────────────────────────────────
	v := viewer.New(sid, viewer.Deps{Source: orgchart.NewStoreSource(store), Logger: logger})
	if _, err := v.Load(ctx); err != nil {
		log.Fatalf("viewer load: %v", err)
	}
	v.SetViewport(viewer.Viewport{Width: 1280, Height: 720})
	fmt.Printf("\nfitted at %d%%\n", v.Camera().ZoomPercent())
	v.ZoomToNode(ids["Kepala Desa"])
	fmt.Printf("inspecting head of village at %d%%\n", v.Camera().ZoomPercent())

	// ── Render ────────────────────────────────────────────────────────
	out, err := os.Create("orgchart.svg")
	if err != nil {
		log.Fatalf("create: %v", err)
	}
	defer out.Close()
	if err := render.Chart(ctx, orgchart.NewStoreSource(store), sid, out, render.DefaultOptions()); err != nil {
		log.Fatalf("render: %v", err)
	}
	fmt.Println("\nwrote orgchart.svg")

	// ── Reset ─────────────────────────────────────────────────────────
	if _, err := ed.ResetLayout(ctx); err != nil {
		log.Fatalf("reset: %v", err)
	}
	fmt.Println("layout reset")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
