package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/assembly"
	"github.com/meikuraledutech/workflow/memory"
	"github.com/meikuraledutech/workflow/postgres"
	"github.com/meikuraledutech/workflow/render"
)

func str(s string) *string { return &s }

func main() {
	ctx := context.Background()

	// Postgres when DATABASE_URL is set, otherwise in memory.
	var store workflow.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
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

	// ── Bulk insert using refs ────────────────────────────────────────
	onboarding := &workflow.Workflow{
		Name:   "onboarding",
		Status: "draft",
		Nodes: []workflow.Node{
			{Ref: "start", Name: "Start", Kind: "StartNode"},
			{Ref: "welcome", Name: "Welcome", Kind: "MessageNode", Status: str("OPEN"), Message: str("Welcome aboard")},
			{Ref: "check", Name: "Replied", Kind: "ConditionNode", Condition: str("prev_message_id > 0")},
			{Ref: "done", Name: "Done", Kind: "EndNode"},
			{Ref: "escalate", Name: "Escalate", Kind: "EndNode"},
		},
		Edges: []workflow.Edge{
			{FromNodeRef: "start", ToNodeRef: "welcome"},
			{FromNodeRef: "welcome", ToNodeRef: "check"},
			{FromNodeRef: "check", ToNodeRef: "done", Branch: "Yes"},
			{FromNodeRef: "check", ToNodeRef: "escalate", Branch: "No"},
		},
	}

	created, err := store.CreateWorkflow(ctx, onboarding)
	if err != nil {
		log.Fatalf("create workflow: %v", err)
	}
	fmt.Println("workflow created (bulk with refs)")
	printJSON(created)

	// ── Assemble and execute ──────────────────────────────────────────
	runner := assembly.New(store)
	run, err := runner.Run(ctx, created.ID)
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	fmt.Printf("\nrun %s executed in %s\n", run.ID, run.Duration)
	fmt.Printf("order: %v\n", run.Result.Order)
	printJSON(run.Result.Decisions)

	for _, e := range run.Graph.Edges() {
		fmt.Printf("  %d -> %d %-3s weight=%d taken=%t\n", e.From, e.To, e.Branch, e.Weight, e.Taken())
	}

	// ── Render ────────────────────────────────────────────────────────
	img, err := render.Draw(ctx, run.Graph, render.SVG)
	if err != nil {
		log.Fatalf("draw: %v", err)
	}
	if err := os.WriteFile("onboarding.svg", img, 0o644); err != nil {
		log.Fatalf("write: %v", err)
	}
	fmt.Println("\nwrote onboarding.svg")

	// ── Deleting a node marks the workflow ────────────────────────────
	if err := store.DeleteNode(ctx, created.Nodes[4].ID); err != nil {
		log.Fatalf("delete node: %v", err)
	}
	after, err := store.GetWorkflow(ctx, created.ID)
	if err != nil {
		log.Fatalf("get workflow: %v", err)
	}
	fmt.Printf("status after node delete: %s\n", after.Status)

	if _, err := runner.Run(ctx, created.ID); err != nil {
		fmt.Printf("run refused: %v\n", err)
	}

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteWorkflow(ctx, created.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nworkflow deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
