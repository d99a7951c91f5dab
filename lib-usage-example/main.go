package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sw33tLie/supplyscope/pkg/api"
	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/retrieval"
	"github.com/sw33tLie/supplyscope/pkg/submission"
)

func main() {
	// Usage: go run *.go -url http://localhost:8000 -supplier 4 -date 2024-01-10

	urlFlag := flag.String("url", api.DefaultBaseURL, "Backend base URL")
	supplierFlag := flag.Int("supplier", 0, "Supplier ID")
	dateFlag := flag.String("date", "", "Compliance date (YYYY-MM-DD)")

	// Parse the command-line flags
	flag.Parse()

	if *supplierFlag <= 0 {
		fmt.Println("Supplier ID is required. Please provide it using -supplier flag.")
		return
	}

	client, err := api.NewClient(api.Config{BaseURL: *urlFlag, Timeout: 30 * time.Second})
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx := context.Background()

	draft := compliance.NewDraft(*supplierFlag)
	draft.Date = *dateFlag
	draft.Metrics.UpdateEntry(0, compliance.FieldMetric, "Quality")
	draft.Metrics.UpdateEntry(0, compliance.FieldResult, "Pass")

	ctrl := submission.New(draft, client)
	out, err := ctrl.Submit(ctx)
	if err != nil {
		fmt.Println(out.Message)
		return
	}
	fmt.Println(out.Narrative)
	for _, a := range out.Alerts {
		fmt.Println("alert:", a)
	}

	// Both overlays can load at the same time
	insights := retrieval.NewInsights(client, nil)
	records := retrieval.NewRecords(client, nil)
	insights.Open(ctx, *supplierFlag)
	records.Open(ctx, *supplierFlag)

	iv, _ := insights.Wait(ctx)
	rv, _ := records.Wait(ctx)
	if iv.Message != "" {
		fmt.Println(iv.Message)
	} else {
		fmt.Println(iv.Data)
	}
	for _, r := range rv.Data {
		fmt.Println(r.DateRecorded, r.Metric, r.Result, r.Status)
	}
}
