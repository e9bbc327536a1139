package main

import (
	"context"
	"testing"
	"time"

	"specfetch/internal/history"
	"specfetch/internal/testsupport"
)

func TestHistoryListAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	ctx := context.Background()
	for _, entry := range []history.Entry{
		{DatasetID: "SWP12345", Tier: "SMALL", Layout: "low_dispersion", Samples: 512, Outcome: history.OutcomeDecoded, Duration: 120 * time.Millisecond},
		{DatasetID: "LWR04567", Tier: "LARGE", Outcome: history.OutcomeFailed, ErrorKind: "transport", ErrorMessage: "status 404"},
	} {
		if _, err := store.Record(ctx, entry); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "SWP12345")
	requireContains(t, out, "transport: status 404")

	out, _, err = runCLI(t, []string{"history", "list", "--dataset", "SWP12345"}, env.configPath)
	if err != nil {
		t.Fatalf("history list --dataset: %v", err)
	}
	requireContains(t, out, "512")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Cleared 2 history entries")

	out, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list after clear: %v", err)
	}
	requireContains(t, out, "No fetches recorded")
}
