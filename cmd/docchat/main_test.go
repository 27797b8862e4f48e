package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunFailsWithoutRequiredSettings(t *testing.T) {
	// Ensure required settings are absent.
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("COMPLETION_MODEL", "")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() succeeded with missing required settings")
	}
	if !strings.Contains(err.Error(), "configuration") {
		t.Errorf("run() error = %v, want configuration error", err)
	}
}
