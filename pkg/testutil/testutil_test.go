package testutil

import (
	"testing"
	"time"
)

func TestTestLogger(t *testing.T) {
	log := TestLogger(t)
	log.Info("logger writes to the test output")
}

func TestTestContext(t *testing.T) {
	ctx, cancel := TestContext(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if time.Until(deadline) > 30*time.Second {
		t.Fatalf("deadline too far out: %v", deadline)
	}
}

func TestRequireNoError(t *testing.T) {
	RequireNoError(t, nil, "nil error must pass")
}
