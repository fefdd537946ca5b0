package obs

import (
	"context"
	"testing"
)

func TestWithRequestIDGeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if RequestID(ctx) == "" {
		t.Fatal("expected generated request id")
	}

	ctx = WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("request id = %q, want abc", got)
	}
}
