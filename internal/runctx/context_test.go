package runctx

import (
	"context"
	"testing"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "abc")
	id, ok := RunIDFromContext(ctx)
	if !ok || id != "abc" {
		t.Fatalf("RunIDFromContext = %q, %v", id, ok)
	}
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on empty context")
	}
	if WithRunID(ctx, "") != ctx {
		t.Fatal("empty id must not wrap the context")
	}
}

func TestInputRoundTrip(t *testing.T) {
	ctx := WithInput(context.Background(), "-")
	input, ok := InputFromContext(ctx)
	if !ok || input != "-" {
		t.Fatalf("InputFromContext = %q, %v", input, ok)
	}
	if _, ok := InputFromContext(WithInput(context.Background(), "")); ok {
		t.Fatal("expected empty input to be ignored")
	}
}
