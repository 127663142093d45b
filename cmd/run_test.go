package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/textpolish/textpolish/internal/exitcode"
	"github.com/textpolish/textpolish/internal/polish"
)

func TestMatchProvider(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{name: "exact", query: "openai", want: "openai"},
		{name: "prefix", query: "deep", want: "deepseek"},
		{name: "fuzzy", query: "dpsk", want: "deepseek"},
		{name: "unknown", query: "zzz", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := matchProvider(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if !strings.Contains(err.Error(), "supported:") {
					t.Fatalf("error should list supported providers: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("matchProvider(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestRunStreamReportsFailureCause(t *testing.T) {
	sc := polish.SessionConfig{Provider: "openai", APIKey: "k", Model: "m"}

	// A handful of rounds so the session goroutine and the waiting main
	// goroutine hit the terminal handoff under varied scheduling.
	for i := 0; i < 10; i++ {
		wantErr := &polish.TransportError{StatusCode: 500, Body: "boom"}
		mock := polish.NewMockTransport().AddTurn(polish.MockTurn{Err: wantErr})

		err := runStream(context.Background(), mock, sc, "raw text", nil)
		if err == nil {
			t.Fatalf("expected an error from a failed stream")
		}
		var te *polish.TransportError
		if !errors.As(err, &te) {
			t.Fatalf("err = %v, want the transport failure as the cause", err)
		}
		if te.StatusCode != 500 {
			t.Fatalf("cause status = %d, want 500", te.StatusCode)
		}
	}
}

func TestRunStreamCancelReturnsCancelled(t *testing.T) {
	sc := polish.SessionConfig{Provider: "openai", APIKey: "k", Model: "m"}
	mock := polish.NewMockTransport().AddTurn(polish.MockTurn{Hang: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runStream(ctx, mock, sc, "raw text", nil)
	var exitErr exitcode.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitcode.Cancelled {
		t.Fatalf("err = %v, want exit code %d", err, exitcode.Cancelled)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "(unset)"},
		{in: "short", want: "*****"},
		{in: "sk-1234567890abcdef", want: "sk-1****cdef"},
	}
	for _, tc := range tests {
		if got := redact(tc.in); got != tc.want {
			t.Fatalf("redact(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("one  two\nthree", 60); got != "one two three" {
		t.Fatalf("preview = %q", got)
	}
	long := strings.Repeat("x", 100)
	if got := preview(long, 10); got != strings.Repeat("x", 10)+"..." {
		t.Fatalf("preview = %q", got)
	}
}
