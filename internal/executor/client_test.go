package executor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func boolPtr(b bool) *bool { return &b }

func passing() ExecutionResult {
	return ExecutionResult{Code: 0, Stdout: "Hello world!", OutputMatchesExpectation: boolPtr(true)}
}

func TestAllPassed(t *testing.T) {
	cases := []struct {
		name string
		resp CompileAndRunResponse
		want bool
	}{
		{
			name: "all visible and hidden pass",
			resp: CompileAndRunResponse{
				Results:       []ExecutionResult{passing()},
				HiddenResults: []ExecutionResult{passing()},
			},
			want: true,
		},
		{
			name: "hidden exit code 1 fails whole submission",
			resp: CompileAndRunResponse{
				Results: []ExecutionResult{passing()},
				HiddenResults: []ExecutionResult{
					{Code: 1, Stdout: "Hello world!", OutputMatchesExpectation: boolPtr(true)},
				},
			},
			want: false,
		},
		{
			name: "visible mismatch fails",
			resp: CompileAndRunResponse{
				Results: []ExecutionResult{
					{Code: 0, Stdout: "nope", OutputMatchesExpectation: boolPtr(false)},
				},
				HiddenResults: []ExecutionResult{passing()},
			},
			want: false,
		},
		{
			name: "missing match flag counts as failure",
			resp: CompileAndRunResponse{
				Results:       []ExecutionResult{{Code: 0, Stdout: "Hello world!"}},
				HiddenResults: []ExecutionResult{passing()},
			},
			want: false,
		},
		{
			name: "no cases at all passes vacuously",
			resp: CompileAndRunResponse{},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.resp.AllPassed(); got != tc.want {
				t.Errorf("AllPassed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompileAndRunRoundTrip(t *testing.T) {
	var received CompileAndRunRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/compile-and-run" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(CompileAndRunResponse{
			Results:       []ExecutionResult{passing()},
			HiddenResults: []ExecutionResult{passing()},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	resp, err := c.CompileAndRun(context.Background(), &CompileAndRunRequest{
		Code:                 "print('Hello world!')",
		ExpectedOutput:       []string{"Hello world!"},
		HiddenExpectedOutput: []string{"Hello world!"},
	})
	if err != nil {
		t.Fatalf("CompileAndRun: %v", err)
	}
	if !resp.AllPassed() {
		t.Error("expected passing response")
	}
	if received.Code != "print('Hello world!')" {
		t.Errorf("forwarded code = %q", received.Code)
	}
	if len(received.HiddenExpectedOutput) != 1 {
		t.Errorf("hidden expected output not forwarded: %+v", received)
	}
}

func TestCompileAndRunNon2xxIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
	_, err := c.CompileAndRun(context.Background(), &CompileAndRunRequest{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestCompileAndRunMalformedBodyIsUnavailable(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing hiddenResults", `{"results": []}`},
		{"missing results", `{"hiddenResults": []}`},
		{"not json", `<html>gateway error</html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second, zerolog.Nop())
			_, err := c.CompileAndRun(context.Background(), &CompileAndRunRequest{})
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestCompileAndRunTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, zerolog.Nop())
	_, err := c.CompileAndRun(context.Background(), &CompileAndRunRequest{})
	if !errors.Is(err, ErrTimedOut) {
		t.Errorf("err = %v, want ErrTimedOut", err)
	}
}

func TestCompileAndRunUnreachable(t *testing.T) {
	// Port 0 is never listening.
	c := NewClient("http://127.0.0.1:0", time.Second, zerolog.Nop())
	_, err := c.CompileAndRun(context.Background(), &CompileAndRunRequest{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
