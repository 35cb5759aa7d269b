package manifest

import (
	"errors"
	"testing"
)

func TestParseAcceptsValidRecord(t *testing.T) {
	rec, err := Parse([]byte(`{"path":"/tmp/input.csv","version":"vacuum.v0","size":12}`+"\n"), 3)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Path() != "/tmp/input.csv" {
		t.Fatalf("unexpected path %q", rec.Path())
	}
	if got := rec.Get("size").Raw; got != "12" {
		t.Fatalf("size should keep its literal, got %q", got)
	}
	if got := rec.String(); got != `{"path":"/tmp/input.csv","version":"vacuum.v0","size":12}` {
		t.Fatalf("record should be trimmed verbatim, got %s", got)
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		lineNumber   int
		wantErr      string
		wantMissing  string
		wantSyntaxed bool
	}{
		{name: "truncated json", line: `{"path": "/tmp/a.csv"`, lineNumber: 9, wantSyntaxed: true},
		{name: "trailing garbage", line: `{"path":"a","version":"v"} x`, lineNumber: 2, wantSyntaxed: true},
		{name: "array", line: `["not","an","object"]`, lineNumber: 5, wantErr: "record must be a JSON object"},
		{name: "scalar", line: `42`, lineNumber: 1, wantErr: "record must be a JSON object"},
		{name: "missing path", line: `{"version":"vacuum.v0"}`, lineNumber: 11, wantMissing: "path"},
		{name: "missing version", line: `{"path":"/tmp/input.csv"}`, lineNumber: 12, wantMissing: "version"},
		{name: "null path", line: `{"path":null,"version":"v"}`, lineNumber: 4, wantMissing: "path"},
		{name: "null version", line: `{"path":"a","version":null}`, lineNumber: 4, wantMissing: "version"},
		{name: "both missing reports path", line: `{}`, lineNumber: 1, wantMissing: "path"},
		{name: "invalid utf-8 in string", line: "{\"path\":\"a\",\"version\":\"v\",\"s\":\"\xff\"}", lineNumber: 8, wantErr: "record is not valid UTF-8"},
		{name: "numeric path", line: `{"path":7,"version":"v"}`, lineNumber: 6, wantErr: `field "path" must be a string`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.line), tt.lineNumber)
			var failure *ParseFailure
			if !errors.As(err, &failure) {
				t.Fatalf("expected *ParseFailure, got %v", err)
			}
			if failure.Line != tt.lineNumber {
				t.Fatalf("line = %d, want %d", failure.Line, tt.lineNumber)
			}
			if failure.MissingField != tt.wantMissing {
				t.Fatalf("missing field = %q, want %q", failure.MissingField, tt.wantMissing)
			}
			switch {
			case tt.wantSyntaxed:
				if failure.Err == "" {
					t.Fatal("expected syntax error text")
				}
			case tt.wantErr != "":
				if failure.Err != tt.wantErr {
					t.Fatalf("err = %q, want %q", failure.Err, tt.wantErr)
				}
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	for _, line := range []string{"", "\n", "   \t\r\n"} {
		if !IsBlank([]byte(line)) {
			t.Fatalf("%q should be blank", line)
		}
	}
	if IsBlank([]byte(" {} ")) {
		t.Fatal("object line is not blank")
	}
}

func TestRecordSetPreservesKeyOrder(t *testing.T) {
	rec := MustFromJSON(`{"version":"vacuum.v0","path":"a","size":1.50}`)
	out, err := rec.Set("version", "hash.v0")
	if err != nil {
		t.Fatal(err)
	}
	out, err = out.Set("bytes_hash", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"version":"hash.v0","path":"a","size":1.50,"bytes_hash":null}`
	if out.String() != want {
		t.Fatalf("got %s want %s", out, want)
	}
	if rec.Get("version").String() != "vacuum.v0" {
		t.Fatal("Set must not mutate the receiver")
	}
}
