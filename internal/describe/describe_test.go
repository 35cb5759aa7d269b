package describe

import (
	"testing"

	"github.com/tidwall/gjson"

	"hashstage/internal/buildinfo"
)

func TestOperatorManifest(t *testing.T) {
	doc := Operator()
	if !gjson.ValidBytes(doc) {
		t.Fatal("operator manifest is not valid JSON")
	}
	if got := gjson.GetBytes(doc, "name").String(); got != buildinfo.Tool {
		t.Fatalf("name = %q", got)
	}
	if got := gjson.GetBytes(doc, `exit_codes.2`).String(); got != "REFUSAL" {
		t.Fatalf("exit code 2 = %q", got)
	}
	if n := len(gjson.GetBytes(doc, "refusals").Array()); n != 2 {
		t.Fatalf("expected 2 refusal codes, got %d", n)
	}
}

func TestSchemaRequiresHashFields(t *testing.T) {
	doc := Schema()
	if !gjson.ValidBytes(doc) {
		t.Fatal("schema is not valid JSON")
	}
	required := map[string]bool{}
	for _, v := range gjson.GetBytes(doc, "required").Array() {
		required[v.String()] = true
	}
	for _, field := range []string{"path", "version", "bytes_hash", "hash_algorithm"} {
		if !required[field] {
			t.Fatalf("schema does not require %s", field)
		}
	}
	if got := gjson.GetBytes(doc, "properties.version.const").String(); got != buildinfo.SchemaVersion {
		t.Fatalf("version const = %q", got)
	}
}
