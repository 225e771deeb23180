package narrative

import "testing"

func TestGenerateSchema(t *testing.T) {
	schema, err := generateSchema()
	if err != nil {
		t.Fatalf("generateSchema: %v", err)
	}
	if _, ok := schema["$schema"]; ok {
		t.Fatalf("$schema must be stripped for strict mode")
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", schema)
	}
	for _, field := range []string{"summary", "highlights"} {
		if _, ok := props[field]; !ok {
			t.Errorf("schema missing property %q", field)
		}
	}
	if schema["additionalProperties"] != false {
		t.Errorf("expected additionalProperties=false, got %v", schema["additionalProperties"])
	}
}

func TestNewOpenAINarratorRequiresKey(t *testing.T) {
	if _, err := NewOpenAINarrator("  ", "", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
	n, err := NewOpenAINarrator("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Model() != "gpt-4o-mini" {
		t.Fatalf("unexpected default model %q", n.Model())
	}
}
