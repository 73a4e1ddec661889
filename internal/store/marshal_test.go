package store

import (
	"testing"

	"github.com/roach88/happyplaces/internal/model"
)

func TestMarshalMetadata_Nil(t *testing.T) {
	got, err := marshalMetadata(nil)
	if err != nil {
		t.Fatalf("marshalMetadata() failed: %v", err)
	}
	if got != "{}" {
		t.Errorf("marshalMetadata(nil) = %q, want %q", got, "{}")
	}
}

func TestMarshalMetadata_Canonical(t *testing.T) {
	meta := model.Object{
		"tag":    model.String("nfc-04"),
		"shelf":  model.Int(2),
		"weight": model.Float(0.75),
		"colors": model.Array{model.String("blue"), model.String("grey")},
	}
	got, err := marshalMetadata(meta)
	if err != nil {
		t.Fatalf("marshalMetadata() failed: %v", err)
	}

	expected := `{"colors":["blue","grey"],"shelf":2,"tag":"nfc-04","weight":0.75}`
	if got != expected {
		t.Errorf("marshalMetadata() = %q, want %q", got, expected)
	}
}

func TestUnmarshalMetadata_EmptyForms(t *testing.T) {
	for _, input := range []string{"", "{}", "null", "  "} {
		got, err := unmarshalMetadata(input)
		if err != nil {
			t.Fatalf("unmarshalMetadata(%q) failed: %v", input, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("unmarshalMetadata(%q) = %v, want empty object", input, got)
		}
	}
}

func TestUnmarshalMetadata_Invalid(t *testing.T) {
	if _, err := unmarshalMetadata(`["not","an","object"]`); err == nil {
		t.Error("expected error for array metadata")
	}
}

func TestNullHelpers(t *testing.T) {
	if nullString("").Valid {
		t.Error(`nullString("") should be NULL`)
	}
	if !nullString("x").Valid {
		t.Error(`nullString("x") should be valid`)
	}
	if nullFloat(nil).Valid || nullInt(nil).Valid {
		t.Error("nil pointers should map to NULL")
	}
	if p := floatPtr(nullFloat(model.Ptr(2.5))); p == nil || *p != 2.5 {
		t.Errorf("floatPtr round trip = %v, want 2.5", p)
	}
	if p := intPtr(nullInt(model.Ptr(int64(7)))); p == nil || *p != 7 {
		t.Errorf("intPtr round trip = %v, want 7", p)
	}
}
