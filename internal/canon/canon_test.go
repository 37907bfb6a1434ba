package canon

import (
	"bytes"
	"testing"
)

type sample struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestMarshal_FieldOrderAndCompactness(t *testing.T) {
	v := sample{Name: "fox", Count: 2, Tags: []string{"a", "b"}}

	got, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"name":"fox","count":2,"tags":["a","b"]}`
	if string(got) != want {
		t.Errorf("Expected %s, got %s", want, string(got))
	}
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	v := sample{Name: "<FILLED_BY_HOST>"}

	got, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !bytes.Contains(got, []byte("<FILLED_BY_HOST>")) {
		t.Errorf("Expected literal angle brackets, got %s", string(got))
	}
	if bytes.Contains(got, []byte("\\u003c")) {
		t.Errorf("Expected no unicode escaping of '<', got %s", string(got))
	}
}

func TestMarshal_NoTrailingNewline(t *testing.T) {
	got, err := Marshal(sample{Name: "x"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if bytes.HasSuffix(got, []byte("\n")) {
		t.Error("Expected no trailing newline in canonical bytes")
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	v := sample{Name: "dog", Count: 3, Tags: []string{"x"}}

	first, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal failed on iteration %d: %v", i, err)
		}
		if !bytes.Equal(first, next) {
			t.Fatalf("Expected identical bytes on iteration %d, got %s vs %s", i, first, next)
		}
	}
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	in := sample{Name: "fox", Count: 2, Tags: []string{"a"}}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out sample
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if out.Name != in.Name || out.Count != in.Count || len(out.Tags) != 1 {
		t.Errorf("Round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestUnmarshal_RejectsUnknownFields(t *testing.T) {
	var out sample
	err := Unmarshal([]byte(`{"name":"x","count":1,"tags":[],"extra":true}`), &out)
	if err == nil {
		t.Fatal("Expected error for unknown field, got nil")
	}
}

func TestUnmarshal_RejectsTrailingData(t *testing.T) {
	var out sample
	err := Unmarshal([]byte(`{"name":"x","count":1,"tags":[]} garbage`), &out)
	if err == nil {
		t.Fatal("Expected error for trailing data, got nil")
	}
}

func TestUnmarshal_RejectsMalformed(t *testing.T) {
	var out sample
	err := Unmarshal([]byte(`{not json`), &out)
	if err == nil {
		t.Fatal("Expected error for malformed input, got nil")
	}
}
