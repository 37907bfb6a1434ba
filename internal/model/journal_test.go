package model

import (
	"errors"
	"strings"
	"testing"
)

func validJournal() *Journal {
	return &Journal{
		ProgramHash: ProgramHashPlaceholder,
		InputHash:   "sha256:aa",
		OutputHash:  "sha256:bb",
		Keywords: []Keyword{
			{Word: "dog", Count: 2},
			{Word: "fox", Count: 1},
		},
	}
}

func TestJournal_EncodeCanonicalForm(t *testing.T) {
	j := validJournal()

	got, err := j.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := `{"programHash":"<FILLED_BY_HOST>","inputHash":"sha256:aa","outputHash":"sha256:bb","keywords":[{"word":"dog","count":2},{"word":"fox","count":1}]}`
	if string(got) != want {
		t.Errorf("Expected %s, got %s", want, string(got))
	}
}

func TestJournal_EncodeEmptyKeywords(t *testing.T) {
	j := validJournal()
	j.Keywords = []Keyword{}

	got, err := j.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !strings.Contains(string(got), `"keywords":[]`) {
		t.Errorf("Expected empty list to encode as [], got %s", string(got))
	}
}

func TestJournal_EncodeRejectsNilKeywords(t *testing.T) {
	j := validJournal()
	j.Keywords = nil

	if _, err := j.Encode(); err == nil {
		t.Fatal("Expected error for nil keywords, got nil")
	}
}

func TestJournal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Journal)
		wantErr string
	}{
		{"valid", func(j *Journal) {}, ""},
		{"empty keywords ok", func(j *Journal) { j.Keywords = []Keyword{} }, ""},
		{"missing program hash", func(j *Journal) { j.ProgramHash = "" }, "programHash"},
		{"missing input hash", func(j *Journal) { j.InputHash = "" }, "inputHash"},
		{"missing output hash", func(j *Journal) { j.OutputHash = "" }, "outputHash"},
		{"nil keywords", func(j *Journal) { j.Keywords = nil }, "keywords"},
		{"too many keywords", func(j *Journal) {
			j.Keywords = []Keyword{
				{"a", 1}, {"b", 1}, {"c", 1}, {"d", 1}, {"e", 1}, {"f", 1},
			}
		}, "too many"},
		{"empty word", func(j *Journal) { j.Keywords = []Keyword{{"", 1}} }, "empty word"},
		{"zero count", func(j *Journal) { j.Keywords = []Keyword{{"x", 0}} }, "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := validJournal()
			tt.mutate(j)

			err := j.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeJournal_RoundTrip(t *testing.T) {
	data, err := validJournal().Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	j, err := DecodeJournal(data)
	if err != nil {
		t.Fatalf("DecodeJournal failed: %v", err)
	}
	if j.ProgramHash != ProgramHashPlaceholder {
		t.Errorf("Unexpected program hash: %s", j.ProgramHash)
	}
	if len(j.Keywords) != 2 || j.Keywords[0].Word != "dog" {
		t.Errorf("Unexpected keywords: %v", j.Keywords)
	}
}

func TestDecodeJournal_MalformedBytes(t *testing.T) {
	cases := map[string][]byte{
		"not json":       []byte("not json at all"),
		"wrong shape":    []byte(`{"programHash":123}`),
		"unknown field":  []byte(`{"programHash":"x","inputHash":"y","outputHash":"z","keywords":[],"bogus":1}`),
		"null keywords":  []byte(`{"programHash":"x","inputHash":"y","outputHash":"z","keywords":null}`),
		"empty object":   []byte(`{}`),
		"trailing bytes": []byte(`{"programHash":"x","inputHash":"y","outputHash":"z","keywords":[]}{}`),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJournal(data)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, ErrJournalDecode) {
				t.Errorf("Expected ErrJournalDecode, got %v", err)
			}
		})
	}
}

func TestDecodeJournal_AcceptsEmptyKeywordList(t *testing.T) {
	data := []byte(`{"programHash":"x","inputHash":"y","outputHash":"z","keywords":[]}`)

	j, err := DecodeJournal(data)
	if err != nil {
		t.Fatalf("DecodeJournal failed: %v", err)
	}
	if j.Keywords == nil || len(j.Keywords) != 0 {
		t.Errorf("Expected present empty keyword list, got %v", j.Keywords)
	}
}
