package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueJSONEncoding(t *testing.T) {
	cases := []struct {
		name  string
		value Value
		want  string
	}{
		{"number", Number(1500.5), "1500.5"},
		{"negative", Number(-200), "-200"},
		{"zero", Number(0), "0"},
		{"not applicable", NA(), `"N/A"`},
		{"missing", Missing(), "null"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.value)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}

			var back Value
			if err := json.Unmarshal(got, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if back != tc.value {
				t.Fatalf("expected %v after decode, got %v", tc.value, back)
			}
		})
	}
}

func TestValueRejectsNonFinite(t *testing.T) {
	if _, err := json.Marshal(Number(math.Inf(1))); err == nil {
		t.Fatal("expected error for +Inf")
	}
}

func TestValueRejectsUnknownToken(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`"n/d"`), &v); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

func TestValueStates(t *testing.T) {
	if !Missing().IsMissing() || Missing().IsNumber() {
		t.Fatal("zero Value must be missing")
	}
	if !NA().IsNA() {
		t.Fatal("NA must report IsNA")
	}
	if n, ok := Number(0).Float(); !ok || n != 0 {
		t.Fatal("a provided zero is still a number")
	}
	if _, ok := NA().Float(); ok {
		t.Fatal("NA carries no number")
	}
}

func TestPeriodRecordJSON(t *testing.T) {
	rec := PeriodRecord{"revenue": Number(100), "openingCash": NA(), "capex": Missing()}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"capex":null,"openingCash":"N/A","revenue":100}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}
