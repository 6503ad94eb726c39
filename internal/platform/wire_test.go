package platform

import (
	"encoding/json"
	"testing"
)

func TestDateOnly(t *testing.T) {
	tests := []struct {
		name string
		json string // JSON value for an order_time field
		want string
	}{
		{"date string", `"2024-08-26"`, "2024-08-26"},
		{"datetime string", `"2024-08-26 14:03:22"`, "2024-08-26"},
		{"epoch number", `1724630400`, "2024-08-26"},
		{"epoch as 10-digit string", `"1724630400"`, "2024-08-26"},
		{"empty", `""`, ""},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v flexString
			if err := json.Unmarshal([]byte(tt.json), &v); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := dateOnly(v); got != tt.want {
				t.Errorf("dateOnly(%s) = %q, want %q", tt.json, got, tt.want)
			}
		})
	}
}

func TestFlexFloat(t *testing.T) {
	var doc struct {
		A flexFloat `json:"a"`
		B flexFloat `json:"b"`
		C flexFloat `json:"c"`
		D flexFloat `json:"d"`
	}
	body := `{"a": 12.5, "b": "7.25", "c": null, "d": "not a number"}`
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.A != 12.5 || doc.B != 7.25 || doc.C != 0 || doc.D != 0 {
		t.Errorf("got a=%v b=%v c=%v d=%v", doc.A, doc.B, doc.C, doc.D)
	}
}

func TestFlexString(t *testing.T) {
	var doc struct {
		S flexString `json:"s"`
		N flexString `json:"n"`
	}
	if err := json.Unmarshal([]byte(`{"s": "A123", "n": 4567}`), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.S.String() != "A123" || doc.S.numeric {
		t.Errorf("s = %+v", doc.S)
	}
	if doc.N.String() != "4567" || !doc.N.numeric {
		t.Errorf("n = %+v", doc.N)
	}
}

func TestMoneyClampsNegatives(t *testing.T) {
	if got := money(flexFloat(-3.5)); got != 0 {
		t.Errorf("money(-3.5) = %v, want 0", got)
	}
	if got := money(flexFloat(3.5)); got != 3.5 {
		t.Errorf("money(3.5) = %v, want 3.5", got)
	}
}

func TestSign(t *testing.T) {
	// MD5 of "abc" — fixed by the partner protocol.
	if got := Sign("a", "bc"); got != "900150983cd24fb0d6963f7d28e17f72" {
		t.Errorf("Sign = %q", got)
	}
	if Sign("user", "pass") != Sign("userpass") {
		t.Error("Sign should concatenate parts before hashing")
	}
}
