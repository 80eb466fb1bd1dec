package hexstr_test

import (
	"errors"
	"testing"

	"i4.energy/across/tata/hexstr"
)

func TestUCS2(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		encoded string
	}{
		{
			name:    "Remote command",
			text:    "$tATA/location/12345",
			encoded: "00240074004100540041002F006C006F0063006100740069006F006E002F00310032003300340035",
		},
		{
			name:    "Accents and surrogate pair",
			text:    "Tamás Dömők 😎",
			encoded: "00540061006D00E100730020004400F6006D0151006B0020D83DDE0E",
		},
		{name: "Phone number", text: "+36301234567", encoded: "002B00330036003300300031003200330034003500360037"},
		{name: "Empty", text: "", encoded: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hexstr.EncodeUCS2(tt.text); got != tt.encoded {
				t.Errorf("expected %q, got %q", tt.encoded, got)
			}
			got, err := hexstr.DecodeUCS2(tt.encoded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.text {
				t.Errorf("expected %q, got %q", tt.text, got)
			}
		})
	}

	t.Run("Accepts lowercase digits", func(t *testing.T) {
		got, err := hexstr.DecodeUCS2("00e1")
		if err != nil || got != "á" {
			t.Errorf("expected á, got %q, %v", got, err)
		}
	})

	for _, bad := range []string{"004", "00G1", "0054006"} {
		t.Run("Rejects "+bad, func(t *testing.T) {
			if _, err := hexstr.DecodeUCS2(bad); !errors.Is(err, hexstr.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got: %v", err)
			}
		})
	}
}
