package profiles

import (
	"strings"
	"testing"
)

func ptr(s string) *string { return &s }

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name string
		p    *Profile
		want bool
	}{
		{"nil", nil, false},
		{"empty", &Profile{}, false},
		{"username only", &Profile{Username: "ada"}, false},
		{"specialty only", &Profile{Specialty: SpecialtyPainter}, false},
		{"both", &Profile{Username: "ada", Specialty: SpecialtyPainter}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsComplete(); got != tt.want {
				t.Fatalf("IsComplete = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInputNormalize(t *testing.T) {
	in := Input{
		Username:        "  ada  ",
		Specialty:       " painter ",
		Bio:             ptr("   "),
		InstagramHandle: ptr(" @ada.paints "),
		Location:        ptr(" Lyon "),
	}.Normalize()

	if in.Username != "ada" || in.Specialty != "painter" {
		t.Fatalf("unexpected trimmed values: %+v", in)
	}
	if in.Bio != nil {
		t.Fatalf("blank bio should be nil, got %q", *in.Bio)
	}
	if in.InstagramHandle == nil || *in.InstagramHandle != "ada.paints" {
		t.Fatalf("unexpected handle %v", in.InstagramHandle)
	}
	if in.Location == nil || *in.Location != "Lyon" {
		t.Fatalf("unexpected location %v", in.Location)
	}
}

func TestInputProblem(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		ok   bool
	}{
		{"valid", Input{Username: "ada", Specialty: "painter"}, true},
		{"short username", Input{Username: "ab", Specialty: "painter"}, false},
		{"long username", Input{Username: strings.Repeat("a", 31), Specialty: "painter"}, false},
		{"max username", Input{Username: strings.Repeat("a", 30), Specialty: "painter"}, true},
		{"missing specialty", Input{Username: "ada"}, false},
		{"long bio", Input{Username: "ada", Specialty: "painter", Bio: ptr(strings.Repeat("b", 501))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Problem() == ""; got != tt.ok {
				t.Fatalf("valid = %v, want %v (%q)", got, tt.ok, tt.in.Problem())
			}
		})
	}
}
