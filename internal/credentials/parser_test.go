package credentials

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Claims
	}{
		{
			name:  "Principal And Role",
			input: "principal:alice;role:admin",
			want:  Claims{"principal": "alice", "role": "admin"},
		},
		{
			name:  "Opaque Token",
			input: "opaque-token-xyz",
			want:  Claims{},
		},
		{
			name:  "Empty String",
			input: "",
			want:  Claims{},
		},
		{
			name:  "Whitespace Trimmed",
			input: "  principal : alice ;  role: admin  ",
			want:  Claims{"principal": "alice", "role": "admin"},
		},
		{
			name:  "Value Split On First Colon",
			input: "principal:alice;realm:urn:acme:prod",
			want:  Claims{"principal": "alice", "realm": "urn:acme:prod"},
		},
		{
			name:  "Malformed Segment Skipped",
			input: "principal:alice;garbage;role:reader",
			want:  Claims{"principal": "alice", "role": "reader"},
		},
		{
			name:  "Empty Segments Skipped",
			input: ";principal:alice;;",
			want:  Claims{"principal": "alice"},
		},
		{
			name:  "Empty Key Skipped",
			input: ":orphan;role:reader",
			want:  Claims{"role": "reader"},
		},
		{
			name:  "Duplicate Key First Wins",
			input: "principal:alice;principal:mallory",
			want:  Claims{"principal": "alice"},
		},
		{
			name:  "Only Separator",
			input: ";",
			want:  Claims{},
		},
		{
			name:  "Empty Value Kept",
			input: "principal:alice;role:",
			want:  Claims{"principal": "alice", "role": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClaims_Principal(t *testing.T) {
	if _, ok := (Claims{"role": "admin"}).Principal(); ok {
		t.Errorf("Principal() should be absent without a principal claim")
	}
	if _, ok := (Claims{"principal": ""}).Principal(); ok {
		t.Errorf("Principal() should be absent for an empty principal claim")
	}
	if p, ok := (Claims{"principal": "bob"}).Principal(); !ok || p != "bob" {
		t.Errorf("Principal() = %q, %v, want bob, true", p, ok)
	}
}
