package cmd

import (
	"strings"
	"testing"

	"github.com/silexio/zping/config"
)

func TestParseTargets(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []config.Target
	}{
		{
			name: "single row",
			args: []string{"1.1.1.1,3,100"},
			want: []config.Target{{Addr: "1.1.1.1", Count: 3, Interval: 100}},
		},
		{
			name: "rows joined by semicolon",
			args: []string{"1.1.1.1,3,100;8.8.8.8,1,1000"},
			want: []config.Target{
				{Addr: "1.1.1.1", Count: 3, Interval: 100},
				{Addr: "8.8.8.8", Count: 1, Interval: 1000},
			},
		},
		{
			name: "trailing terminator",
			args: []string{"1.1.1.1,3,100;"},
			want: []config.Target{{Addr: "1.1.1.1", Count: 3, Interval: 100}},
		},
		{
			name: "separate arguments with spaces",
			args: []string{"1.1.1.1, 3, 100", "9.9.9.9,10,1"},
			want: []config.Target{
				{Addr: "1.1.1.1", Count: 3, Interval: 100},
				{Addr: "9.9.9.9", Count: 10, Interval: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTargets(tt.args)
			if err != nil {
				t.Fatalf("ParseTargets(%q) error: %v", tt.args, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseTargets(%q) = %d targets, want %d", tt.args, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("targets[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseTargetsRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing fields", []string{"1.1.1.1,3"}, "3 fields"},
		{"extra fields", []string{"1.1.1.1,3,100,9"}, "fields"},
		{"bad address", []string{"nonsense,3,100"}, "address"},
		{"ipv6 address", []string{"2001:db8::1,3,100"}, "not IPv4"},
		{"count not a number", []string{"1.1.1.1,three,100"}, "count"},
		{"count out of range", []string{"1.1.1.1,11,100"}, "count"},
		{"interval out of range", []string{"1.1.1.1,3,1001"}, "interval"},
		{"interval zero", []string{"1.1.1.1,3,0"}, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTargets(tt.args)
			if err == nil {
				t.Fatalf("ParseTargets(%q) = nil error, want failure", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}
