package main

import (
	"flag"
	"io"
	"testing"

	"github.com/vanshika/netviz/internal/config"
)

func TestEffectiveThreshold(t *testing.T) {
	reg := &config.Registry{WeightButtons: []float64{1, 2, 3}}

	tests := []struct {
		name string
		args []string
		want float64
	}{
		{"unset uses first weight button", nil, 1},
		{"negative value is honoured", []string{"-threshold=-2"}, -2},
		{"explicit zero is honoured", []string{"-threshold=0"}, 0},
		{"positive value", []string{"-threshold", "2.5"}, 2.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := flag.NewFlagSet("buildstatic", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			threshold := fs.Float64("threshold", 0, "")
			if err := fs.Parse(tc.args); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := effectiveThreshold(fs, *threshold, reg); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
