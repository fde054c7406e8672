package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		setup string
		code  string
		ok    bool
	}{
		{name: "no_arguments", args: []string{}, ok: false},
		{name: "code_only", args: []string{"A90E"}, setup: "", code: "A90E", ok: true},
		{name: "setup_and_code", args: []string{"80FF801C", "A90E"}, setup: "80FF801C", code: "A90E", ok: true},
		{name: "too_many_arguments", args: []string{"80FF801C", "A90E", "A90F"}, ok: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			setup, code, ok := parseArgs(test.args)

			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.setup, setup)
			assert.Equal(t, test.code, code)
		})
	}
}

func TestUsageText(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)

	out := buf.String()
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "DIVMODC")
	assert.Contains(t, out, "boc:")
}
