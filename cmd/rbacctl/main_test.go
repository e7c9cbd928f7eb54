package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		argv []string
		want []string
	}{
		{[]string{"migrate"}, []string{"migrate"}},
		{[]string{"-c", "conf.json", "seed"}, []string{"seed"}},
		{[]string{"-d=postgres://x", "create-admin", "-email", "a@b.c"}, []string{"create-admin", "-email", "a@b.c"}},
		{[]string{"-s", "secret"}, nil},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, commandArgs(tt.argv), "%v", tt.argv)
	}
}
