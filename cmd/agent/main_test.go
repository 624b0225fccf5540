package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFields(t *testing.T) {
	cases := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain tokens",
			line: "click page-1 #email",
			want: []string{"click", "page-1", "#email"},
		},
		{
			name: "quoted nth qualifier stays one field",
			line: `fill page-1 ".nav-item >> nth=1" hello world`,
			want: []string{"fill", "page-1", ".nav-item >> nth=1", "hello", "world"},
		},
		{
			name: "mid-field quotes kept literally",
			line: `click page-1 [name="password"]`,
			want: []string{"click", "page-1", `[name="password"]`},
		},
		{
			name: "escaped quotes inside quoted field",
			line: `fill page-2 "[aria-label=\"Close dialog\"]" ok`,
			want: []string{"fill", "page-2", `[aria-label="Close dialog"]`, "ok"},
		},
		{
			name: "css escape backslash survives quoting",
			line: `fill page-1 "#user\.email >> nth=0" a@b.c`,
			want: []string{"fill", "page-1", `#user\.email >> nth=0`, "a@b.c"},
		},
		{
			name: "unclosed quote runs to end of line",
			line: `read page-1 "main .content`,
			want: []string{"read", "page-1", "main .content"},
		},
		{
			name: "tabs and repeated spaces collapse",
			line: "pages\t\t x",
			want: []string{"pages", "x"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, splitFields(tc.line))
		})
	}
}
