package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestIdentifierArgs(t *testing.T) {
	be.Equal(t, identifierArgs(" 42 "), map[string]any{"identifier": "42"})
	be.Equal(t, identifierArgs("0r1-abc"), map[string]any{"lookupKey": "0r1-abc"})
}

func TestLabeledValues(t *testing.T) {
	got, err := labeledValues([]string{"work=555-0100", "555-0101", " Lab = x=y "}, "value")
	be.Err(t, err, nil)
	be.Equal(t, got, []any{
		map[string]any{"label": "work", "value": "555-0100"},
		map[string]any{"label": "", "value": "555-0101"},
		map[string]any{"label": "Lab", "value": "x=y"},
	})

	_, err = labeledValues([]string{"home="}, "value")
	be.Err(t, err, "empty value")
}
