package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/smart-context/internal/model"
	"github.com/standardbeagle/smart-context/internal/parser"
)

func TestExtract_Go_FunctionAndImport(t *testing.T) {
	src := []byte(`package main

import "fmt"

// Greet prints a greeting.
func Greet(name string) string {
	return "hello " + name
}
`)
	port := parser.NewTreeSitterPort()
	ex := NewExtractor(port)

	symbols, err := ex.Extract("main.go", src)
	require.NoError(t, err)
	require.NotEmpty(t, symbols)

	var found *model.Definition
	var imp *model.Import
	for i := range symbols {
		if symbols[i].Tag == model.TagDefinition && symbols[i].Def.Name == "Greet" {
			found = symbols[i].Def
		}
		if symbols[i].Tag == model.TagImport {
			imp = symbols[i].Imp
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, model.KindFunction, found.Kind)
	assert.Contains(t, found.Signature, "func Greet(name string) string")

	require.NotNil(t, imp)
	assert.Equal(t, "fmt", imp.Source)
}

func TestExtract_SymbolsOrderedByStartByte(t *testing.T) {
	src := []byte(`package main

func A() {}

func B() {}
`)
	port := parser.NewTreeSitterPort()
	ex := NewExtractor(port)
	symbols, err := ex.Extract("x.go", src)
	require.NoError(t, err)

	var prev int
	for _, s := range symbols {
		assert.GreaterOrEqual(t, s.Range().StartByte, prev)
		prev = s.Range().StartByte
	}
}
