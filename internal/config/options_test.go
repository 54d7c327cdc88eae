package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedi/diagnostic"
)

func TestValidateRequiresSourcesAndOutputUnlessShowVersion(t *testing.T) {
	err := Validate(Options{})
	assert.Error(t, err)
}

func TestValidateAllowsShowVersionAlone(t *testing.T) {
	err := Validate(Options{ShowVersion: true})
	assert.NoError(t, err)
}

func TestValidateAcceptsFullSurface(t *testing.T) {
	err := Validate(Options{
		SourcesFilePath:      "sources.txt",
		DependencyTreeOutput: "out/",
		DotFileOutput:        "out/graph.dot",
		Include:              []string{"dep.json"},
	})
	assert.NoError(t, err)
}

func TestValidateReportsExactMessageWhenNoSourceProvided(t *testing.T) {
	err := Validate(Options{DependencyTreeOutput: "out/"})
	require.Error(t, err)

	bundle, ok := err.(*diagnostic.Bundle)
	require.True(t, ok, "missing-source error must be a *diagnostic.Bundle so the CLI renders it like any other diagnostic")
	require.Len(t, bundle.Diagnostics, 1)
	assert.Equal(t, "Must provide 'swift-sources-file-path', '--include', or '--include-file-path'", bundle.Diagnostics[0].Error())
}

func TestValidateAcceptsIncludeWithoutSourcesFilePath(t *testing.T) {
	err := Validate(Options{
		DependencyTreeOutput: "out/",
		Include:              []string{"dep.json"},
	})
	assert.NoError(t, err)
}

func TestValidateAcceptsIncludeFilePathWithoutSourcesFilePath(t *testing.T) {
	err := Validate(Options{
		DependencyTreeOutput: "out/",
		IncludeFilePath:      "includes.txt",
	})
	assert.NoError(t, err)
}
