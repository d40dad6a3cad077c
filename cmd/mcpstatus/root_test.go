package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	watch, _, err := root.Find([]string{"watch"})
	require.NoError(t, err)
	for _, name := range []string{"endpoint", "interval", "output", "no-color"} {
		assert.NotNil(t, watch.Flags().Lookup(name), name)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestWatch_BadOutputFormat(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"watch", "--output", "xml"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
