package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &out))
	assert.Equal(t, "aiengine "+Version+"\n", out.String())
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("server:\n  port: 5002\nlogging:\n  level: debug\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-config", valid, "-validate"}, &out))
	assert.Equal(t, "Configuration is valid\n", out.String())

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("logging:\n  level: loud\n"), 0o644))

	err := run(context.Background(), []string{"-config", invalid, "-validate"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRunValidateMissingFileUsesDefaults(t *testing.T) {
	var out bytes.Buffer
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	require.NoError(t, run(context.Background(), []string{"-config", missing, "-validate"}, &out))
	assert.Equal(t, "Configuration is valid\n", out.String())
}

func TestRunRejectsUnknownFlags(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(context.Background(), []string{"-nope"}, &out))
}
