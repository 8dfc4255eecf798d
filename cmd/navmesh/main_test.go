package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floorObj = `# 10x10 floor
v 0 0 0
v 10 0 0
v 10 0 10
v 0 0 10
f 1 3 2
f 1 4 3
`

func writeFloor(t *testing.T) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "floor.obj")
	require.NoError(t, os.WriteFile(name, []byte(floorObj), 0o644))
	return name
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	obj := writeFloor(t)
	dump := filepath.Join(t.TempDir(), "mesh.obj")

	out, err := run(t, "build", "--obj", obj, "--dump", dump)
	require.NoError(t, err)
	assert.Contains(t, out, "tiles 1 polys ")
	assert.NotContains(t, out, "polys 0 ")

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\nf ")
}

func TestBuildCommandWithConfig(t *testing.T) {
	obj := writeFloor(t)
	cfgFile := filepath.Join(t.TempDir(), "navmesh.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("build:\n  tile_size: 16\n"), 0o644))

	out, err := run(t, "build", "--obj", obj, "--config", cfgFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tiles "), out)
	assert.NotContains(t, out, "tiles 1 ", "a 16 cell tile splits the floor")
}

func TestPathCommand(t *testing.T) {
	obj := writeFloor(t)

	out, err := run(t, "path", "--obj", obj, "--start", "1,0,1", "--end", "9,0,9")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3, out)
	assert.True(t, strings.HasPrefix(lines[0], "1.000 ") && strings.HasSuffix(lines[0], " 1.000"), lines[0])
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "9.000 ") && strings.HasSuffix(lines[len(lines)-2], " 9.000"), out)
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "length "), out)

	_, err = run(t, "path", "--obj", obj, "--start", "1,0", "--end", "9,0,9")
	assert.Error(t, err)
}

func TestMissingObj(t *testing.T) {
	_, err := run(t, "build")
	assert.Error(t, err)
}
