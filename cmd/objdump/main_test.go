package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/objbase/arena"
	"github.com/arloliu/objbase/command"
	"github.com/arloliu/objbase/entity"
	"github.com/arloliu/objbase/format"
	"github.com/arloliu/objbase/section"
	"github.com/arloliu/objbase/snapshot"
)

func writeSnapshot(t *testing.T, order format.ByteOrder) string {
	t.Helper()

	codec, err := entity.NewCodec(entity.WithByteOrder(order))
	require.NoError(t, err)

	root, err := command.NewComposite(1, 2)
	require.NoError(t, err)
	require.NoError(t, root.Add(command.New(2, nil)))
	require.NoError(t, root.Add(command.New(3, nil)))

	a := arena.New(0)
	_, err = command.Write(codec, a, root)
	require.NoError(t, err)

	name := filepath.Join(t.TempDir(), "tree.obj")
	require.NoError(t, snapshot.WriteFile(name, a, snapshot.WithCompression(format.CompressionZstd)))

	return name
}

func TestRun_Header(t *testing.T) {
	name := writeSnapshot(t, format.LittleEndian)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-f", name}, &out))

	require.Contains(t, out.String(), "compression:")
	require.Contains(t, out.String(), "Zstd")
	require.Regexp(t, `entries:\s+3\n`, out.String())
	require.Regexp(t, fmt.Sprintf(`data offset:\s+%d\n`, section.HeaderSize+3*section.IndexEntrySize), out.String())
	require.NotRegexp(t, `(?m)^#\s+offset`, out.String())
}

func TestRun_Tags(t *testing.T) {
	name := writeSnapshot(t, format.BigEndian)

	var out bytes.Buffer
	require.NoError(t, run([]string{"--file", name, "--tags", "--order", "big"}, &out))

	text := out.String()
	require.Contains(t, text, command.CompositeVersion.String())
	require.Contains(t, text, command.Version.String())
}

func TestRun_Entries(t *testing.T) {
	name := writeSnapshot(t, format.LittleEndian)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-f", name, "--entries"}, &out))
	require.Regexp(t, `(?m)^#\s+offset\s+size`, out.String())
	require.NotContains(t, out.String(), "v1.0.0#")
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	require.Error(t, run(nil, &out))
	require.Error(t, run([]string{"-f", filepath.Join(t.TempDir(), "missing.obj")}, &out))
	require.Error(t, run([]string{"-f", "x", "--order", "middle"}, &out))
	require.Error(t, run([]string{"-f", "x", "extra"}, &out))
	require.Error(t, run([]string{"--bogus"}, &out))
	require.NoError(t, run([]string{"--help"}, &out))
}
