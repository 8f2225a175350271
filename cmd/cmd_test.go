package cmd

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windloads/segpress/internal/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

func g(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// writeSnapshot writes a gzip export with one sample per M1 segment and
// returns its sample positions
func writeSnapshot(t *testing.T, dir, name string, scale float64) (string, []r3.Vec) {
	t.Helper()
	m := geometry.M1()
	var sb strings.Builder
	sb.WriteString("Area in TCS[i] (m^2),Area in TCS[j] (m^2),Area in TCS[k] (m^2),Pressure (Pa),X (m),Y (m),Z (m)\n")
	var xyz []r3.Vec
	for sid := 1; sid <= geometry.NumSegments; sid++ {
		tr, err := m.Transform(sid)
		require.NoError(t, err)
		a := tr.Rotation.MulVec(r3.Vec{Z: 0.5})
		p := tr.FromLocal(r3.Vec{X: 2})
		xyz = append(xyz, p)
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s,%s\n", g(a.X), g(a.Y), g(a.Z), g(scale*float64(sid)), g(p.X), g(p.Y), g(p.Z))
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path, xyz
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	path, _ := writeSnapshot(t, t.TempDir(), "M1p_M1p_10.csv.z", 1)

	out, err := execute(t, "stats", "--format", "table", "--chart", "--asm", "--radius", "5", path)
	require.NoError(t, err)
	assert.Contains(t, out, "M1 PRESSURE STATISTICS")
	assert.Contains(t, out, "Samples: 7")
	assert.Contains(t, out, "SEGMENT MEAN PRESSURE")
	assert.Contains(t, out, "ASM DIFFERENTIAL PRESSURE")
	assert.Contains(t, out, "Mean pressure (r < 5m):")

	out, err = execute(t, "stats", "--format", "json", "--chart=false", "--asm=false", "--radius", "0", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"mirror": "M1"`)

	_, err = execute(t, "stats", "--format", "json", "--asm", path)
	assert.ErrorContains(t, err, "--format table")
	_, err = execute(t, "stats", "--format", "msgpack", "--asm=false", "--radius", "2", path)
	assert.ErrorContains(t, err, "--format table")
	statsRadius = 0

	_, err = execute(t, "stats", "--format", "yaml", path)
	assert.Error(t, err)

	_, err = execute(t, "stats", "--format", "table", "-m", "M3", path)
	assert.Error(t, err)
	_, err = execute(t, "stats", "-m", "M1", filepath.Join(t.TempDir(), "missing.csv.z"))
	assert.Error(t, err)
}

func TestForcesCommand(t *testing.T) {
	path, _ := writeSnapshot(t, t.TempDir(), "M1p_M1p_10.csv.z", 1)
	out, err := execute(t, "forces", "--chart", path)
	require.NoError(t, err)
	assert.Contains(t, out, "M1 SEGMENT EXERTION")
	assert.Contains(t, out, "CENTERS OF PRESSURE [m]")
	assert.Contains(t, out, "M1 TOTAL")
	assert.Contains(t, out, "SEGMENT Fz")
}

func TestLocateCommand(t *testing.T) {
	dir := t.TempDir()
	path, xyz := writeSnapshot(t, dir, "M1p_M1p_10.csv.z", 1)
	nodes := filepath.Join(dir, "nodes.csv")
	text := fmt.Sprintf("x,y,z\n%s,%s,%s\n5,5,5\n", g(xyz[2].X), g(xyz[2].Y), g(xyz[2].Z))
	require.NoError(t, os.WriteFile(nodes, []byte(text), 0o644))

	out, err := execute(t, "locate", "--mount=false", "--nearest=false", "--points", nodes, path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "3.000")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[2]), "-"))

	out, err = execute(t, "locate", "--mount", "--nearest", "--points", nodes, path)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.NotContains(t, lines[2], " - ")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	a, _ := writeSnapshot(t, dir, "M1p_M1p_20.csv.z", 2)
	b, _ := writeSnapshot(t, dir, "M1p_M1p_10.csv.z", 1)
	out := filepath.Join(dir, "stats.csv")

	_, err := execute(t, "batch", "-w", "2", "-o", out, a, b)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "10", rows[1][0])
	assert.Equal(t, "20", rows[2][0])
	assert.Equal(t, "1", rows[1][2])
	assert.Equal(t, "2", rows[2][2])

	_, err = execute(t, "batch", "-o", "", filepath.Join(dir, "M1p.csv.z"))
	assert.Error(t, err)
}

func TestMountCommand(t *testing.T) {
	path, _ := writeSnapshot(t, t.TempDir(), "mount.csv.gz", 1)
	out, err := execute(t, "mount", path)
	require.NoError(t, err)
	assert.Contains(t, out, "mount.csv.gz [7]:")
	assert.Contains(t, out, "median: 4.000pa")
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config", "--check", "")
	require.NoError(t, err)
	assert.Contains(t, out, `[Mirror "M1"]`)

	fname := filepath.Join(t.TempDir(), "segpress.gcfg")
	require.NoError(t, os.WriteFile(fname, []byte(out), 0o644))
	out, err = execute(t, "config", "--check", fname)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	// The configuration is applied to the other commands
	path, _ := writeSnapshot(t, t.TempDir(), "M1p_M1p_10.csv.z", 1)
	bad := filepath.Join(t.TempDir(), "small.gcfg")
	require.NoError(t, os.WriteFile(bad, []byte("[Mirror \"M1\"]\nExoRadius = 1.5\nCenterHoleRadius = 0\n"), 0o644))
	_, err = execute(t, "--config", bad, "forces", "--chart=false", path)
	assert.Error(t, err)
	_, err = execute(t, "--config", "", "forces", path)
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "segpress v")
}

func TestCloseInto(t *testing.T) {
	failed := errors.New("flush failed")
	earlier := errors.New("write failed")

	var err error
	closeInto(&err, func() error { return failed })
	assert.ErrorIs(t, err, failed)

	err = earlier
	closeInto(&err, func() error { return failed })
	assert.ErrorIs(t, err, earlier)

	err = nil
	closeInto(&err, func() error { return nil })
	assert.NoError(t, err)
}

func TestOutputFileClosed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.txt")
	w, closeFn, err := output(rootCmd, name)
	require.NoError(t, err)
	_, err = fmt.Fprint(w, "segpress")
	require.NoError(t, err)
	closeInto(&err, closeFn)
	require.NoError(t, err)

	err = nil
	closeInto(&err, closeFn)
	assert.ErrorIs(t, err, os.ErrClosed)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "segpress", string(data))
}
