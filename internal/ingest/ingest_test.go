package ingest

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/pressure"
	"gonum.org/v1/gonum/spatial/r3"
)

const combined = `Area in TCS[i] (m^2),Area in TCS[j] (m^2),Area in TCS[k] (m^2),Pressure (Pa),X (m),Y (m),Z (m)
0,0,0.25,1,0.1,0,0
0,0,0.25,1,-0.1,0,0
0,0,0.25,1,0,0.1,0
0,0,0.25,1,0,-0.1,0
`

func gzipped(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func unitMirror(t *testing.T) *geometry.Mirror {
	t.Helper()
	m, err := geometry.NewMirror(geometry.MirrorM1, geometry.Layout{
		ExoRadius:         1,
		OffAxisDistance:   10,
		RadiusOfCurvature: 1e3,
	})
	require.NoError(t, err)
	return m
}

func TestDetect(t *testing.T) {
	tests := []struct {
		data []byte
		want Compression
	}{
		{gzipped(t, "x"), Gzip},
		{[]byte("BZh91AY&SY"), Bzip2},
		{[]byte("X (m),Y (m)"), None},
		{nil, None},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(bufio.NewReader(bytes.NewReader(tt.data))), tt.want.String())
	}
}

func TestDecompress(t *testing.T) {
	gz := writeFile(t, "M1p_M1p_1.csv.z", gzipped(t, combined))
	data, err := Decompress(gz)
	require.NoError(t, err)
	assert.Equal(t, combined, string(data))

	plain := writeFile(t, "M1p.csv", []byte(combined))
	data, err = Decompress(plain)
	require.NoError(t, err)
	assert.Equal(t, combined, string(data))

	_, err = Decompress(filepath.Join(t.TempDir(), "missing.csv.gz"))
	var ierr *IOError
	assert.True(t, errors.As(err, &ierr))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	full := gzipped(t, strings.Repeat(combined, 50))
	truncated := writeFile(t, "truncated.csv.gz", full[:len(full)/2])
	_, err = Decompress(truncated)
	var derr *DecompressionError
	assert.True(t, errors.As(err, &derr))
	assert.Equal(t, truncated, derr.Path)

	bad := writeFile(t, "bad.bz2", []byte("BZh9 not really bzip2"))
	_, err = Decompress(bad)
	assert.True(t, errors.As(err, &derr))
}

func TestParseRecords(t *testing.T) {
	text := "Pressure (Pa), Area: Magnitude (m^2),Area in TCS[i],Area in TCS[j],Area in TCS[k],X (m),Y (m),Z (m)\n" +
		"-2.5,3,0,0,3,1,2,3\n" +
		"4e2, 1,1,0,0,4,5,6\n"
	recs, err := ParseRecords(strings.NewReader(text), "mem", FieldColumns)
	require.NoError(t, err)
	assert.Equal(t, FieldColumns|AreaMagnitudeColumn, recs.Columns)
	assert.Equal(t, 2, recs.Len())
	assert.Equal(t, []float64{-2.5, 400}, recs.Pressure)
	assert.Equal(t, []float64{3, 1}, recs.AreaMagnitude)
	assert.Equal(t, []r3.Vec{{Z: 3}, {X: 1}}, recs.Area)
	assert.Equal(t, []r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, recs.Position)

	recs, err = ParseRecords(strings.NewReader(combined), "mem", GeometryFileColumns)
	require.NoError(t, err)
	assert.Nil(t, recs.AreaMagnitude)
	assert.Equal(t, 4, recs.Len())
}

func TestParseRecordsSchema(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		column string
		row    int
	}{
		{"empty", "", "", 0},
		{"missing pressure", "X (m),Y (m),Z (m)\n1,2,3\n", ColumnPressure, 0},
		{"missing magnitude", strings.SplitN(combined, "\n", 2)[0] + "\n", ColumnAreaMagnitude, 0},
		{"unparseable", strings.Replace(combined, "-0.1,0,0", "-0.1,zero,0", 1), ColumnY, 3},
		{"short row", combined + "1,2\n", "", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			required := FieldColumns
			if tt.name == "missing magnitude" {
				required = PressureFileColumns
			}
			_, err := ParseRecords(strings.NewReader(tt.text), "mem.csv", required)
			var serr *SchemaError
			require.True(t, errors.As(err, &serr), "%v", err)
			assert.Equal(t, "mem.csv", serr.Path)
			assert.Equal(t, tt.column, serr.Column)
			assert.Equal(t, tt.row, serr.Row)
		})
	}
}

func TestLoadField(t *testing.T) {
	path := writeFile(t, "M1p_M1p_12.5.csv.z", gzipped(t, combined))
	f, err := LoadField(path, unitMirror(t))
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())
	mean, err := f.MirrorMean()
	require.NoError(t, err)
	assert.Equal(t, 1.0, mean)

	withMagnitude := strings.Replace(combined, "Z (m)\n", "Z (m),Area: Magnitude (m^2)\n", 1)
	withMagnitude = strings.ReplaceAll(withMagnitude, ",0\n", ",0,0.25\n")
	f, err = LoadField(writeFile(t, "ok.csv", []byte(withMagnitude)), unitMirror(t))
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())

	mismatch := strings.Replace(withMagnitude, "0.1,0,0,0.25", "0.1,0,0,0.26", 1)
	_, err = LoadField(writeFile(t, "bad.csv", []byte(mismatch)), unitMirror(t))
	var aerr *pressure.AreaMismatchError
	require.True(t, errors.As(err, &aerr), "%v", err)
	assert.Equal(t, 0, aerr.Index)

	// The default mirror has no segment near the origin
	_, err = LoadField(path, geometry.M1())
	var perr *pressure.PartitionError
	assert.True(t, errors.As(err, &perr))
	_, err = LoadField(path, geometry.M1(), pressure.WithPartitionCheck(false))
	assert.NoError(t, err)
}

func TestLoadSplitField(t *testing.T) {
	pressureCSV := "Area: Magnitude (m^2),Pressure (Pa),X (m),Y (m),Z (m)\n" +
		"0.3,3,0,0,0\n" +
		"0.1,1,0,0,0\n" +
		"0.4,4,0,0,0\n" +
		"0.2,2,0,0,0\n"
	geometryCSV := "Area in TCS[i] (m^2),Area in TCS[j] (m^2),Area in TCS[k] (m^2),X (m),Y (m),Z (m)\n" +
		"0,0,0.2,0.2,0,0\n" +
		"0,0,0.4,0.4,0,0\n" +
		"0,0,0.1,0.1,0,0\n" +
		"0,0,0.3,0.3,0,0\n"
	pp := writeFile(t, "M1p.csv.gz", gzipped(t, pressureCSV))
	gp := writeFile(t, "M1.csv", []byte(geometryCSV))

	f, err := LoadSplitField(pp, gp, unitMirror(t))
	require.NoError(t, err)
	require.Equal(t, 4, f.Len())
	for i := 0; i < f.Len(); i++ {
		s := f.Sample(i)
		// pressure is ten times the area in both files
		assert.InDelta(t, 10*s.Area.Z, s.Pressure, 1e-12)
		assert.Equal(t, s.Area.Z, s.Position.X)
	}

	short := writeFile(t, "short.csv", []byte(strings.Join(strings.SplitAfter(geometryCSV, "\n")[:3], "")))
	_, err = LoadSplitField(pp, short, unitMirror(t))
	var lerr *pressure.LengthError
	assert.True(t, errors.As(err, &lerr))

	off := strings.Replace(pressureCSV, "0.4,4", "0.41,4", 1)
	_, err = LoadSplitField(writeFile(t, "off.csv", []byte(off)), gp, unitMirror(t))
	var aerr *pressure.AreaMismatchError
	assert.True(t, errors.As(err, &aerr))
}

func TestLoadMount(t *testing.T) {
	path := writeFile(t, "mount.csv.gz", gzipped(t, combined))
	m, err := LoadMount(path)
	require.NoError(t, err)
	assert.Equal(t, "mount.csv.gz", m.Name)
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, 1.0, m.TotalArea())

	_, err = LoadMount(writeFile(t, "empty.csv", []byte(strings.SplitN(combined, "\n", 2)[0]+"\n")))
	var eerr *pressure.EmptySelectionError
	assert.True(t, errors.As(err, &eerr))
}

func TestSnapshotTime(t *testing.T) {
	tests := []struct {
		path string
		want float64
	}{
		{"/cases/zen30az000_OS7/M1p_M1p_512.5.csv.z", 512.5},
		{"M2p_M2p_400.000000.csv.bz2", 400},
		{"M1p_M1p_3.csv", 3},
	}
	for _, tt := range tests {
		got, err := SnapshotTime(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	_, err := SnapshotTime("M1p.csv.z")
	assert.Error(t, err)
	_, err = SnapshotTime("M1p_M1p_final.csv.z")
	assert.Error(t, err)
}

func TestReadPoints(t *testing.T) {
	csvPath := writeFile(t, "nodes.csv.gz", gzipped(t, "x,y,z,label\n0.1,0,0,a\n5,5,5,b\n"))
	pts, err := ReadPoints(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{X: 0.1}, {X: 5, Y: 5, Z: 5}}, pts)

	txtPath := writeFile(t, "nodes.txt", []byte("0.1 0 0 7\n-0.1 0 0 8\n"))
	pts, err = ReadPoints(txtPath)
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{X: 0.1}, {X: -0.1}}, pts)

	bad := writeFile(t, "bad.csv", []byte("x,y,z\n1,2,3\n1,two,3\n"))
	_, err = ReadPoints(bad)
	var serr *SchemaError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 3, serr.Row)
	assert.Equal(t, "y", serr.Column)

	badTxt := writeFile(t, "bad.txt", []byte("1 2 3\n1 two 3\n"))
	_, err = ReadPoints(badTxt)
	serr = nil
	require.True(t, errors.As(err, &serr), "%v", err)
	assert.Equal(t, "xyz", serr.Column)

	_, err = ReadPoints(filepath.Join(t.TempDir(), "missing.txt"))
	var ioErr *IOError
	assert.True(t, errors.As(err, &ioErr), "%v", err)
}
