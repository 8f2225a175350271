package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/phil-mansfield/table"
	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/log"
	"github.com/windloads/segpress/internal/pressure"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadRecords opens, decompresses and parses path
func ReadRecords(path string, required Columns) (*Records, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseRecords(rc, path, required)
}

// LoadField reads a combined export of one mirror. When the export also
// carries area magnitudes they are cross-checked against the area vectors.
func LoadField(path string, mirror *geometry.Mirror, opts ...pressure.Option) (*pressure.Field, error) {
	start := time.Now()
	recs, err := ReadRecords(path, FieldColumns)
	if err != nil {
		return nil, err
	}
	if recs.Columns&AreaMagnitudeColumn != 0 {
		opts = append([]pressure.Option{pressure.WithAreaMagnitude(recs.AreaMagnitude)}, opts...)
	}
	f, err := pressure.NewField(mirror, recs.Pressure, recs.Area, recs.Position, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugw("loaded field", "path", path, "mirror", mirror.Name(), "samples", f.Len(), "elapsed", time.Since(start))
	return f, nil
}

// LoadSplitField reads an export split in a pressure file, carrying the area
// magnitudes, and a geometry file, carrying the area vectors and positions.
// Both are ordered by ascending area before the area magnitudes are
// cross-checked against the norms of the area vectors.
func LoadSplitField(pressurePath, geometryPath string, mirror *geometry.Mirror, opts ...pressure.Option) (*pressure.Field, error) {
	start := time.Now()
	p, err := ReadRecords(pressurePath, PressureFileColumns)
	if err != nil {
		return nil, err
	}
	g, err := ReadRecords(geometryPath, GeometryFileColumns)
	if err != nil {
		return nil, err
	}
	if p.Len() != g.Len() {
		return nil, fmt.Errorf("%s and %s: %w", pressurePath, geometryPath,
			&pressure.LengthError{What: "geometry rows", Got: g.Len(), Len: p.Len()})
	}

	pi := byArea(p.AreaMagnitude)
	norms := make([]float64, g.Len())
	for i, a := range g.Area {
		norms[i] = r3.Norm(a)
	}
	gi := byArea(norms)

	n := p.Len()
	var (
		ps   = make([]float64, n)
		mag  = make([]float64, n)
		area = make([]r3.Vec, n)
		xyz  = make([]r3.Vec, n)
	)
	for k := 0; k < n; k++ {
		ps[k] = p.Pressure[pi[k]]
		mag[k] = p.AreaMagnitude[pi[k]]
		area[k] = g.Area[gi[k]]
		xyz[k] = g.Position[gi[k]]
	}

	opts = append([]pressure.Option{pressure.WithAreaMagnitude(mag)}, opts...)
	f, err := pressure.NewField(mirror, ps, area, xyz, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s and %s: %w", pressurePath, geometryPath, err)
	}
	log.Debugw("loaded split field", "pressure", pressurePath, "geometry", geometryPath,
		"mirror", mirror.Name(), "samples", f.Len(), "elapsed", time.Since(start))
	return f, nil
}

// byArea returns the permutation sorting a by ascending value
func byArea(a []float64) []int {
	idx := make([]int, len(a))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return a[idx[i]] < a[idx[j]] })
	return idx
}

// LoadMount reads the pressure export of the telescope mount
func LoadMount(path string) (*pressure.Mount, error) {
	recs, err := ReadRecords(path, FieldColumns)
	if err != nil {
		return nil, err
	}
	m, err := pressure.NewMount(filepath.Base(path), recs.Pressure, recs.Area, recs.Position)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// trimExt strips a compression extension then one more extension
func trimExt(name string) (stem, ext string) {
	for _, c := range []string{".gz", ".z", ".Z", ".bz2"} {
		if strings.HasSuffix(name, c) {
			name = strings.TrimSuffix(name, c)
			break
		}
	}
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// SnapshotTime parses the flow time (s) of a snapshot from its file name,
// the text after the last underscore, as in M1p_M1p_512.5.csv.z
func SnapshotTime(path string) (float64, error) {
	stem, _ := trimExt(filepath.Base(path))
	i := strings.LastIndexByte(stem, '_')
	if i < 0 {
		return 0, fmt.Errorf("%s: no snapshot time in file name", path)
	}
	t, err := strconv.ParseFloat(stem[i+1:], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: snapshot time: %w", path, err)
	}
	return t, nil
}

// ReadPoints reads (x, y, z) coordinates from the first three columns of a
// companion file. CSV files, optionally compressed, may start with a header
// row; any other file is read as whitespace separated columns.
func ReadPoints(path string) ([]r3.Vec, error) {
	if _, ext := trimExt(filepath.Base(path)); ext == ".csv" {
		return readCSVPoints(path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	cols, err := table.ReadTable(path, []int{0, 1, 2}, nil)
	if err != nil {
		return nil, &SchemaError{Path: path, Column: "xyz", Reason: err.Error()}
	}
	pts := make([]r3.Vec, len(cols[0]))
	for i := range pts {
		pts[i] = r3.Vec{X: cols[0][i], Y: cols[1][i], Z: cols[2][i]}
	}
	return pts, nil
}

func readCSVPoints(path string) ([]r3.Vec, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	var pts []r3.Vec
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(path, err)
		}
		if len(rec) < 3 {
			return nil, &SchemaError{Path: path, Row: row, Column: "z", Reason: fmt.Sprintf("%d columns", len(rec))}
		}
		var v [3]float64
		k := 0
		for ; k < 3; k++ {
			if v[k], err = strconv.ParseFloat(strings.TrimSpace(rec[k]), 64); err != nil {
				break
			}
		}
		if err != nil {
			if row == 1 {
				continue // header
			}
			return nil, &SchemaError{Path: path, Row: row, Column: "xyz"[k : k+1], Reason: err.Error()}
		}
		pts = append(pts, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	}
	return pts, nil
}
