package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Column names of the CFD exports. Area columns may carry a " (m^2)" unit
// suffix.
const (
	ColumnPressure      = "Pressure (Pa)"
	ColumnAreaI         = "Area in TCS[i]"
	ColumnAreaJ         = "Area in TCS[j]"
	ColumnAreaK         = "Area in TCS[k]"
	ColumnAreaMagnitude = "Area: Magnitude"
	ColumnX             = "X (m)"
	ColumnY             = "Y (m)"
	ColumnZ             = "Z (m)"

	areaUnit = " (m^2)"
)

// Columns is a set of column groups
type Columns uint8

const (
	PressureColumn Columns = 1 << iota
	AreaVectorColumns
	AreaMagnitudeColumn
	PositionColumns

	// FieldColumns are required to build a field or a mount
	FieldColumns = PressureColumn | AreaVectorColumns | PositionColumns
	// PressureFileColumns are required from the pressure half of a split export
	PressureFileColumns = PressureColumn | AreaMagnitudeColumn
	// GeometryFileColumns are required from the geometry half of a split export
	GeometryFileColumns = AreaVectorColumns | PositionColumns
)

func (c Columns) names() []string {
	var names []string
	if c&PressureColumn != 0 {
		names = append(names, ColumnPressure)
	}
	if c&AreaVectorColumns != 0 {
		names = append(names, ColumnAreaI, ColumnAreaJ, ColumnAreaK)
	}
	if c&AreaMagnitudeColumn != 0 {
		names = append(names, ColumnAreaMagnitude)
	}
	if c&PositionColumns != 0 {
		names = append(names, ColumnX, ColumnY, ColumnZ)
	}
	return names
}

// Records is the columnar content of one export. Slices of column groups
// absent from the file are nil.
type Records struct {
	Columns Columns

	Pressure      []float64 // Pa
	Area          []r3.Vec  // m²
	AreaMagnitude []float64 // m²
	Position      []r3.Vec  // m
}

// Len returns the number of rows
func (r *Records) Len() int {
	switch {
	case r.Pressure != nil:
		return len(r.Pressure)
	case r.Area != nil:
		return len(r.Area)
	case r.AreaMagnitude != nil:
		return len(r.AreaMagnitude)
	}
	return len(r.Position)
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		h = strings.TrimSuffix(h, areaUnit)
		idx[h] = i
	}
	return idx
}

// ParseRecords reads a CSV export. Every group of required must be present;
// the other groups are read when present. path only labels errors.
func ParseRecords(r io.Reader, path string, required Columns) (*Records, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Path: path, Reason: "no header"}
	}
	if err != nil {
		return nil, readError(path, err)
	}
	idx := headerIndex(header)

	for _, name := range required.names() {
		if _, ok := idx[name]; !ok {
			return nil, &SchemaError{Path: path, Column: name, Reason: "missing"}
		}
	}
	var present Columns
	for _, c := range []Columns{PressureColumn, AreaVectorColumns, AreaMagnitudeColumn, PositionColumns} {
		ok := true
		for _, name := range c.names() {
			if _, found := idx[name]; !found {
				ok = false
			}
		}
		if ok {
			present |= c
		}
	}

	recs := &Records{Columns: present}
	col := func(name string, row int, rec []string) (float64, error) {
		s := strings.TrimSpace(rec[idx[name]])
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &SchemaError{Path: path, Column: name, Row: row, Reason: fmt.Sprintf("parsing %q", s)}
		}
		return v, nil
	}
	vec := func(names [3]string, row int, rec []string) (v r3.Vec, err error) {
		if v.X, err = col(names[0], row, rec); err != nil {
			return v, err
		}
		if v.Y, err = col(names[1], row, rec); err != nil {
			return v, err
		}
		v.Z, err = col(names[2], row, rec)
		return v, err
	}

	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(path, err)
		}
		if present&PressureColumn != 0 {
			p, err := col(ColumnPressure, row, rec)
			if err != nil {
				return nil, err
			}
			recs.Pressure = append(recs.Pressure, p)
		}
		if present&AreaVectorColumns != 0 {
			a, err := vec([3]string{ColumnAreaI, ColumnAreaJ, ColumnAreaK}, row, rec)
			if err != nil {
				return nil, err
			}
			recs.Area = append(recs.Area, a)
		}
		if present&AreaMagnitudeColumn != 0 {
			a, err := col(ColumnAreaMagnitude, row, rec)
			if err != nil {
				return nil, err
			}
			recs.AreaMagnitude = append(recs.AreaMagnitude, a)
		}
		if present&PositionColumns != 0 {
			p, err := vec([3]string{ColumnX, ColumnY, ColumnZ}, row, rec)
			if err != nil {
				return nil, err
			}
			recs.Position = append(recs.Position, p)
		}
	}
	return recs, nil
}

// readError keeps decoder errors and turns malformed CSV into a schema error
func readError(path string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &SchemaError{Path: path, Row: perr.Line, Reason: perr.Err.Error()}
	}
	var derr *DecompressionError
	var ierr *IOError
	if errors.As(err, &derr) || errors.As(err, &ierr) {
		return err
	}
	return &IOError{Path: path, Err: err}
}
