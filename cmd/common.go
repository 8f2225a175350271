package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/windloads/segpress/internal/geometry"
	"github.com/windloads/segpress/internal/ingest"
	"github.com/windloads/segpress/internal/pressure"
)

// fieldFlags are shared by the commands that load one mirror snapshot
type fieldFlags struct {
	mirror   string
	geometry string
}

func (f *fieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mirror, "mirror", "m", "M1", "Mirror of the snapshot (M1 or M2)")
	cmd.Flags().StringVarP(&f.geometry, "geometry", "g", "", "Geometry file of a split export; FILE then holds pressure and area magnitude")
}

func (f *fieldFlags) newMirror() (*geometry.Mirror, error) {
	t, err := geometry.ParseMirrorType(f.mirror)
	if err != nil {
		return nil, err
	}
	return cfg.NewMirror(t)
}

// load reads path as a combined export, or as the pressure half of a split
// export when a geometry file is given
func (f *fieldFlags) load(path string) (*pressure.Field, error) {
	m, err := f.newMirror()
	if err != nil {
		return nil, err
	}
	if f.geometry != "" {
		return ingest.LoadSplitField(path, f.geometry, m, cfg.FieldOptions()...)
	}
	return ingest.LoadField(path, m, cfg.FieldOptions()...)
}

// output returns stdout, or the created file when name is set
func output(cmd *cobra.Command, name string) (io.Writer, func() error, error) {
	if name == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return f, f.Close, nil
}

// closeInto runs closeFn and keeps its error unless *err is already set
func closeInto(err *error, closeFn func() error) {
	if cerr := closeFn(); *err == nil {
		*err = cerr
	}
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "     %s\n", title)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(w)
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")
}

func segmentLabels() []string {
	labels := make([]string, geometry.NumSegments)
	for i := range labels {
		labels[i] = fmt.Sprintf("S%d", i+1)
	}
	return labels
}
