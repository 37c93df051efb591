package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/elastosim/internal/grid"
	"github.com/san-kum/elastosim/internal/relax"
	"gonum.org/v1/gonum/mat"
)

var fieldHeader = []string{"i", "j", "x", "y", "ux", "uy", "sxx", "syy", "sxy", "syx"}

// sanitize maps NaN to +Inf for the SQLite columns, which store NaN as
// NULL. The fields CSV keeps NaN and Inf verbatim.
func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFieldsCSV writes one row per grid point: indices, coordinates,
// displacement and stress. Non-finite values are written as NaN, +Inf or
// -Inf and read back unchanged.
func WriteFieldsCSV(w io.Writer, res *relax.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fieldHeader); err != nil {
		return err
	}

	n := res.Geometry.N
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			row := []string{
				strconv.Itoa(i),
				strconv.Itoa(j),
				formatFloat(res.X[j]),
				formatFloat(res.Y[i]),
				formatFloat(res.Ux.At(i, j)),
				formatFloat(res.Uy.At(i, j)),
				formatFloat(res.Sxx.At(i, j)),
				formatFloat(res.Syy.At(i, j)),
				formatFloat(res.Sxy.At(i, j)),
				formatFloat(res.Syx.At(i, j)),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFields(path string, res *relax.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteFieldsCSV(f, res); err != nil {
		return fmt.Errorf("failed to write fields: %w", err)
	}
	return f.Close()
}

// ReadFieldsCSV parses a file written by WriteFieldsCSV for an n x n grid.
func ReadFieldsCSV(r io.Reader, n int) (*relax.Result, error) {
	geom, err := grid.NewGeometry(n)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(fieldHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	if len(records) != n*n+1 {
		return nil, fmt.Errorf("expected %d field rows, got %d: %w", n*n, len(records)-1, grid.ErrShape)
	}

	x, y := geom.Coords()
	res := &relax.Result{Geometry: geom, X: x, Y: y}
	targets := []**mat.Dense{&res.Ux, &res.Uy, &res.Sxx, &res.Syy, &res.Sxy, &res.Syx}
	for _, t := range targets {
		*t = geom.New()
	}

	for _, rec := range records[1:] {
		i, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("bad row index %q: %w", rec[0], err)
		}
		j, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("bad column index %q: %w", rec[1], err)
		}
		if i < 0 || i >= n || j < 0 || j >= n {
			return nil, fmt.Errorf("point (%d, %d) outside grid: %w", i, j, grid.ErrShape)
		}
		for k, t := range targets {
			v, err := strconv.ParseFloat(rec[4+k], 64)
			if err != nil {
				return nil, fmt.Errorf("bad %s value %q: %w", fieldHeader[4+k], rec[4+k], err)
			}
			(*t).Set(i, j, v)
		}
	}
	return res, nil
}

func readFields(path string, n int) (*relax.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFieldsCSV(f, n)
}
