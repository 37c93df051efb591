package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/elastosim/internal/analysis"
	"github.com/san-kum/elastosim/internal/elastic"
	"github.com/san-kum/elastosim/internal/relax"
	"gonum.org/v1/gonum/mat"
)

// Float is a float64 whose JSON form carries NaN and ±Inf as the strings
// "NaN", "+Inf" and "-Inf". Finite values are plain JSON numbers.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("bad number %q: %w", s, err)
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func Floats(xs []float64) []Float {
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

// FloatMap converts metric values for encoding.
func FloatMap(m map[string]float64) map[string]Float {
	out := make(map[string]Float, len(m))
	for k, v := range m {
		out[k] = Float(v)
	}
	return out
}

// Float64Map reverses FloatMap.
func Float64Map(m map[string]Float) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(v)
	}
	return out
}

type Summary struct {
	Iterations int   `json:"iterations"`
	First      Float `json:"first"`
	Final      Float `json:"final"`
	Min        Float `json:"min"`
	Max        Float `json:"max"`
	Ratio      Float `json:"ratio"`
}

func newSummary(s analysis.TraceSummary) Summary {
	return Summary{
		Iterations: s.Iterations,
		First:      Float(s.First),
		Final:      Float(s.Final),
		Min:        Float(s.Min),
		Max:        Float(s.Max),
		Ratio:      Float(s.Ratio),
	}
}

type ExportData struct {
	Name       string           `json:"name"`
	GridSize   int              `json:"grid_size"`
	Dx         float64          `json:"dx"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
	X          []float64        `json:"x"`
	Y          []float64        `json:"y"`
	Ux         [][]Float        `json:"ux"`
	Uy         [][]Float        `json:"uy"`
	Sxx        [][]Float        `json:"sxx"`
	Syy        [][]Float        `json:"syy"`
	Sxy        [][]Float        `json:"sxy"`
	Syx        [][]Float        `json:"syx"`
	VonMises   [][]Float        `json:"von_mises"`
	Trace      []Float          `json:"trace"`
	Summary    Summary          `json:"summary"`
	Metrics    map[string]Float `json:"metrics"`
}

func rows(f *mat.Dense) [][]Float {
	r, _ := f.Dims()
	out := make([][]Float, r)
	for i := range out {
		out[i] = Floats(f.RawRowView(i))
	}
	return out
}

// NewExportData flattens a result into nested slices. nu is the Poisson
// ratio used for the von Mises field.
func NewExportData(name string, res *relax.Result, nu float64) ExportData {
	return ExportData{
		Name:       name,
		GridSize:   res.Geometry.N,
		Dx:         res.Geometry.Dx,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		X:          res.X,
		Y:          res.Y,
		Ux:         rows(res.Ux),
		Uy:         rows(res.Uy),
		Sxx:        rows(res.Sxx),
		Syy:        rows(res.Syy),
		Sxy:        rows(res.Sxy),
		Syx:        rows(res.Syx),
		VonMises:   rows(elastic.VonMises(res.Stress(), nu)),
		Trace:      Floats(res.Trace),
		Summary:    newSummary(analysis.Summarize(res.Trace)),
		Metrics:    FloatMap(res.Metrics),
	}
}

func WriteJSON(w io.Writer, name string, res *relax.Result, nu float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(name, res, nu))
}

func ExportJSON(path, name string, res *relax.Result, nu float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, name, res, nu); err != nil {
		return err
	}
	return file.Close()
}
