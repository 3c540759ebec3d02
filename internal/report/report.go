// Package report writes run results and diagnostics.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/glcompute/internal/compute"
	"github.com/san-kum/glcompute/internal/config"
)

// WriteVersion prints the active device version line. Only the OpenGL
// device reports an "OpenGL version".
func WriteVersion(w io.Writer, device, version string) error {
	label := device
	if device == config.BackendOpenGL {
		label = "OpenGL"
	}
	_, err := fmt.Fprintf(w, "%s version: %s\n", label, version)
	return err
}

// WriteValues prints one "data[i] = v" line per element.
func WriteValues(w io.Writer, values []float32) error {
	for i, v := range values {
		if _, err := fmt.Fprintf(w, "data[%d] = %f\n", i, v); err != nil {
			return err
		}
	}
	return nil
}

type jsonResult struct {
	Version string    `json:"version"`
	Device  string    `json:"device"`
	Kernel  string    `json:"kernel"`
	Data    []float32 `json:"data"`
}

// WriteJSON prints the whole result as a single JSON object.
func WriteJSON(w io.Writer, r *compute.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonResult{
		Version: r.Version,
		Device:  r.Device,
		Kernel:  r.Kernel,
		Data:    r.Values,
	})
}

// WritePlot draws the values as an ascii line graph.
func WritePlot(w io.Writer, values []float32) error {
	if len(values) == 0 {
		return nil
	}
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(len(data)*4),
		asciigraph.Caption("data[i] by index"),
	)
	_, err := fmt.Fprintf(w, "%s\n", graph)
	return err
}

// Row is one label/value pair of a table.
type Row struct {
	Label string
	Value string
}

// WriteTable renders a titled two-column table.
func WriteTable(w io.Writer, title string, rows []Row) error {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(MetricLabel.Render(r.Label))
		b.WriteString(MetricValue.Render(r.Value))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteVerify summarizes a verification run.
func WriteVerify(w io.Writer, elements int, mismatches []compute.Mismatch) error {
	if len(mismatches) == 0 {
		_, err := fmt.Fprintf(w, "%s %d/%d elements match\n", StatusOK.Render("ok"), elements, elements)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %d/%d elements differ\n", StatusFail.Render("FAIL"), len(mismatches), elements); err != nil {
		return err
	}
	for _, m := range mismatches {
		if _, err := fmt.Fprintf(w, "  data[%d] = %f, want %f\n", m.Index, m.Got, m.Expected); err != nil {
			return err
		}
	}
	return nil
}

// WriteError prints a diagnostic. Shader errors carry the complete driver log.
func WriteError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, err)
}
