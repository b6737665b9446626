package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"PencilBoard/internal/state"
)

func sampleSurfaces() []state.Surface {
	return []state.Surface{
		{
			ID: "a", X: 20, Y: 20, Width: 200, Height: 100, Border: true,
			History: state.StrokeHistory{{
				Width: 4, Color: "red", StepType: state.StepBezier,
				Points: []state.Point{{X: 10, Y: 10}, {X: 40, Y: 20}, {X: 80, Y: 40}, {X: 120, Y: 50}, {X: 160, Y: 80}},
			}},
		},
		{
			ID: "b", X: 20, Y: 140, Width: 100, Height: 60,
			History: state.StrokeHistory{{
				Width: 2, Color: "#0000ff", StepType: state.StepLine,
				Points: []state.Point{{X: 0, Y: 0}, {X: 50, Y: 30}},
			}},
		},
	}
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := PDF(&buf, sampleSurfaces(), Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out, []byte(" c\n")) {
		t.Error("no cubic curve operator in the page content")
	}
}

func TestPlace(t *testing.T) {
	var surfaces []state.Surface
	for i := range 4 {
		surfaces = append(surfaces, state.Surface{X: 20, Y: 20 + float64(i)*520, Width: 400, Height: 500})
	}
	// 0.25 mm per pixel: 500 px tall surfaces are 125 mm, two per A4 page
	got := place(surfaces, 0.25)
	want := []placement{
		{page: 0, x: 5, y: 5},
		{page: 0, x: 5, y: 135},
		{page: 1, x: 5, y: 0},
		{page: 1, x: 5, y: 130},
	}
	if d := cmp.Diff(want, got, cmp.AllowUnexported(placement{})); d != "" {
		t.Errorf("placement mismatch (-want +got):\n%s", d)
	}

	var buf bytes.Buffer
	if err := PDF(&buf, surfaces, Options{PageWidth: 840}); err != nil {
		t.Fatal(err)
	}
}

func TestPNGDir(t *testing.T) {
	dir := t.TempDir()
	names, err := PNGDir(dir, sampleSurfaces(), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}
	if d := cmp.Diff(want, names); d != "" {
		t.Errorf("files mismatch (-want +got):\n%s", d)
	}

	f, err := os.Open(want[1])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("bounds = %v, want 100x60", b)
	}
	// a point on the line from (0,0) to (50,30)
	if _, _, bl, a := img.At(25, 15).RGBA(); a == 0 || bl == 0 {
		t.Error("blue line missing")
	}
}

func TestRaster_ReportsBadSegments(t *testing.T) {
	s := state.Surface{ID: "x", Width: 10, Height: 10, History: state.StrokeHistory{
		{Width: 1, Color: "black", StepType: "Q", Points: []state.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}},
	}}
	// the default bezier interpolation ignores step types
	if _, err := Raster(s, nil); err != nil {
		t.Errorf("Raster = %v", err)
	}
}
