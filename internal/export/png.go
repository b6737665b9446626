package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"PencilBoard/internal/canvas"
	"PencilBoard/internal/pen"
	"PencilBoard/internal/state"
)

// Raster draws a surface's strokes on a new raster of the surface's size.
func Raster(s state.Surface, r *pen.Renderer) (*canvas.Raster, error) {
	if r == nil {
		r = pen.NewRenderer()
	}
	rs := canvas.NewRaster(int(s.Width), int(s.Height))
	if err := r.RenderHistory(rs, s.History); err != nil {
		return rs, fmt.Errorf("draw %s: %w", s.ID, err)
	}
	return rs, nil
}

// PNG writes one surface as a PNG image.
func PNG(w io.Writer, s state.Surface, r *pen.Renderer) error {
	rs, err := Raster(s, r)
	if err != nil {
		return err
	}
	return rs.EncodePNG(w)
}

// PNGDir writes every surface to dir as <id>.png and returns the file
// names written.
func PNGDir(dir string, surfaces []state.Surface, r *pen.Renderer) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export png: %w", err)
	}
	var (
		names []string
		errs  []error
	)
	for _, s := range surfaces {
		path := filepath.Join(dir, s.ID+".png")
		err := writeFile(path, func(w io.Writer) error { return PNG(w, s, r) })
		if err != nil {
			errs = append(errs, err)
			continue
		}
		names = append(names, path)
	}
	return names, errors.Join(errs...)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
