// Command atlasdump runs a scene script through a glyph atlas and writes the
// resulting atlas texture, a vertex listing and a preview rendering.
//
// Usage:
//
//	atlasdump -script scene.txt -atlas atlas.png -preview preview.png
//
// Font statements accept file paths, relative to the script, or one of the
// embedded Go fonts: go:regular, go:bold, go:italic, go:mono.
// Without -script a built-in scene is used.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphatlas"
	"github.com/gogpu/glyphatlas/internal/script"
)

const defaultScene = `
font "go:regular"
font "go:bold"
text "glyphatlas" at 16 16 size 48 font 1 color #1f6feb
text "The quick brown fox jumps over the lazy dog." at 16 80 size 20 bounds 300 200
text "clipped to a box" at 16 180 size 32 bounds 150 24 color #d73a49
update
`

var embedded = map[string][]byte{
	"go:regular": goregular.TTF,
	"go:bold":    gobold.TTF,
	"go:italic":  goitalic.TTF,
	"go:mono":    gomono.TTF,
}

func main() {
	var (
		scriptPath  = flag.String("script", "", "scene script (default: built-in scene)")
		atlasOut    = flag.String("atlas", "atlas.png", "atlas texture output file")
		previewOut  = flag.String("preview", "", "preview rendering output file")
		previewSize = flag.String("preview-size", "480x240", "preview size as WxH")
		verticesOut = flag.String("vertices", "", "vertex listing output file, - for stdout")
		initial     = flag.Int("initial", 256, "initial atlas side")
		maxSide     = flag.Int("max", 4096, "maximum atlas side")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		glyphatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	src, baseDir, err := readScene(*scriptPath)
	if err != nil {
		log.Fatalf("Failed to read scene: %v", err)
	}
	scene, err := script.ParseString(src)
	if err != nil {
		log.Fatalf("Failed to parse scene: %v", err)
	}

	c, err := glyphatlas.NewEmpty(
		glyphatlas.WithInitialTextureSize(*initial, *initial),
		glyphatlas.WithMaxTextureSize(*maxSide),
	)
	if err != nil {
		log.Fatalf("Failed to create atlas: %v", err)
	}

	outcomes, err := scene.Run(c, fontLoader(baseDir))
	if err != nil {
		log.Fatalf("Failed to run scene: %v", err)
	}

	if err := writePNG(*atlasOut, c.TextureImage()); err != nil {
		log.Fatalf("Failed to save atlas: %v", err)
	}
	if *verticesOut != "" {
		if err := writeVertices(*verticesOut, c); err != nil {
			log.Fatalf("Failed to write vertices: %v", err)
		}
	}
	if *previewOut != "" {
		var w, h int
		if _, err := fmt.Sscanf(*previewSize, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
			log.Fatalf("Invalid -preview-size %q", *previewSize)
		}
		if err := writePNG(*previewOut, renderPreview(c, w, h)); err != nil {
			log.Fatalf("Failed to save preview: %v", err)
		}
	}

	w, h := c.TextureDimensions()
	stats := c.Stats()
	log.Printf("Atlas saved to %s (%dx%d, %d glyphs, %.0f%% used), updates: %v, vertices: %d\n",
		*atlasOut, w, h, stats.PackedGlyphs, stats.AtlasUtilization*100, outcomes, stats.Vertices)
}

// readScene returns the scene source and the directory font paths are
// relative to.
func readScene(path string) (string, string, error) {
	if path == "" {
		return defaultScene, ".", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), filepath.Dir(path), nil
}

func fontLoader(baseDir string) script.Loader {
	return func(path string) ([]byte, error) {
		if data, ok := embedded[path]; ok {
			return data, nil
		}
		if strings.HasPrefix(path, "go:") {
			return nil, fmt.Errorf("unknown embedded font %q", path)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return os.ReadFile(path)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeVertices(path string, c *glyphatlas.Cache) (err error) {
	var out io.Writer = os.Stdout
	if path != "-" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}

	bw := bufio.NewWriter(out)
	c.ViewVertices(func(vs []glyphatlas.Vertex) {
		for i, v := range vs {
			fmt.Fprintf(bw, "%d screen=(%g,%g)-(%g,%g) uv=(%.5f,%.5f)-(%.5f,%.5f) color=(%.3g,%.3g,%.3g,%.3g)\n",
				i, v.Min.X, v.Min.Y, v.Max.X, v.Max.Y,
				v.UVMin.X, v.UVMin.Y, v.UVMax.X, v.UVMax.Y,
				v.Color.R, v.Color.G, v.Color.B, v.Color.A)
		}
	})
	return bw.Flush()
}

// renderPreview draws every vertex the way a GPU renderer would: the atlas
// region is stretched over the screen rectangle and used as the coverage
// of the vertex color.
func renderPreview(c *glyphatlas.Cache, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)

	tex := c.TextureImage()
	tw, th := float32(tex.Bounds().Dx()), float32(tex.Bounds().Dy())

	for _, v := range c.Vertices() {
		dr := image.Rect(round(v.Min.X), round(v.Min.Y), round(v.Max.X), round(v.Max.Y))
		sr := image.Rect(round(v.UVMin.X*tw), round(v.UVMin.Y*th), round(v.UVMax.X*tw), round(v.UVMax.Y*th))
		if dr.Empty() || sr.Empty() {
			continue
		}

		mask := image.NewAlpha(dr)
		xdraw.ApproxBiLinear.Scale(mask, dr, tex, sr, xdraw.Src, nil)

		col := color.NRGBA{
			R: uint8(v.Color.R*255 + 0.5),
			G: uint8(v.Color.G*255 + 0.5),
			B: uint8(v.Color.B*255 + 0.5),
			A: uint8(v.Color.A*255 + 0.5),
		}
		xdraw.DrawMask(dst, dr, image.NewUniform(col), image.Point{}, mask, dr.Min, xdraw.Over)
	}
	return dst
}

func round(f float32) int {
	return int(math.Floor(float64(f) + 0.5))
}
