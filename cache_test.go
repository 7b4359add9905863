package glyphatlas

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/glyphatlas/layout"
	"github.com/gogpu/glyphatlas/text"
)

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()

	c, err := New(goregular.TTF, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func hiSection() Section {
	return Section{
		Text:     "Hi",
		Position: Pt(0, 0),
		Scale:    Pt(16, 16),
		Color:    White,
		Font:     0,
	}
}

func inUnitSquare(p Point) bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

func TestCache_Hi(t *testing.T) {
	c := newTestCache(t)

	c.Queue(hiSection())
	if kind := c.Update(); kind != layout.ActionDraw {
		t.Fatalf("Update() = %v, want Draw", kind)
	}

	vs := c.Vertices()
	if len(vs) != 2 {
		t.Fatalf("got %d vertices, want 2", len(vs))
	}
	for i, v := range vs {
		if !inUnitSquare(v.UVMin) || !inUnitSquare(v.UVMax) {
			t.Errorf("vertex %d: uv %v-%v outside [0,1]", i, v.UVMin, v.UVMax)
		}
		if !(v.Min.X < v.Max.X) || !(v.Min.Y < v.Max.Y) {
			t.Errorf("vertex %d: empty screen rect %v-%v", i, v.Min, v.Max)
		}
		// One 16px line at the origin.
		if v.Min.X < -2 || v.Max.X > 40 || v.Min.Y < -2 || v.Max.Y > 18 {
			t.Errorf("vertex %d: %v-%v outside the text line", i, v.Min, v.Max)
		}
		if v.Color != White {
			t.Errorf("vertex %d: color %v, want white", i, v.Color)
		}
	}
	if vs[0].Max.X > vs[1].Max.X {
		t.Errorf("'H' (%v) should come before 'i' (%v)", vs[0], vs[1])
	}

	// The texture holds the glyphs.
	pix, dirty := c.CopyTexture(nil)
	if !dirty {
		t.Error("texture should be dirty after the first update")
	}
	w, h := c.TextureDimensions()
	if len(pix) != w*h {
		t.Fatalf("texture has %d bytes, want %d", len(pix), w*h)
	}
	var covered int
	for _, a := range pix {
		if a > 0 {
			covered++
		}
	}
	if covered == 0 {
		t.Error("texture has no coverage")
	}
}

func TestCache_UVMatchesTexture(t *testing.T) {
	c := newTestCache(t)
	c.Queue(hiSection())
	c.Update()

	img := c.TextureImage()
	w, h := c.TextureDimensions()
	for i, v := range c.Vertices() {
		x0 := int(math.Round(float64(v.UVMin.X * float32(w))))
		y0 := int(math.Round(float64(v.UVMin.Y * float32(h))))
		x1 := int(math.Round(float64(v.UVMax.X * float32(w))))
		y1 := int(math.Round(float64(v.UVMax.Y * float32(h))))

		if x1-x0 != int(v.Max.X-v.Min.X) || y1-y0 != int(v.Max.Y-v.Min.Y) {
			t.Errorf("vertex %d: texture rect %dx%d, screen rect %vx%v", i, x1-x0, y1-y0, v.Max.X-v.Min.X, v.Max.Y-v.Min.Y)
		}

		var covered bool
		for y := y0; y < y1 && !covered; y++ {
			for x := x0; x < x1; x++ {
				if img.AlphaAt(x, y).A > 0 {
					covered = true
					break
				}
			}
		}
		if !covered {
			t.Errorf("vertex %d samples an empty atlas region", i)
		}
	}
}

func TestCache_BoundsClamp(t *testing.T) {
	c := newTestCache(t)

	// Find where 'H' lands unbounded, then bound the section through it.
	s := Section{Text: "H", Position: Pt(0, 0), Scale: Pt(40, 40), Color: White}
	c.Queue(s)
	c.Update()
	full := c.Vertices()
	if len(full) != 1 {
		t.Fatalf("got %d vertices, want 1", len(full))
	}
	g := full[0]
	mid := Pt((g.Min.X+g.Max.X)/2, (g.Min.Y+g.Max.Y)/2)

	s.Bounds = mid
	c.Queue(s)
	if kind := c.Update(); kind != layout.ActionDraw {
		t.Fatalf("Update() = %v, want Draw", kind)
	}
	clipped := c.Vertices()
	if len(clipped) != 1 {
		t.Fatalf("got %d vertices, want 1", len(clipped))
	}
	v := clipped[0]

	if v.Max != mid {
		t.Errorf("screen max = %v, want clamped to %v", v.Max, mid)
	}
	if v.Min != g.Min || v.UVMin != g.UVMin {
		t.Errorf("min corner moved: %v/%v, want %v/%v", v.Min, v.UVMin, g.Min, g.UVMin)
	}
	wantUW := (g.UVMax.X - g.UVMin.X) * (v.Max.X - v.Min.X) / (g.Max.X - g.Min.X)
	if !approxEqual(v.UVMax.X-v.UVMin.X, wantUW) {
		t.Errorf("uv width = %v, want %v", v.UVMax.X-v.UVMin.X, wantUW)
	}
	wantUH := (g.UVMax.Y - g.UVMin.Y) * (v.Max.Y - v.Min.Y) / (g.Max.Y - g.Min.Y)
	if !approxEqual(v.UVMax.Y-v.UVMin.Y, wantUH) {
		t.Errorf("uv height = %v, want %v", v.UVMax.Y-v.UVMin.Y, wantUH)
	}
}

func TestCache_BoundsDropsOutside(t *testing.T) {
	c := newTestCache(t)

	// The second line starts below the bounds.
	c.Queue(Section{Text: "ab\ncd", Scale: Pt(16, 16), Bounds: Pt(1000, 16), Color: White})
	c.Update()

	if got := len(c.Vertices()); got != 2 {
		t.Errorf("got %d vertices, want only the first line's 2", got)
	}
}

func TestCache_Overflow(t *testing.T) {
	c := newTestCache(t, WithInitialTextureSize(32, 32))

	alphabet := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	c.Queue(Section{Text: alphabet, Scale: Pt(24, 24), Color: White})

	if kind := c.Update(); kind != layout.ActionResize {
		t.Fatalf("first Update() = %v, want Resize", kind)
	}
	w, h := c.TextureDimensions()
	if w*h <= 32*32 || w < 32 || h < 32 {
		t.Errorf("atlas is %dx%d after resize, want larger than 32x32", w, h)
	}
	if n := len(c.Vertices()); n != 0 {
		t.Errorf("got %d vertices after resize, want 0", n)
	}

	// Same queue, retried.
	if kind := c.Update(); kind != layout.ActionDraw {
		t.Fatalf("second Update() = %v, want Draw", kind)
	}
	if n := len(c.Vertices()); n != len(alphabet) {
		t.Errorf("got %d vertices, want %d", n, len(alphabet))
	}

	stats := c.Stats()
	if stats.Resizes != 1 || stats.Updates != 2 || stats.RejectedUploads != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCache_ResizeKeepsVertices(t *testing.T) {
	c := newTestCache(t, WithInitialTextureSize(64, 64))

	c.Queue(hiSection())
	c.Update()
	before := c.Vertices()

	c.Queue(Section{Text: strings.Repeat("WMQ@#&%", 4) + "abcdefghijkl", Scale: Pt(32, 32), Color: White})
	if kind := c.Update(); kind != layout.ActionResize {
		t.Fatalf("Update() = %v, want Resize", kind)
	}
	after := c.Vertices()
	if len(after) != len(before) {
		t.Errorf("resize changed the vertex list: %d -> %d", len(before), len(after))
	}
}

func TestCache_MaxSizeDropsGlyphs(t *testing.T) {
	c := newTestCache(t, WithInitialTextureSize(32, 32), WithMaxTextureSize(32))

	c.Queue(Section{Text: "ABCDEFGHIJKLMNOPQRSTUVWXYZ", Scale: Pt(24, 24), Color: White})
	if kind := c.Update(); kind != layout.ActionDraw {
		t.Fatalf("Update() = %v, want Draw", kind)
	}
	if n := len(c.Vertices()); n == 0 || n >= 26 {
		t.Errorf("got %d vertices, want some but not all", n)
	}
	if w, h := c.TextureDimensions(); w != 32 || h != 32 {
		t.Errorf("atlas grew to %dx%d past its maximum", w, h)
	}
}

func TestCache_MaxSizeRepeatsAsRedraw(t *testing.T) {
	c := newTestCache(t, WithInitialTextureSize(32, 32), WithMaxTextureSize(32))
	s := Section{Text: "ABCDEFGHIJKLMNOPQRSTUVWXYZ", Scale: Pt(24, 24), Color: White}

	c.Queue(s)
	if kind := c.Update(); kind != layout.ActionDraw {
		t.Fatalf("Update() = %v, want Draw", kind)
	}
	c.CopyTexture(nil)
	drawn := c.Vertices()
	uploads := c.Stats().Uploads

	for i := 0; i < 3; i++ {
		c.Queue(s)
		if kind := c.Update(); kind != layout.ActionRedraw {
			t.Fatalf("repeat %d: Update() = %v, want Redraw", i, kind)
		}
		if _, dirty := c.CopyTexture(nil); dirty {
			t.Fatalf("repeat %d: atlas rewritten for an unchanged frame", i)
		}
	}

	stats := c.Stats()
	if stats.Uploads != uploads {
		t.Errorf("Uploads = %d after repeats, want %d", stats.Uploads, uploads)
	}
	if n := len(c.Vertices()); n != len(drawn) {
		t.Errorf("got %d vertices, want %d", n, len(drawn))
	}
}

func TestCache_RepackClearsPadding(t *testing.T) {
	c := newTestCache(t, WithInitialTextureSize(64, 64), WithMaxTextureSize(64), WithPadding(1))

	c.Queue(Section{Text: "ABCDEFGHIJKLMNOP", Scale: Pt(14, 14), Color: White})
	if kind := c.Update(); kind != layout.ActionDraw {
		t.Fatalf("first Update() = %v, want Draw", kind)
	}
	c.Queue(Section{Text: "WMQ@&%", Scale: Pt(24, 24), Color: White})
	if kind := c.Update(); kind != layout.ActionDraw {
		t.Fatalf("second Update() = %v, want Draw", kind)
	}
	if c.Stats().Clears == 0 {
		t.Fatal("second frame did not repack the atlas")
	}

	img := c.TextureImage()
	w, h := img.Rect.Dx(), img.Rect.Dy()
	texel := func(x, y int) byte {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return img.Pix[y*img.Stride+x]
	}

	for i, v := range c.Vertices() {
		x0 := int(math.Round(float64(v.UVMin.X) * float64(w)))
		y0 := int(math.Round(float64(v.UVMin.Y) * float64(h)))
		x1 := int(math.Round(float64(v.UVMax.X) * float64(w)))
		y1 := int(math.Round(float64(v.UVMax.Y) * float64(h)))

		var stale int
		for x := x0 - 1; x <= x1; x++ {
			stale += int(min(texel(x, y0-1), 1)) + int(min(texel(x, y1), 1))
		}
		for y := y0; y < y1; y++ {
			stale += int(min(texel(x0-1, y), 1)) + int(min(texel(x1, y), 1))
		}
		if stale != 0 {
			t.Errorf("glyph %d: %d nonzero texels in its padding", i, stale)
		}
	}
}

func TestCache_EmptyUpdatesIdempotent(t *testing.T) {
	c := newTestCache(t)

	c.Queue(hiSection())
	c.Update()
	c.Update()
	c.CopyTexture(nil)
	before := c.Vertices()

	if kind := c.Update(); kind != layout.ActionRedraw {
		t.Errorf("Update() with nothing queued twice = %v, want Redraw", kind)
	}
	after := c.Vertices()
	if len(after) != len(before) {
		t.Errorf("vertex list changed: %d -> %d", len(before), len(after))
	}
	if _, dirty := c.CopyTexture(nil); dirty {
		t.Error("atlas mutated by an empty update")
	}
}

func TestCache_RedrawKeepsVertices(t *testing.T) {
	c := newTestCache(t)

	c.Queue(hiSection())
	c.Update()
	c.CopyTexture(nil)

	c.Queue(hiSection())
	if kind := c.Update(); kind != layout.ActionRedraw {
		t.Errorf("Update() = %v, want Redraw", kind)
	}
	if n := len(c.Vertices()); n != 2 {
		t.Errorf("got %d vertices, want 2", n)
	}
	if _, dirty := c.CopyTexture(nil); dirty {
		t.Error("redraw should not touch the atlas")
	}
}

func TestCache_IgnoredSections(t *testing.T) {
	c := newTestCache(t)

	tests := []struct {
		name string
		s    Section
	}{
		{"invalid UTF-8", Section{Text: "H\xffi", Scale: Pt(16, 16)}},
		{"unknown font", Section{Text: "Hi", Scale: Pt(16, 16), Font: 7}},
		{"zero scale", Section{Text: "Hi"}},
		{"negative scale", Section{Text: "Hi", Scale: Pt(16, -1)}},
		{"NaN scale", Section{Text: "Hi", Scale: Pt(float32(math.NaN()), 16)}},
		{"scale above maximum", Section{Text: "Hi", Scale: Pt(16, 5000)}},
		{"huge scale", Section{Text: "Hi", Scale: Pt(1e30, 1e30)}},
		{"infinite scale", Section{Text: "Hi", Scale: Pt(float32(math.Inf(1)), 16)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Queue(tt.s)
			if n := c.Stats().Pending; n != 0 {
				t.Errorf("section was queued (%d pending)", n)
			}
		})
	}
}

func TestCache_AddFont(t *testing.T) {
	c := newTestCache(t)

	id, err := c.AddFont(gobold.TTF)
	if err != nil {
		t.Fatalf("AddFont failed: %v", err)
	}
	if id != 1 || c.FontCount() != 2 {
		t.Errorf("AddFont() = %d with %d fonts, want id 1 of 2", id, c.FontCount())
	}
	if name, err := c.FontName(id); err != nil || name == "" {
		t.Errorf("FontName(%d) = %q, %v", id, name, err)
	}
	if _, err := c.FontName(9); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("FontName(9) error = %v, want ErrUnknownFont", err)
	}

	if _, err := c.AddFont(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("AddFont(nil) = %v, want ErrEmptyFontData", err)
	}
	var fontErr *text.FontError
	if _, err := c.AddFont([]byte("not a font")); !errors.As(err, &fontErr) {
		t.Errorf("AddFont(garbage) = %v, want *text.FontError", err)
	}
	if c.FontCount() != 2 {
		t.Errorf("failed AddFont changed the registry: %d fonts", c.FontCount())
	}

	// Sections can use the new font.
	c.Queue(Section{Text: "Hi", Scale: Pt(16, 16), Font: id, Color: White})
	c.Update()
	if n := len(c.Vertices()); n != 2 {
		t.Errorf("got %d vertices with font %d, want 2", n, id)
	}
}

func TestCache_AddFontFile(t *testing.T) {
	c, err := NewEmpty()
	if err != nil {
		t.Fatalf("NewEmpty failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o600); err != nil {
		t.Fatalf("failed to write font: %v", err)
	}
	if id, err := c.AddFontFile(path); err != nil || id != 0 {
		t.Errorf("AddFontFile() = %d, %v, want 0, nil", id, err)
	}
	if _, err := c.AddFontFile(filepath.Join(t.TempDir(), "missing.ttf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("AddFontFile(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestNew_BadFont(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("New(nil) = %v, want ErrEmptyFontData", err)
	}
}

func TestCache_ViewTexture(t *testing.T) {
	c := newTestCache(t, WithInitialTextureSize(128, 64))

	var calls int
	c.ViewTexture(func(pix []byte, w, h int, dirty bool) {
		calls++
		if w != 128 || h != 64 || len(pix) != w*h {
			t.Errorf("view is %dx%d with %d bytes", w, h, len(pix))
		}
		if dirty {
			t.Error("new atlas should not be dirty")
		}
	})

	c.Queue(hiSection())
	c.Update()
	c.ViewTexture(func(_ []byte, _, _ int, dirty bool) {
		calls++
		if !dirty {
			t.Error("atlas should be dirty after drawing new glyphs")
		}
	})
	c.ViewTexture(func(_ []byte, _, _ int, dirty bool) {
		calls++
		if dirty {
			t.Error("dirty flag should be cleared by the previous read")
		}
	})
	if calls != 3 {
		t.Errorf("callback ran %d times, want 3", calls)
	}
}

func TestCache_VerticesCopy(t *testing.T) {
	c := newTestCache(t)
	c.Queue(hiSection())
	c.Update()

	vs := c.Vertices()
	vs[0].Min = Pt(-100, -100)

	c.ViewVertices(func(view []Vertex) {
		if len(view) != 2 {
			t.Fatalf("view has %d vertices, want 2", len(view))
		}
		if view[0].Min == Pt(-100, -100) {
			t.Error("Vertices() returned the internal slice")
		}
	})
}

func TestCache_Concurrent(t *testing.T) {
	c := newTestCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s := hiSection()
				s.Position = Pt(float32(i*10), float32(j))
				c.Queue(s)
				c.Update()
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.ViewTexture(func(pix []byte, w, h int, _ bool) {
					if len(pix) != w*h {
						t.Errorf("torn texture view: %d bytes for %dx%d", len(pix), w, h)
					}
				})
				c.ViewVertices(func(vs []Vertex) {
					for _, v := range vs {
						if !inUnitSquare(v.UVMin) || !inUnitSquare(v.UVMax) {
							t.Errorf("vertex uv outside [0,1]: %v", v)
						}
					}
				})
				c.TextureDimensions()
				c.Stats()
			}
		}()
	}
	wg.Wait()

	if got := c.Stats().Updates; got != 80 {
		t.Errorf("Updates = %d, want 80", got)
	}
}
