package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/jfifcore-cli/internal/coeffile"
	"github.com/AnyUserName/jfifcore-cli/internal/hasher"
	"github.com/AnyUserName/jfifcore-cli/internal/manifest"
	"github.com/AnyUserName/jfifcore-cli/internal/marker"
	"github.com/AnyUserName/jfifcore-cli/internal/profile"
	"github.com/AnyUserName/jfifcore-cli/internal/source"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestScanImages(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), 8, 8, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(in, "sub", "b.png"), 8, 8, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(in, ".hidden", "c.png"), 8, 8, color.NRGBA{A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "d.PNM"), []byte("P5 1 1 255\n\x00"), 0o644))

	sources, err := ScanImages(in)
	require.NoError(t, err)

	keys := map[string]string{}
	for _, s := range sources {
		keys[s.Key] = s.Format
	}
	assert.Equal(t, map[string]string{"a": "png", "sub/b": "png", "d": "ppm"}, keys)
}

func TestRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(in, "gray.png"), 16, 8, color.NRGBA{128, 128, 128, 255})
	writePNG(t, filepath.Join(in, "icons", "white.png"), 8, 8, color.NRGBA{255, 255, 255, 255})

	p, err := New(Config{
		InputDir:  in,
		OutputDir: out,
		Profile:   profile.Get("archive"),
		Workers:   2,
	})
	require.NoError(t, err)

	m, err := p.Run()
	require.NoError(t, err)
	require.Len(t, m.Assets, 2)
	assert.Equal(t, "archive", m.Profile)
	assert.Equal(t, 50, m.Session.Quality)
	assert.Equal(t, "truncate", m.Session.ColorRounding)
	assert.Len(t, m.Session.LumaTable, 64)
	assert.Equal(t, 0, m.Stats.Failed)
	assert.Equal(t, 4, m.Stats.TotalArtifacts)

	gray := m.Assets["gray"]
	assert.Equal(t, 16, gray.Original.Width)
	assert.Equal(t, "png", gray.Original.Format)
	assert.Equal(t, 0, gray.Coefficients.NonZero())

	white := m.Assets["icons/white"]
	require.NotNil(t, white.Coefficients)
	assert.Equal(t, int32(63), white.Coefficients.Y[0])

	for key, a := range m.Assets {
		require.Len(t, a.Artifacts, 2, key)
		for _, art := range a.Artifacts {
			data, err := os.ReadFile(filepath.Join(out, art.Path))
			require.NoError(t, err, art.Path)
			assert.Equal(t, art.Size, int64(len(data)))
			assert.Equal(t, hasher.ContentHash(data, hasher.DefaultHexLen), art.Hash)

			switch art.Format {
			case "jfif":
				h, err := marker.Decode(data)
				require.NoError(t, err)
				assert.Equal(t, a.Original.Width, h.Frame.Width)
				assert.Len(t, h.Tables, 2)
			case "coef.zst":
				c, err := coeffile.Unmarshal(data)
				require.NoError(t, err)
				assert.Equal(t, a.Coefficients.Y, c[0][:])
			default:
				t.Fatalf("unexpected format %q", art.Format)
			}
		}
	}
}

func TestRunPartialFailure(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(in, "ok.png"), 8, 8, color.NRGBA{10, 20, 30, 255})
	writePNG(t, filepath.Join(in, "tiny.png"), 4, 4, color.NRGBA{10, 20, 30, 255})

	p, err := New(Config{InputDir: in, OutputDir: out, Profile: profile.Get("reference"), Workers: 1})
	require.NoError(t, err)

	m, err := p.Run()
	require.NoError(t, err)
	assert.Len(t, m.Assets, 1)
	assert.Contains(t, m.Assets, "ok")
	assert.Equal(t, 1, m.Stats.Failed)
}

func TestRunAllFail(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "tiny.png"), 4, 4, color.NRGBA{A: 255})

	p, err := New(Config{InputDir: in, OutputDir: t.TempDir(), Profile: profile.Get("reference"),
		Block: source.Options{Col: 0, Row: 0}})
	require.NoError(t, err)
	_, err = p.Run()
	assert.Error(t, err)
}

func TestRunFitProfile(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "tiny.png"), 4, 4, color.NRGBA{200, 100, 50, 255})

	p, err := New(Config{InputDir: in, OutputDir: t.TempDir(), Profile: profile.Get("preview"),
		Block: source.Options{Col: 3, Row: 3}})
	require.NoError(t, err)
	m, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, "fit", m.BuildInfo.Mode)
	assert.Equal(t, manifest.BlockInfo{Mode: "fit"}, m.Assets["tiny"].Block)
}

func TestRunEmptyDir(t *testing.T) {
	p, err := New(Config{InputDir: t.TempDir(), OutputDir: t.TempDir(), Profile: profile.Get("reference")})
	require.NoError(t, err)
	_, err = p.Run()
	assert.Error(t, err)
}

func TestRunHugeHeader(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(in, "ok.png"), 8, 8, color.NRGBA{10, 20, 30, 255})
	require.NoError(t, os.WriteFile(filepath.Join(in, "huge.ppm"), []byte("P6 16777216 16777216 255\n"), 0o644))

	p, err := New(Config{InputDir: in, OutputDir: out, Profile: profile.Get("reference"), Workers: 2})
	require.NoError(t, err)

	m, err := p.Run()
	require.NoError(t, err)
	assert.Contains(t, m.Assets, "ok")
	assert.NotContains(t, m.Assets, "huge")
	assert.Equal(t, 1, m.Stats.Failed)
}
