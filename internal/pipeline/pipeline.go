package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/jfifcore-cli/internal/codec"
	"github.com/AnyUserName/jfifcore-cli/internal/encoder"
	"github.com/AnyUserName/jfifcore-cli/internal/manifest"
	"github.com/AnyUserName/jfifcore-cli/internal/profile"
	"github.com/AnyUserName/jfifcore-cli/internal/quant"
	"github.com/AnyUserName/jfifcore-cli/internal/source"
)

// Config holds all parameters for an encode pipeline run.
type Config struct {
	InputDir  string
	OutputDir string
	Profile   profile.Profile
	Workers   int
	Verbose   bool
	Block     source.Options // which block to take from every image
}

// Pipeline orchestrates block encoding across a directory of images.
type Pipeline struct {
	cfg      Config
	session  *codec.Session
	registry *encoder.Registry
}

// New creates a configured pipeline. The encode session is built once from
// the profile and shared read-only by all workers.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Profile.Fit {
		cfg.Block.Mode = source.Fit
	}
	session, err := codec.NewSession(cfg.Profile.SessionConfig())
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &Pipeline{
		cfg:      cfg,
		session:  session,
		registry: encoder.NewRegistry(),
	}, nil
}

// Session returns the shared encode session.
func (p *Pipeline) Session() *codec.Session { return p.session }

// Run executes the full encode pipeline and returns the manifest.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[jfifcore] %s\n", p.registry.String())
	}

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[jfifcore] found %d images\n", len(sources))
	}

	// Step 2: Encode one block per image in parallel.
	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if p.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[jfifcore] processing: %s\n", s.Key)
			}

			results[idx] = processImage(s, p.cfg, p.session, p.registry)

			if p.cfg.Verbose && results[idx].err == nil {
				fmt.Fprintf(os.Stderr, "[jfifcore] done: %s (%d artifacts)\n",
					s.Key, len(results[idx].asset.Artifacts))
			}
		}(i, src)
	}
	wg.Wait()

	// Step 3: Collect results into manifest.
	m := manifest.New(p.cfg.Profile.Name)

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Assets[r.key] = r.asset
	}

	// Report errors but don't fail the entire run for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[jfifcore] error: %v\n", e)
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to encode", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[jfifcore] warning: %d of %d images had errors\n",
			len(errs), len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
		Mode:    p.cfg.Block.Mode.String(),
	}
	m.Session = manifest.SessionInfo{
		Quality:       p.cfg.Profile.Quality,
		ColorRounding: p.session.ColorRounding().String(),
		CoefRounding:  p.session.CoefRounding().String(),
		LumaTable:     p.session.Table(quant.Luma).Ints(),
		ChromaTable:   p.session.Table(quant.Chroma).Ints(),
	}
	m.Stats.Failed = len(errs)
	m.ComputeStats()
	return m, nil
}
