package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AnyUserName/jfifcore-cli/internal/codec"
	"github.com/AnyUserName/jfifcore-cli/internal/colorspace"
	"github.com/AnyUserName/jfifcore-cli/internal/dct"
	"github.com/AnyUserName/jfifcore-cli/internal/quant"
)

// Profile defines encode-session parameters for a named use case.
type Profile struct {
	Name          string
	Quality       int      // 1-100, scales the Annex K tables
	Formats       []string // artifact formats in priority order
	ColorRounding colorspace.Rounding
	CoefRounding  dct.Rounding
	Fit           bool // resample the whole image into one block instead of cropping
}

// Built-in profiles.
var profiles = map[string]Profile{
	"reference": {
		Name:          "reference",
		Quality:       quant.DefaultQuality,
		Formats:       []string{"jfif", "coef"},
		ColorRounding: colorspace.Truncate,
		CoefRounding:  dct.Truncate,
	},
	"nearest": {
		Name:          "nearest",
		Quality:       quant.DefaultQuality,
		Formats:       []string{"jfif", "coef"},
		ColorRounding: colorspace.Nearest,
		CoefRounding:  dct.Nearest,
	},
	"hq": {
		Name:          "hq",
		Quality:       90,
		Formats:       []string{"jfif", "coef"},
		ColorRounding: colorspace.Nearest,
		CoefRounding:  dct.Nearest,
	},
	"archive": {
		Name:          "archive",
		Quality:       quant.DefaultQuality,
		Formats:       []string{"jfif", "coef.zst"},
		ColorRounding: colorspace.Truncate,
		CoefRounding:  dct.Truncate,
	},
	"preview": {
		Name:          "preview",
		Quality:       75,
		Formats:       []string{"jfif", "coef"},
		ColorRounding: colorspace.Nearest,
		CoefRounding:  dct.Nearest,
		Fit:           true,
	},
}

// Get returns a profile by name. Falls back to reference if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		p.Formats = append([]string(nil), p.Formats...)
		return p
	}
	p := profiles["reference"]
	p.Formats = append([]string(nil), p.Formats...)
	p.Name = name // preserve requested name
	return p
}

// Known reports whether name is a built-in profile.
func Known(name string) bool {
	_, ok := profiles[name]
	return ok
}

// Names lists the built-in profiles.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithRounding returns a copy of p with both narrowing policies set by name:
// "truncate" or "nearest". An empty name keeps the profile's own policies.
func (p Profile) WithRounding(name string) (Profile, error) {
	switch strings.ToLower(name) {
	case "":
	case "truncate":
		p.ColorRounding, p.CoefRounding = colorspace.Truncate, dct.Truncate
	case "nearest":
		p.ColorRounding, p.CoefRounding = colorspace.Nearest, dct.Nearest
	default:
		return p, fmt.Errorf("unknown rounding %q (want truncate or nearest)", name)
	}
	return p, nil
}

// SessionConfig builds the codec configuration for this profile.
func (p Profile) SessionConfig() codec.Config {
	return codec.Config{
		Luma:          quant.Scale(quant.Luma, p.Quality),
		Chroma:        quant.Scale(quant.Chroma, p.Quality),
		ColorRounding: p.ColorRounding,
		CoefRounding:  p.CoefRounding,
	}
}
