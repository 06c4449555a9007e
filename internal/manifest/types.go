package manifest

// Manifest is the top-level output of a jfifcore encode run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Session     SessionInfo      `json:"session"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run-time parameters for diagnostics.
type BuildInfo struct {
	Workers int    `json:"workers"`
	Mode    string `json:"mode"` // "crop" or "fit"
}

// SessionInfo records the encode-session configuration shared by every asset.
type SessionInfo struct {
	Quality       int    `json:"quality"`
	ColorRounding string `json:"color_rounding"`
	CoefRounding  string `json:"coef_rounding"`
	LumaTable     []int  `json:"luma_table"`   // zig-zag order
	ChromaTable   []int  `json:"chroma_table"` // zig-zag order
}

// Asset describes a single source image and the block taken from it.
type Asset struct {
	Original     OriginalInfo  `json:"original"`
	Block        BlockInfo     `json:"block"`
	Key          string        `json:"key"` // xxhash64 of header + coefficients
	Coefficients *Coefficients `json:"coefficients,omitempty"`
	Artifacts    []Artifact    `json:"artifacts"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// BlockInfo locates the encoded block inside the source image.
type BlockInfo struct {
	Col  int    `json:"col"`
	Row  int    `json:"row"`
	Mode string `json:"mode"`
}

// Coefficients are the quantized scan-ordered sequences per channel.
type Coefficients struct {
	Y  []int32 `json:"y"`
	Cb []int32 `json:"cb"`
	Cr []int32 `json:"cr"`
}

// NonZero counts the non-zero coefficients across all channels.
func (c *Coefficients) NonZero() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, ch := range [][]int32{c.Y, c.Cb, c.Cr} {
		for _, v := range ch {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Artifact is one file written for an asset.
type Artifact struct {
	Format string `json:"format"` // "jfif", "coef", "coef.zst"
	Size   int64  `json:"size"`   // bytes on disk
	Hash   string `json:"hash"`   // first 16 hex chars of xxhash64
	Path   string `json:"path"`   // relative to base_path
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
	TotalArtifacts   int   `json:"total_artifacts"`
	NonZeroCoeffs    int   `json:"nonzero_coefficients"`
	Failed           int   `json:"failed,omitempty"` // images that could not be encoded
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest's name inside an output directory.
const FileName = "jfifcore.manifest.json"
