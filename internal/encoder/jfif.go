package encoder

// HeaderEncoder writes the marker skeleton: SOI, APP0, both DQT tables,
// SOF0 and EOI. It carries no scan data.
type HeaderEncoder struct{}

func (e *HeaderEncoder) Format() string    { return "jfif" }
func (e *HeaderEncoder) Extension() string { return "jfif" }
func (e *HeaderEncoder) Available() bool   { return true }

func (e *HeaderEncoder) Encode(in Input) ([]byte, error) {
	return in.Session.Header(in.Width, in.Height)
}
