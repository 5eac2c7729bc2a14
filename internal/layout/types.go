package layout

// Rect is an axis-aligned box in page coordinates (points, origin top-left,
// y grows downward).
type Rect struct {
	X0 float64 `yaml:"x0"`
	Y0 float64 `yaml:"y0"`
	X1 float64 `yaml:"x1"`
	Y1 float64 `yaml:"y1"`
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Line is a single decoded text line
type Line struct {
	Rect Rect
	Text string
	Font string
	Size float64
}

// Block is a decoder-identified region holding zero or more lines of text
type Block struct {
	Rect  Rect
	Text  string  // space-joined line text, may be empty
	Font  string  // font of the first span, "" if unknown
	Size  float64 // size of the first span, 0 if unknown
	Lines []Line
}

// Page is one decoded page of a document
type Page struct {
	Index  int // 0-based
	Width  float64
	Height float64
	Blocks []Block
}

// Detection holds the header cut and the footer band height of a page.
// Both are distances: HeaderHeight from the top edge, FooterHeight from the
// bottom edge.
type Detection struct {
	HeaderHeight float64 `yaml:"header_height"`
	FooterHeight float64 `yaml:"footer_height"`
}

// IsEmpty reports whether nothing was detected
func (d Detection) IsEmpty() bool {
	return d.HeaderHeight == 0 && d.FooterHeight == 0
}

// RegionKind tells whether a region blanks a header or a footer
type RegionKind int

const (
	HeaderRegion RegionKind = iota
	FooterRegion
)

func (k RegionKind) String() string {
	if k == HeaderRegion {
		return "header"
	}
	return "footer"
}

// Region is a rectangle marked for blanking
type Region struct {
	Kind RegionKind
	Rect Rect
}
