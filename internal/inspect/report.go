package inspect

import "github.com/ivlev/pdfredact/internal/layout"

// Report is the diagnostic view of one page
type Report struct {
	Source     string           `yaml:"source"`
	Page       int              `yaml:"page"` // 0-based
	Width      float64          `yaml:"width"`
	Height     float64          `yaml:"height"`
	Detection  layout.Detection `yaml:"detection"`
	HeaderText string           `yaml:"header_text,omitempty"`
	FooterText string           `yaml:"footer_text,omitempty"`
	Blocks     []BlockInfo      `yaml:"blocks"`
}

// BlockInfo describes a meaningful (non-empty) block
type BlockInfo struct {
	Index      int         `yaml:"index"`
	Kind       string      `yaml:"kind"` // header, footer, content
	Rect       layout.Rect `yaml:"rect"`
	FromTop    float64     `yaml:"from_top"`
	FromBottom float64     `yaml:"from_bottom"`
	Font       string      `yaml:"font,omitempty"`
	Size       float64     `yaml:"size,omitempty"`
	Text       string      `yaml:"text"`
}

const (
	KindHeader  = "header"
	KindFooter  = "footer"
	KindContent = "content"
)
