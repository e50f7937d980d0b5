// Package heading defines the candidate-source contract shared by the PDF
// outline reader, the visual heading detector, and anything that feeds the
// cascading structure extractor (spec §4.E).
package heading

// Candidate is one heading hypothesis produced by a source.
type Candidate struct {
	Title      string
	Page       int // 0-indexed page the heading starts on
	Level      int // 1 = top-level, increasing = deeper
	Confidence float64
	Source     string // "outline", "detect", "toc"
}

// Source produces heading candidates for a document. Each source is
// independent and blind to the others; the cascading extractor in
// internal/structure imposes priority between them, it is never a
// probabilistic fusion of their outputs (spec §4.H).
type Source interface {
	Candidates() ([]Candidate, error)
	Name() string
}
