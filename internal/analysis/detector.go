package analysis

// Detector narrows or reorders the jump sites handed to the obfuscator.
type Detector interface {
	Detect(sites []JumpSite) []JumpSite
}

// DetectorChain runs multiple detectors in sequence
type DetectorChain struct {
	detectors []Detector
}

// NewDetectorChain creates a new detector chain
func NewDetectorChain(detectors ...Detector) *DetectorChain {
	return &DetectorChain{
		detectors: detectors,
	}
}

// Detect runs all detectors in sequence
func (dc *DetectorChain) Detect(sites []JumpSite) []JumpSite {
	result := sites
	for _, detector := range dc.detectors {
		result = detector.Detect(result)
	}
	return result
}

// Limit keeps the first Max sites in authoring order. Zero or a negative
// value keeps everything.
type Limit struct {
	Max int
}

func (l Limit) Detect(sites []JumpSite) []JumpSite {
	if l.Max <= 0 || len(sites) <= l.Max {
		return sites
	}
	return sites[:l.Max]
}

// DetectorFunc adapts a plain function to Detector.
type DetectorFunc func([]JumpSite) []JumpSite

func (f DetectorFunc) Detect(sites []JumpSite) []JumpSite { return f(sites) }
