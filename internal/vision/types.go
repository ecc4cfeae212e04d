package vision

// Fallback values used when the vision service detects nothing for a field.
const (
	NoLabels      = "No labels detected"
	NoObjects     = "No objects detected"
	NoColors      = "No colors detected"
	NoText        = "No text detected"
	NoWebEntities = "No web entities detected"
)

const (
	maxColors      = 3
	maxWebEntities = 5
)

// ImageAnalysis is the normalized vision result. Every field is always set.
type ImageAnalysis struct {
	Labels       string   `json:"labels"`
	Objects      string   `json:"objects"`
	Colors       []string `json:"colors"`
	DetectedText string   `json:"detectedText"`
	WebEntities  string   `json:"webEntities"`
}

// Fallback returns the analysis produced when nothing at all was detected.
func Fallback() ImageAnalysis {
	return ImageAnalysis{
		Labels:       NoLabels,
		Objects:      NoObjects,
		Colors:       []string{NoColors},
		DetectedText: NoText,
		WebEntities:  NoWebEntities,
	}
}
