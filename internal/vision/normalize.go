package vision

import (
	"fmt"
	"math"
	"strings"

	visionapi "google.golang.org/api/vision/v1"
)

// Normalize maps an annotate response onto ImageAnalysis. Each field falls
// back on its own; a missing annotation never affects the other fields.
// A nil response yields Fallback().
func Normalize(res *visionapi.AnnotateImageResponse) ImageAnalysis {
	if res == nil {
		return Fallback()
	}
	return ImageAnalysis{
		Labels:       labels(res),
		Objects:      objects(res),
		Colors:       colors(res),
		DetectedText: detectedText(res),
		WebEntities:  webEntities(res),
	}
}

func labels(res *visionapi.AnnotateImageResponse) string {
	out := make([]string, 0, len(res.LabelAnnotations))
	for _, l := range res.LabelAnnotations {
		if l != nil {
			out = append(out, l.Description)
		}
	}
	return joinOr(out, NoLabels)
}

func objects(res *visionapi.AnnotateImageResponse) string {
	out := make([]string, 0, len(res.LocalizedObjectAnnotations))
	for _, o := range res.LocalizedObjectAnnotations {
		if o != nil {
			out = append(out, o.Name)
		}
	}
	return joinOr(out, NoObjects)
}

// colors formats the first three dominant colors as "R, G, B".
func colors(res *visionapi.AnnotateImageResponse) []string {
	props := res.ImagePropertiesAnnotation
	if props == nil || props.DominantColors == nil {
		return []string{NoColors}
	}
	out := make([]string, 0, maxColors)
	for _, c := range props.DominantColors.Colors {
		if len(out) == maxColors {
			break
		}
		if c == nil || c.Color == nil {
			continue
		}
		out = append(out, fmt.Sprintf("%d, %d, %d",
			int(math.Round(c.Color.Red)),
			int(math.Round(c.Color.Green)),
			int(math.Round(c.Color.Blue)),
		))
	}
	if len(out) == 0 {
		return []string{NoColors}
	}
	return out
}

// detectedText is the first text annotation, which holds the full text block.
func detectedText(res *visionapi.AnnotateImageResponse) string {
	if len(res.TextAnnotations) == 0 || res.TextAnnotations[0] == nil || res.TextAnnotations[0].Description == "" {
		return NoText
	}
	return res.TextAnnotations[0].Description
}

func webEntities(res *visionapi.AnnotateImageResponse) string {
	if res.WebDetection == nil {
		return NoWebEntities
	}
	out := make([]string, 0, maxWebEntities)
	for _, e := range res.WebDetection.WebEntities {
		if len(out) == maxWebEntities {
			break
		}
		if e != nil {
			out = append(out, e.Description)
		}
	}
	return joinOr(out, NoWebEntities)
}

func joinOr(parts []string, fallback string) string {
	if s := strings.Join(parts, ", "); s != "" {
		return s
	}
	return fallback
}
