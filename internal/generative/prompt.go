package generative

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/imrishuroy/go-product-describer/internal/vision"
)

var promptTemplate = template.Must(template.New("description").Parse(
	`You are a professional e-commerce product copywriter. Write a compelling product description for an apparel item based on the following image analysis:

Image Analysis Data:
- Labels: {{.Labels}}
- Objects detected: {{.Objects}}
- Dominant colors: {{.Colors}}
- Text detected: {{.DetectedText}}
- Web entities: {{.WebEntities}}

Description Guidelines:
1. Keep the description professional, concise and engaging (100-150 words).
2. State the target category clearly (for example men's, women's or kids').
3. Highlight style, fit and comfort as they matter to that category.
4. Describe how the fabric feels (for example soft or breathable) without hedging phrases such as "while not specified".
5. If the colors are unclear, do not name them with confidence; use appealing general terms such as "a light, fresh tone" or "a subtle neutral shade", and focus on other features when color detection is poor.
6. Suggest occasions to wear the item (casual, formal, activewear) and how it fits the lifestyle of the target category.
7. Mention styling options such as accessories or layering.
8. Include care instructions (for example machine washable) when applicable.
9. Add sizing or fit information when relevant (for example slim fit or true to size).

Key Features Section:
- Include 3-5 key bullet points summarizing the main attributes, focusing on fabric, fit and versatility.

Do not apply any text styling (bold, italics or other markup) in either section.`))

// BuildPrompt renders the generation prompt for an analysis. The output is a
// pure function of its input.
func BuildPrompt(a vision.ImageAnalysis) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Labels, Objects, Colors, DetectedText, WebEntities string
	}{
		Labels:       a.Labels,
		Objects:      a.Objects,
		Colors:       strings.Join(a.Colors, ", "),
		DetectedText: a.DetectedText,
		WebEntities:  a.WebEntities,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}
