package recommendation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/style"
	"github.com/kailas-cloud/stylist/internal/domain/user"
)

const stylistPersona = "You are a fashion expert who provides specific and detailed clothing recommendations."

const profilePhotoInstruction = "I'm providing a photo of myself. Please analyze my body type, proportions, " +
	"and overall appearance to recommend clothing that would be flattering for my physique."

const analysisPersona = `You are a fashion expert and personal stylist. Analyze the provided photos of a person to extract
physical attributes relevant for fashion recommendations. Be respectful, inclusive, and focus only on attributes
that would help with clothing recommendations. Provide your analysis in JSON format with the following fields:
- gender: The apparent gender (man, woman, non-binary)
- apparent_age_range: Estimated age range (e.g., "18-25", "25-35", "35-50", etc.)
- body_type: Body shape and proportions (e.g., rectangle, hourglass, athletic, pear, apple, etc.)
- height_impression: Impression of height (tall, average, petite)
- skin_tone: General skin tone category (very fair, fair, medium, olive, tan, deep, etc.)
- style_suggestions: 3-5 specific style suggestions based on the person's physical attributes
- colors_to_complement: 3-5 color recommendations that would complement their skin tone and features
- avoid_styles: 1-2 styles or cuts that might be less flattering for their body type`

const analysisInstruction = "Please analyze these photos and provide the attributes in JSON format as specified."

// stylePrompt renders the recommendation instruction for one request.
func stylePrompt(in user.Input, attrs user.Attributes) string {
	categories := strings.Join(style.Categories, ", ")

	var b strings.Builder
	b.WriteString("As a fashion expert, analyze the provided information and generate fashion recommendations.\n\n")
	b.WriteString("Please return your response in the following JSON format EXACTLY:\n")
	b.WriteString("{\n")
	b.WriteString("    \"style\": {\n")
	b.WriteString("        \"title\": \"Style category name\",\n")
	b.WriteString("        \"description\": \"Description of the style\",\n")
	b.WriteString("        \"tags\": [\"tag1\", \"tag2\", ...]\n")
	b.WriteString("    },\n")
	b.WriteString("    \"items\": [\n")
	b.WriteString("        {\n")
	b.WriteString("            \"description\": \"Detailed description of the recommended item\",\n")
	b.WriteString("            \"short_description\": \"Short description of the recommended item\",\n")
	fmt.Fprintf(&b, "            \"category\": \"Category (must be one of: %s)\"\n", categories)
	b.WriteString("        },\n")
	b.WriteString("        ...\n")
	b.WriteString("    ]\n")
	b.WriteString("}\n\n")
	b.WriteString("Make sure to:\n")
	fmt.Fprintf(&b, "1. Include %d-%d items\n", style.MinItems, style.MaxItems)
	fmt.Fprintf(&b, "2. Use the exact category names: %s\n", categories)
	b.WriteString("3. Make descriptions specific and detailed\n")
	b.WriteString("4. Consider the provided budget level and style preferences\n")
	b.WriteString("5. Return ONLY the JSON, no additional text\n\n")
	b.WriteString("User preferences:\n")

	if in.AdditionalInfo != "" {
		fmt.Fprintf(&b, "Style preferences: %s\n", in.AdditionalInfo)
	}
	if in.Budget != "" {
		fmt.Fprintf(&b, "Budget level: %s\n", in.Budget)
	}
	if !attrs.IsEmpty() {
		if raw, err := json.MarshalIndent(attrs, "", "  "); err == nil {
			fmt.Fprintf(&b, "User attributes: %s\n", raw)
		}
	}
	if n := len(in.AestheticPhotoPaths); n > 0 {
		fmt.Fprintf(&b, "Number of inspiration photos provided: %d\n", n)
	}
	return b.String()
}

func aestheticInstruction(n int) string {
	return fmt.Sprintf("I'm also providing %d photo(s) of fashion styles I like. Please analyze these images "+
		"carefully and consider their colors, patterns, textures, silhouettes, and overall aesthetic "+
		"when generating your recommendations.", n)
}

// styleMessages assembles the chat for a recommendation. profile is empty when
// no profile photo was supplied.
func styleMessages(in user.Input, attrs user.Attributes, profile string, inspiration []string) []domain.ChatMessage {
	msgs := []domain.ChatMessage{
		domain.TextMessage(domain.RoleSystem, stylistPersona),
		domain.TextMessage(domain.RoleUser, stylePrompt(in, attrs)),
	}
	if profile != "" {
		msgs = append(msgs,
			domain.TextMessage(domain.RoleUser, profilePhotoInstruction),
			domain.ImageMessage(profile),
		)
	}
	if len(inspiration) > 0 {
		msgs = append(msgs, domain.TextMessage(domain.RoleUser, aestheticInstruction(len(inspiration))))
		for _, u := range inspiration {
			msgs = append(msgs, domain.ImageMessage(u))
		}
	}
	return msgs
}

func analysisMessages(photos []string) []domain.ChatMessage {
	msgs := make([]domain.ChatMessage, 0, len(photos)+2)
	msgs = append(msgs, domain.TextMessage(domain.RoleSystem, analysisPersona))
	for _, u := range photos {
		msgs = append(msgs, domain.ImageMessage(u))
	}
	return append(msgs, domain.TextMessage(domain.RoleUser, analysisInstruction))
}
