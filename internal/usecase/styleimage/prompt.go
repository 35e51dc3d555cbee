package styleimage

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/stylist/internal/domain/style"
)

const negativePrompt = "distorted, blurry, deformed, ugly, poorly drawn"

func predictionPrompt(r style.Response) string {
	gender := r.Gender
	if gender == "" {
		gender = style.DefaultGender
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a fashion style image based on: %s.\n", r.Style.Description)
	b.WriteString("Display individual items of clothing together in a single image. Just one item per category.\n")
	fmt.Fprintf(&b, "items: %s.\n", strings.Join(r.ShortDescriptions(), ", "))
	fmt.Fprintf(&b, "gender: %s - just one single person\n", gender)
	b.WriteString("Focus on the clothing, not the person.")
	return b.String()
}

func dallePrompt(r style.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a fashion style image based on: %s\n", r.Style.Description)
	b.WriteString("Output separate clothing items in the image for each category of items in the style.\n")
	b.WriteString("<Items>\n")
	b.WriteString(strings.Join(r.ShortDescriptions(), "\n"))
	b.WriteString("\n</Items>")
	return b.String()
}
