package core

import (
	"math"
	"strconv"
	"strings"
)

// PromptInput is the outfit data rendered into the stylist prompt.
type PromptInput struct {
	Caption       string
	AverageRating float64
	RatingCount   int
	Ratings       []int
	Comments      []string
	Tags          []string
}

const promptIntro = "You are a professional fashion stylist and personal shopper giving constructive, " +
	"encouraging feedback on a clothing outfit based on community ratings and text reviews."

const promptInstructions = `Based on this community feedback, please provide:

## What's Working
Highlight 2-3 specific strengths suggested by the rating and comment feedback.

## Suggestions for Improvement
Give 2-3 actionable, specific style suggestions based on the feedback patterns.

## Styling Tips
Recommend 1-2 complementary items, accessories, or occasions this style works best for.

## Encouragement
A brief motivating closing statement.

Keep your response concise (under 300 words), positive in tone, and specific. You cannot see the photo, so base your advice entirely on the numerical ratings and text feedback provided above.`

// BuildOutfitPrompt renders in into the stylist prompt. The output depends only
// on in and is stored verbatim as the suggestion's prompt snapshot.
func BuildOutfitPrompt(in PromptInput) string {
	caption := in.Caption
	if caption == "" {
		caption = "No caption provided"
	}

	tags := "none specified"
	if len(in.Tags) > 0 {
		tags = strings.Join(in.Tags, ", ")
	}

	ratingWord := "ratings"
	if in.RatingCount == 1 {
		ratingWord = "rating"
	}

	ratings := make([]string, len(in.Ratings))
	for i, v := range in.Ratings {
		ratings[i] = strconv.Itoa(v)
	}

	var b strings.Builder
	b.WriteString(promptIntro)
	b.WriteString("\n\nOUTFIT INFORMATION:\n")
	b.WriteString(`- Caption: "` + caption + "\"\n")
	b.WriteString("- Style tags: " + tags + "\n")
	b.WriteString("- Community rating: " + oneDecimal(in.AverageRating) + "/5.0 stars (" +
		strconv.Itoa(in.RatingCount) + " " + ratingWord + ")\n")
	b.WriteString("- Individual ratings received: [" + strings.Join(ratings, ", ") + "]\n")
	b.WriteString("\nCOMMUNITY FEEDBACK (most recent comments):\n")
	if len(in.Comments) == 0 {
		b.WriteString("  (No comments yet)")
	} else {
		for i, c := range in.Comments {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("  " + strconv.Itoa(i+1) + `. "` + c + `"`)
		}
	}
	b.WriteString("\n\n")
	b.WriteString(promptInstructions)
	return b.String()
}

// oneDecimal formats x with one decimal place, rounding the exact binary value.
// The only exact ties are multiples of 0.25 such as 3.25; those round away from zero.
func oneDecimal(x float64) string {
	if q := x * 4; q == math.Trunc(q) && math.Mod(q, 2) != 0 {
		return strconv.FormatFloat(math.Round(x*10)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(x, 'f', 1, 64)
}
