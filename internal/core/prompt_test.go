package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildOutfitPromptIsDeterministic(t *testing.T) {
	in := PromptInput{
		Caption:       "Sunday brunch",
		AverageRating: 4.0,
		RatingCount:   3,
		Ratings:       []int{5, 4, 3},
		Comments:      []string{"love the jacket", "shoes are off"},
		Tags:          []string{"casual", "denim"},
	}
	first := BuildOutfitPrompt(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildOutfitPrompt(in))
	}
}

func TestBuildOutfitPromptContent(t *testing.T) {
	p := BuildOutfitPrompt(PromptInput{
		Caption:       "Sunday brunch",
		AverageRating: 4.0,
		RatingCount:   3,
		Ratings:       []int{5, 4, 3},
		Comments:      []string{"love the jacket", "shoes are off"},
		Tags:          []string{"casual", "denim"},
	})

	assert.Contains(t, p, `- Caption: "Sunday brunch"`)
	assert.Contains(t, p, "- Style tags: casual, denim")
	assert.Contains(t, p, "- Community rating: 4.0/5.0 stars (3 ratings)")
	assert.Contains(t, p, "- Individual ratings received: [5, 4, 3]")
	assert.Contains(t, p, "COMMUNITY FEEDBACK (most recent comments):\n  1. \"love the jacket\"\n  2. \"shoes are off\"\n\nBased on")
	assert.Contains(t, p, "under 300 words")
	assert.True(t, strings.HasPrefix(p, "You are a professional fashion stylist"))
}

func TestBuildOutfitPromptPlaceholders(t *testing.T) {
	p := BuildOutfitPrompt(PromptInput{Tags: []string{}})

	assert.Contains(t, p, `- Caption: "No caption provided"`)
	assert.Contains(t, p, "- Style tags: none specified")
	assert.Contains(t, p, "- Community rating: 0.0/5.0 stars (0 ratings)")
	assert.Contains(t, p, "- Individual ratings received: []")
	assert.Contains(t, p, "  (No comments yet)")
}

func TestBuildOutfitPromptSingularRating(t *testing.T) {
	p := BuildOutfitPrompt(PromptInput{AverageRating: 5, RatingCount: 1, Ratings: []int{5}})
	assert.Contains(t, p, "(1 rating)")
	assert.NotContains(t, p, "(1 ratings)")
}

func TestOneDecimal(t *testing.T) {
	assert.Equal(t, "3.3", oneDecimal(3.33))
	assert.Equal(t, "3.3", oneDecimal(3.25))
	assert.Equal(t, "3.7", oneDecimal(3.67))
	assert.Equal(t, "5.0", oneDecimal(5))
	assert.Equal(t, "0.0", oneDecimal(0))

	// 0.15, 1.15, 2.15 and 4.05 sit just below the half in binary.
	assert.Equal(t, "0.1", oneDecimal(0.15))
	assert.Equal(t, "1.1", oneDecimal(1.15))
	assert.Equal(t, "2.1", oneDecimal(43.0/20))
	assert.Equal(t, "4.0", oneDecimal(4.05))
	assert.Equal(t, "1.3", oneDecimal(1.25))
	assert.Equal(t, "3.8", oneDecimal(3.75))
	assert.Equal(t, "4.8", oneDecimal(4.75))
}
