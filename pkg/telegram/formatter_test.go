package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFundingDigest(t *testing.T) {
	msg := FormatFundingDigest("ingestor", []DigestItem{
		{Company: "Acme Bio", Amount: "$45M", Round: "Series B", Date: "2024-03-15"},
		{Company: "Beta_Therapeutics", Round: "Seed"},
	})

	assert.Contains(t, msg, "*ingestor*")
	assert.Contains(t, msg, "2 new funding round(s)")
	assert.Contains(t, msg, "Acme Bio")
	assert.Contains(t, msg, "$45M")
	assert.Contains(t, msg, "2024-03-15")
	// Missing fields get readable placeholders.
	assert.Contains(t, msg, "undisclosed")
	// Markdown control characters are escaped.
	assert.Contains(t, msg, `Beta\_Therapeutics`)
}

func TestFormatFundingDigest_Empty(t *testing.T) {
	assert.Empty(t, FormatFundingDigest("ingestor", nil))
}
