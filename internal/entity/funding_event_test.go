package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeIdentityKey(t *testing.T) {
	tests := []struct {
		name     string
		event    FundingEvent
		expected string
	}{
		{
			name: "company round and date",
			event: FundingEvent{
				Company:      "Acme Bio",
				FundingRound: "Series B",
				FundingDate:  "2024-03-15",
			},
			expected: "acme bio|series b|2024-03",
		},
		{
			name: "case and whitespace folded",
			event: FundingEvent{
				Company:      "  ACME   bio ",
				FundingRound: "SERIES B",
				FundingDate:  "2024-03-02",
			},
			expected: "acme bio|series b|2024-03",
		},
		{
			name: "month precision date",
			event: FundingEvent{
				Company:      "Acme Bio",
				FundingRound: "Series B",
				FundingDate:  "March 2024",
			},
			expected: "acme bio|series b|2024-03",
		},
		{
			name: "unparseable date falls back to folded raw value",
			event: FundingEvent{
				Company:      "Acme Bio",
				FundingRound: "Series B",
				FundingDate:  "Q3 2024",
			},
			expected: "acme bio|series b|q3 2024",
		},
		{
			name: "missing round keeps company and month",
			event: FundingEvent{
				Company:     "Acme Bio",
				FundingDate: "2024-03-15",
			},
			expected: "acme bio||2024-03",
		},
		{
			name: "no company and no round buckets by url",
			event: FundingEvent{
				SourceURL: "https://example.com/article",
			},
			expected: "url:https://example.com/article",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.ComputeIdentityKey())
		})
	}
}

func TestComputeIdentityKey_SameRoundDifferentSpelling(t *testing.T) {
	a := FundingEvent{Company: "Acme Bio", FundingRound: "Series B", FundingDate: "2024-03-01"}
	b := FundingEvent{Company: "acme   BIO", FundingRound: "series b", FundingDate: "March 28, 2024"}
	assert.Equal(t, a.ComputeIdentityKey(), b.ComputeIdentityKey())
}

func TestIdentifiable(t *testing.T) {
	assert.True(t, (&FundingEvent{Company: "Acme Bio"}).Identifiable())
	assert.True(t, (&FundingEvent{SourceURL: "https://example.com/a"}).Identifiable())
	assert.False(t, (&FundingEvent{Description: "some text"}).Identifiable())
	assert.False(t, (&FundingEvent{Company: "   "}).Identifiable())
}

func TestMerge_FillsOnlyEmptyFields(t *testing.T) {
	existing := &FundingEvent{
		Company:      "Acme Bio",
		FundingRound: "Series B",
		FundingDate:  "2024-03-15",
		SourceURL:    "https://example.com/a",
	}
	candidate := &FundingEvent{
		Company:       "Acme Biosciences Inc",
		FundingAmount: "$45M",
		Investors:     "Foo Ventures",
		SourceURL:     "https://example.com/b",
	}

	changed := existing.Merge(candidate)

	assert.True(t, changed)
	// Populated fields are never overwritten.
	assert.Equal(t, "Acme Bio", existing.Company)
	assert.Equal(t, "https://example.com/a", existing.SourceURL)
	// Empty fields adopt the candidate values.
	assert.Equal(t, "$45M", existing.FundingAmount)
	assert.Equal(t, "Foo Ventures", existing.Investors)
	// The candidate URL is kept as corroboration.
	assert.Contains(t, []string(existing.SourceURLs), "https://example.com/b")
}

func TestMerge_NoChange(t *testing.T) {
	existing := &FundingEvent{
		Company:       "Acme Bio",
		FundingRound:  "Series B",
		FundingAmount: "$45M",
		SourceURL:     "https://example.com/a",
	}
	candidate := &FundingEvent{
		Company:   "Acme Bio",
		SourceURL: "https://example.com/a",
	}

	assert.False(t, existing.Merge(candidate))
	assert.Empty(t, existing.SourceURLs)
}

func TestMerge_SourceURLSet(t *testing.T) {
	existing := &FundingEvent{
		Company:    "Acme Bio",
		SourceURL:  "https://example.com/a",
		SourceURLs: []string{"https://example.com/b"},
	}
	candidate := &FundingEvent{
		Company:    "Acme Bio",
		SourceURL:  "https://example.com/b",
		SourceURLs: []string{"https://example.com/a", "https://example.com/c"},
	}

	changed := existing.Merge(candidate)

	assert.True(t, changed)
	assert.Equal(t, []string{"https://example.com/b", "https://example.com/c"}, []string(existing.SourceURLs))
}

func TestMerge_EmptyCandidateNeverDowngrades(t *testing.T) {
	existing := &FundingEvent{
		Company:         "Acme Bio",
		FundingRound:    "Series B",
		FundingAmount:   "$45M",
		TherapeuticArea: "oncology",
		SourceURL:       "https://example.com/a",
	}
	before := *existing

	changed := existing.Merge(&FundingEvent{})

	assert.False(t, changed)
	assert.Equal(t, before.Company, existing.Company)
	assert.Equal(t, before.FundingAmount, existing.FundingAmount)
	assert.Equal(t, before.TherapeuticArea, existing.TherapeuticArea)
}
