package entity

import (
	"strings"
	"time"

	"biotech-funding-tracker/pkg/utils"

	"github.com/lib/pq"
)

// FundingEvent represents one normalized biotech/pharma funding announcement.
// Date and amount stay as display strings: source precision is inconsistent
// ("undisclosed", "~$50M", "Q3 2024") and a numeric type would force invented
// precision.
type FundingEvent struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	Company               string         `json:"company"`
	FundingDate           string         `json:"funding_date"`
	FundingRound          string         `json:"funding_round"`
	FundingAmount         string         `json:"funding_amount"`
	Investors             string         `json:"investors"`
	Description           string         `json:"description"`
	TherapeuticArea       string         `json:"therapeutic_area"`
	TherapeuticModality   string         `json:"therapeutic_modality"`
	LeadClinicalStage     string         `json:"lead_clinical_stage"`
	SmallMoleculeModality string         `json:"small_molecule_modality"`
	HQCity                string         `gorm:"column:hq_city" json:"hq_city"`
	HQRegion              string         `gorm:"column:hq_region" json:"hq_region"`
	SourceURL             string         `gorm:"column:source_url" json:"source_url"`
	SourceURLs            pq.StringArray `gorm:"column:source_urls;type:text[]" json:"source_urls,omitempty"`
	IdentityKey           string         `gorm:"uniqueIndex;not null" json:"-"`
	IngestedAt            time.Time      `gorm:"autoCreateTime" json:"ingested_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"-"`
}

// TableName specifies the table name for the FundingEvent model.
func (FundingEvent) TableName() string {
	return "funding_events"
}

// NormalizeKeyPart case-folds and whitespace-collapses an identity key
// component.
func NormalizeKeyPart(s string) string {
	return strings.ToLower(utils.CollapseWhitespace(s))
}

// ComputeIdentityKey derives the dedup key: normalized company + normalized
// round + year-month of the funding date. A candidate missing both company
// and round cannot be deduplicated reliably and gets its own bucket keyed by
// source URL.
func (e *FundingEvent) ComputeIdentityKey() string {
	company := NormalizeKeyPart(e.Company)
	round := NormalizeKeyPart(e.FundingRound)
	if company == "" && round == "" {
		return "url:" + strings.TrimSpace(e.SourceURL)
	}
	month := utils.MonthKey(e.FundingDate)
	if month == "" {
		// No recognizable year-month; fall back to the folded raw value so
		// identical spellings still collapse.
		month = NormalizeKeyPart(e.FundingDate)
	}
	return company + "|" + round + "|" + month
}

// Identifiable reports whether the event carries at least one identity
// anchor. Candidates with neither company nor source URL are rejected before
// storage.
func (e *FundingEvent) Identifiable() bool {
	return strings.TrimSpace(e.Company) != "" || strings.TrimSpace(e.SourceURL) != ""
}

// Merge adopts candidate values for every field the receiver has empty.
// Populated fields are never overwritten, so a later low-confidence candidate
// cannot downgrade stored data. Source URLs accumulate as a set to keep
// corroborating provenance. Returns true when anything changed.
func (e *FundingEvent) Merge(candidate *FundingEvent) bool {
	changed := false
	changed = fillIfEmpty(&e.Company, candidate.Company) || changed
	changed = fillIfEmpty(&e.FundingDate, candidate.FundingDate) || changed
	changed = fillIfEmpty(&e.FundingRound, candidate.FundingRound) || changed
	changed = fillIfEmpty(&e.FundingAmount, candidate.FundingAmount) || changed
	changed = fillIfEmpty(&e.Investors, candidate.Investors) || changed
	changed = fillIfEmpty(&e.Description, candidate.Description) || changed
	changed = fillIfEmpty(&e.TherapeuticArea, candidate.TherapeuticArea) || changed
	changed = fillIfEmpty(&e.TherapeuticModality, candidate.TherapeuticModality) || changed
	changed = fillIfEmpty(&e.LeadClinicalStage, candidate.LeadClinicalStage) || changed
	changed = fillIfEmpty(&e.SmallMoleculeModality, candidate.SmallMoleculeModality) || changed
	changed = fillIfEmpty(&e.HQCity, candidate.HQCity) || changed
	changed = fillIfEmpty(&e.HQRegion, candidate.HQRegion) || changed
	changed = fillIfEmpty(&e.SourceURL, candidate.SourceURL) || changed

	for _, url := range candidateURLs(candidate) {
		if url == "" || url == e.SourceURL || utils.ContainsString(e.SourceURLs, url) {
			continue
		}
		e.SourceURLs = append(e.SourceURLs, url)
		changed = true
	}

	return changed
}

func fillIfEmpty(dst *string, src string) bool {
	if strings.TrimSpace(*dst) != "" || strings.TrimSpace(src) == "" {
		return false
	}
	*dst = src
	return true
}

func candidateURLs(candidate *FundingEvent) []string {
	urls := make([]string, 0, len(candidate.SourceURLs)+1)
	if candidate.SourceURL != "" {
		urls = append(urls, candidate.SourceURL)
	}
	urls = append(urls, candidate.SourceURLs...)
	return urls
}
