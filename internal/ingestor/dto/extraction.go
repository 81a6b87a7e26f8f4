package dto

// FundingItem is the field set the extraction prompt instructs the model to
// emit for one funding round. Everything is a string: model output is an
// untrusted bag of fields and is re-validated downstream.
type FundingItem struct {
	Company               string `json:"company"`
	FundingDate           string `json:"funding_date"`
	FundingRound          string `json:"funding_round"`
	FundingAmount         string `json:"funding_amount"`
	Investors             string `json:"investors"`
	Description           string `json:"description"`
	TherapeuticArea       string `json:"therapeutic_area"`
	TherapeuticModality   string `json:"therapeutic_modality"`
	LeadClinicalStage     string `json:"lead_clinical_stage"`
	SmallMoleculeModality string `json:"small_molecule_modality"`
	HQCity                string `json:"hq_city"`
	HQRegion              string `json:"hq_region"`
}

// FundingExtractionResult is the expected JSON structure for article
// extraction. An empty items array means the article is not a funding
// announcement.
type FundingExtractionResult struct {
	Items []FundingItem `json:"items"`
}

// DatasetQueryResult is the expected JSON structure for a natural-language
// dataset query. RowIndexes refer to the indexed dataset rendering sent with
// the prompt and are validated before use.
type DatasetQueryResult struct {
	Answer     string `json:"answer"`
	RowIndexes []int  `json:"row_indexes"`
}
