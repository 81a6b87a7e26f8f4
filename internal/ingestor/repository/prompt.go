package repository

import (
	"fmt"
)

// BuildExtractFundingPrompt builds the instruction for extracting funding
// round fields from one article. The model must return strict JSON and an
// empty items array for articles that are not funding announcements.
func BuildExtractFundingPrompt(title, publishedDate, content string) string {
	return fmt.Sprintf(`Extract biotech/pharma funding round information from the provided article.
Return STRICT JSON with this schema:
{
  "items": [
    {
      "company": "",
      "funding_date": "YYYY-MM-DD" or "",
      "funding_round": "",
      "funding_amount": "",
      "investors": "",
      "description": "",
      "therapeutic_area": "",
      "therapeutic_modality": "",
      "lead_clinical_stage": "",
      "small_molecule_modality": "Yes"|"No"|"",
      "hq_city": "",
      "hq_region": ""
    }
  ]
}
Rules:
- If the article is not about a funding round, return {"items": []}
- If a field is missing from the article, use ""
- "funding_amount" is a human-readable string (e.g. "$45M", "undisclosed"); never invent precision
- "investors" is a comma-separated list
- "description" is a one-paragraph summary of the deal

Article title: %s
Published date: %s
Article text: %s

Answer with JSON only.
`, title, publishedDate, content)
}

// BuildDatasetQueryPrompt builds the instruction for answering a free-text
// question over an indexed rendering of the dataset.
func BuildDatasetQueryPrompt(question, dataset string) string {
	return fmt.Sprintf(`You are given a dataset of biotech/pharma funding rounds, one row per line in the format:
index|company|funding_date|funding_round|funding_amount|investors|therapeutic_area|hq_city|hq_region

Dataset:
%s

Question: %s

Return STRICT JSON with this schema:
{
  "answer": "<short natural-language answer to the question>",
  "row_indexes": [<indexes of the dataset rows that match the question>]
}
Rules:
- "row_indexes" must only contain indexes that appear in the dataset
- If no rows match, return an empty "row_indexes" array and say so in "answer"

Answer with JSON only.
`, dataset, question)
}
