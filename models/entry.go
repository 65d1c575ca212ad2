// Package models defines data structures shared across the indexer.
package models

// Entry is one lexical record extracted by the model: an observed
// surface form, its normalized base, and any alternate spellings.
type Entry struct {
	Surface  string   `json:"surface"`
	Base     string   `json:"base"`
	Variants []string `json:"variants"`
	Notes    string   `json:"notes,omitempty"`
}

// EntriesResponse is the JSON document the model is instructed to
// return for a batch of lines.
type EntriesResponse struct {
	Entries []Entry `json:"entries"`
}
