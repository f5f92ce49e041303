package models

// GeneratedPhrase is an AI-generated practice phrase. It is never persisted;
// callers keep a per-session history of generated phrases to avoid duplicates.
type GeneratedPhrase struct {
	Portuguese string `json:"portuguese"`
	Russian    string `json:"russian"`
	Verbs      string `json:"verbs"`
	Tense      string `json:"tense"`
}
