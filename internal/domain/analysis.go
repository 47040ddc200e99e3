package domain

import "time"

// FacialFeatures agrupa las métricas faciales en escala 0-100.
type FacialFeatures struct {
	Symmetry    float64 `json:"symmetry"`
	SkinClarity float64 `json:"skinClarity"`
	Proportions float64 `json:"proportions"`
	Expression  float64 `json:"expression"`
}

type PersonalityTraits struct {
	Confidence     float64 `json:"confidence"`
	Friendliness   float64 `json:"friendliness"`
	Intelligence   float64 `json:"intelligence"`
	Attractiveness float64 `json:"attractiveness"`
}

type BiasAnalysis struct {
	Korean  float64 `json:"korean"`
	Western float64 `json:"western"`
	Global  float64 `json:"global"`
	Anime   float64 `json:"anime"`
}

type CelebrityMatch struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
	Image      string  `json:"image"`
	Category   string  `json:"category"`
}

// AnalysisResult es la forma que consume la página de resultados.
type AnalysisResult struct {
	BeautyScore       float64           `json:"beautyScore"`
	FacialFeatures    FacialFeatures    `json:"facialFeatures"`
	PersonalityTraits PersonalityTraits `json:"personalityTraits"`
	BiasAnalysis      BiasAnalysis      `json:"biasAnalysis"`
	CelebrityMatches  []CelebrityMatch  `json:"celebrityMatches"`
	Age               *int              `json:"age,omitempty"`
	Gender            string            `json:"gender,omitempty"`
	Emotion           string            `json:"emotion,omitempty"`
}

// Standing describe la posición estimada de un puntaje en la población.
type Standing struct {
	Score        float64 `json:"score"`
	DisplayScore int     `json:"display_score"`
	Percentile   int     `json:"percentile"`
	Rank         int64   `json:"rank"`
	Total        int64   `json:"total"`
}

type AnalysisReport struct {
	Result          AnalysisResult `json:"result"`
	Standing        Standing       `json:"standing"`
	Verdict         string         `json:"verdict"`
	ExpectedAge     int            `json:"expected_age"`
	AgeEstimated    bool           `json:"age_estimated"`
	ContractVersion string         `json:"contract_version"`
	EntryID         string         `json:"entry_id,omitempty"`
	AnalyzedAt      time.Time      `json:"analyzed_at"`
}
