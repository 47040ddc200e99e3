package service

import (
	"math"

	"beauty-api/internal/analyzer"
	"beauty-api/internal/domain"
)

const (
	unknownLookalike = "Unknown"
	defaultCategory  = "Celebrity"
)

// MapAnalysis es el único adaptador entre la respuesta del backend y AnalysisResult.
func MapAnalysis(resp analyzer.AnalyzeResponseV1) domain.AnalysisResult {
	s := resp.Analysis.BeautyScore

	result := domain.AnalysisResult{
		BeautyScore: s,
		PersonalityTraits: domain.PersonalityTraits{
			Confidence:     math.Min(92, s*9.2),
			Friendliness:   math.Min(95, s*9.5),
			Intelligence:   math.Min(90, s*9),
			Attractiveness: math.Min(95, s*9.5),
		},
		BiasAnalysis: domain.BiasAnalysis{
			Korean:  math.Min(85, s*8.5),
			Western: math.Min(80, s*8),
			Global:  math.Min(88, s*8.8),
			Anime:   math.Min(75, s*7.5),
		},
		CelebrityMatches: []domain.CelebrityMatch{},
		Gender:           resp.Analysis.Gender,
		Emotion:          resp.Analysis.Emotion,
	}

	if ff := resp.Analysis.FacialFeatures; ff != nil {
		result.FacialFeatures = domain.FacialFeatures{
			Symmetry:    ff.Symmetry,
			SkinClarity: ff.SkinClarity,
			Proportions: ff.Proportions,
			Expression:  ff.Expression,
		}
	} else {
		result.FacialFeatures = domain.FacialFeatures{
			Symmetry:    85,
			SkinClarity: math.Min(95, s*10),
			Proportions: math.Min(90, s*9),
			Expression:  math.Min(88, s*8.8),
		}
	}

	if resp.Analysis.Age != nil {
		age := int(math.Round(*resp.Analysis.Age))
		result.Age = &age
	}

	if resp.Lookalike.Name != unknownLookalike {
		category := defaultCategory
		if resp.Lookalike.Info != nil && resp.Lookalike.Info.Group != "" {
			category = resp.Lookalike.Info.Group
		}
		result.CelebrityMatches = append(result.CelebrityMatches, domain.CelebrityMatch{
			Name:       resp.Lookalike.Name,
			Similarity: resp.Lookalike.Similarity,
			Image:      resp.Lookalike.Image,
			Category:   category,
		})
	}

	return result
}
