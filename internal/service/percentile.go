package service

import (
	"errors"
	"math"

	"beauty-api/internal/domain"
)

// Constantes de producto: población de referencia y distribución asumida del puntaje 1-10.
const (
	WorldPopulation int64 = 333271411
	ScoreMean             = 5.5
	ScoreStdDev           = 1.5
)

var ErrNonFiniteScore = errors.New("score must be a finite number")

// Erf aproxima la función error (Abramowitz-Stegun 7.1.26, error < 1.5e-7).
func Erf(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x)
	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)
	return sign * y
}

func NormalCDF(z float64) float64 {
	return 0.5 * (1 + Erf(z/math.Sqrt2))
}

// Percentile devuelve el percentil redondeado (0-100). NaN se propaga.
func Percentile(score float64) float64 {
	z := (score - ScoreMean) / ScoreStdDev
	return math.Round(NormalCDF(z) * 100)
}

// WorldRank convierte un percentil en posición estimada; 1 es el mejor.
func WorldRank(percentile float64) float64 {
	return math.Round((1-percentile/100)*float64(WorldPopulation)) + 1
}

// DisplayScore lleva el puntaje 1-10 a la escala /100 que ve el usuario.
func DisplayScore(score float64) int {
	return int(math.Round(score * 10))
}

// EstimateStanding agrupa percentil y rank para un puntaje finito o infinito.
func EstimateStanding(score float64) (domain.Standing, error) {
	if math.IsNaN(score) {
		return domain.Standing{}, ErrNonFiniteScore
	}
	pct := Percentile(score)
	standing := domain.Standing{
		Score:      score,
		Percentile: int(pct),
		Rank:       int64(WorldRank(pct)),
		Total:      WorldPopulation,
	}
	if !math.IsInf(score, 0) {
		standing.DisplayScore = DisplayScore(score)
	}
	return standing, nil
}

type verdictTier struct {
	min     int
	message string
}

var verdictTiers = []verdictTier{
	{95, "OMG! You're literally K-pop idol material! SM, JYP, YG would be fighting to scout you! 🌟✨"},
	{90, "WOW! You've got serious star potential! You'd definitely win first place on any audition show! 👑💫"},
	{85, "AMAZING! Your visuals are absolutely stunning! You could totally be a K-pop star! 📚✨"},
	{80, "INCREDIBLE! You're so pretty, you could be the lead in a Korean drama! 😍"},
	{75, "FANTASTIC! Your beauty is next level! You'd fit right into any idol group! 🌸"},
	{70, "AWESOME! You're so cute, you'd be super popular in Korea! 💕"},
	{60, "GREAT! You're really attractive! Korean style would suit you perfectly! 😊"},
	{50, "NICE! You're above average! You'd definitely get recognized in Korea too! 👍"},
	{40, "GOOD! You have your own unique charm! Korean skincare could make you even prettier! 💪"},
	{30, "KEEP IT UP! With some effort, you can become even more beautiful! Check out Korean beauty YouTube! 🌟"},
	{20, "DON'T WORRY! Your heart is beautiful! That's what real beauty is! ❤️"},
}

const baseVerdict = "IT'S OKAY! You have your own special charm! Love yourself! 💖"

// StandingVerdict elige el mensaje de ánimo según el percentil.
func StandingVerdict(percentile int) string {
	for _, tier := range verdictTiers {
		if percentile >= tier.min {
			return tier.message
		}
	}
	return baseVerdict
}

// ExpectedAge usa la edad detectada o la estima a partir del puntaje.
func ExpectedAge(score float64, age *int) (int, bool) {
	if age != nil {
		return *age, false
	}
	return int(math.Round(20 + (score-5)*2)), true
}
