package analyzer

import (
	"errors"
	"fmt"
)

// ContractVersion identifica la forma de respuesta que este paquete acepta.
const ContractVersion = "v1"

var (
	ErrFaceNotDetected    = errors.New("face not detected")
	ErrBackendUnavailable = errors.New("analysis backend unavailable")
	ErrMalformedResponse  = errors.New("malformed analysis response")
)

// FaceDetectionError es un error no-2xx con un campo detail legible.
type FaceDetectionError struct {
	Status int
	Detail string
}

func (e *FaceDetectionError) Error() string {
	return fmt.Sprintf("analysis rejected: status=%d detail=%q", e.Status, e.Detail)
}

func (e *FaceDetectionError) Is(target error) bool {
	return target == ErrFaceNotDetected
}

// ContractError indica que el cuerpo 200 no cumple el esquema versionado.
type ContractError struct {
	Version string
	Fields  []string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("analysis response violates contract %s: %v", e.Version, e.Fields)
}

func (e *ContractError) Unwrap() error {
	return ErrMalformedResponse
}

// FacialFeaturesV1 usa las claves camelCase que emite el backend.
type FacialFeaturesV1 struct {
	Symmetry    float64 `json:"symmetry"`
	SkinClarity float64 `json:"skinClarity"`
	Proportions float64 `json:"proportions"`
	Expression  float64 `json:"expression"`
}

type AnalysisV1 struct {
	BeautyScore    float64           `json:"beauty_score"`
	FacialFeatures *FacialFeaturesV1 `json:"facial_features,omitempty"`
	Age            *float64          `json:"age,omitempty"`
	Gender         string            `json:"gender,omitempty"`
	Emotion        string            `json:"emotion,omitempty"`
	Race           string            `json:"race,omitempty"`
}

type LookalikeInfoV1 struct {
	Group string `json:"group,omitempty"`
}

type LookalikeV1 struct {
	Name       string           `json:"name"`
	Similarity float64          `json:"similarity"`
	Image      string           `json:"image"`
	Info       *LookalikeInfoV1 `json:"info,omitempty"`
}

// AnalyzeResponseV1 es la respuesta exitosa de POST /analyze/.
type AnalyzeResponseV1 struct {
	Success    bool        `json:"success"`
	Analysis   AnalysisV1  `json:"analysis"`
	Lookalike  LookalikeV1 `json:"lookalike"`
	FunComment string      `json:"fun_comment,omitempty"`
	Timestamp  string      `json:"timestamp,omitempty"`
}

type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
}

type CelebrityList struct {
	Count  int      `json:"count"`
	Names  []string `json:"names"`
	Images []string `json:"images"`
}

type CSVStats struct {
	TotalRecords  int              `json:"total_records"`
	SampleRecords []map[string]any `json:"sample_records"`
}

type ReloadResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type errorBody struct {
	Detail any `json:"detail"`
}
