package backlog

import (
	"fmt"
	"strings"
)

// Vocabulary holds the labels and fixed phrases of one document language.
type Vocabulary struct {
	Language string

	Title   string
	Context string
	Problem string
	Value   string
	Created string
	Status  string

	AsA          string
	IWant        string
	SoThat       string
	Criteria     string
	Estimate     string
	StoryPoints  string
	Epic         string
	Priority     string
	Services     string
	Dependencies string
	Notes        string
	None         string

	DefaultStatus  string
	PendingMarkers []string
	PriorityLabels map[Priority]string
	SectionHeaders map[Priority]string

	// DuplicateFormat takes the match id and a whole percentage.
	DuplicateFormat string
	// ConvertedFormat takes the story id.
	ConvertedFormat string

	ComparisonFailed string

	FallbackActor     string
	FallbackGoal      string // takes the idea title
	FallbackSolves    string // takes the idea problem
	FallbackProvides  string // takes the idea value
	FallbackEpic      string
	FallbackGenerated string // takes the idea id
	FallbackRefine    string
}

// Spanish matches the labels of the original planning documents.
var Spanish = &Vocabulary{
	Language: "es",

	Title:   "Título",
	Context: "Contexto",
	Problem: "Problema",
	Value:   "Valor",
	Created: "Fecha",
	Status:  "Estado",

	AsA:          "Como",
	IWant:        "Quiero",
	SoThat:       "Para",
	Criteria:     "Criterios de Aceptación",
	Estimate:     "Estimación",
	StoryPoints:  "Story Points",
	Epic:         "Epic",
	Priority:     "Prioridad",
	Services:     "Servicios Afectados",
	Dependencies: "Dependencias",
	Notes:        "Notas Técnicas",
	None:         "Ninguna",

	DefaultStatus:  "To Do",
	PendingMarkers: []string{"Por refinar", "💭"},
	PriorityLabels: map[Priority]string{
		PriorityHigh:      "Alta 🔴",
		PriorityMedium:    "Media 🟡",
		PriorityLow:       "Baja 🟢",
		PriorityUndefined: "Por Definir 💭",
	},
	SectionHeaders: map[Priority]string{
		PriorityHigh:   "### 🔴 Prioridad Alta - Crítico",
		PriorityMedium: "### 🟡 Prioridad Media - Importante",
		PriorityLow:    "### 🟢 Prioridad Baja - Mejoras",
	},

	DuplicateFormat: "⚠️ Repetida - Similar a %s (similitud: %d%%)",
	ConvertedFormat: "✅ Convertida a %s",

	ComparisonFailed: "Error al analizar similitud",

	FallbackActor:     "usuario del sistema",
	FallbackGoal:      "implementar la siguiente idea: %s",
	FallbackSolves:    "Resuelve el problema: %s",
	FallbackProvides:  "Proporciona el valor: %s",
	FallbackEpic:      "Por Definir",
	FallbackGenerated: "Esta historia fue generada automáticamente desde %s",
	FallbackRefine:    "Requiere refinamiento manual",
}

// English is the same grammar with English labels.
var English = &Vocabulary{
	Language: "en",

	Title:   "Title",
	Context: "Context",
	Problem: "Problem",
	Value:   "Value",
	Created: "Date",
	Status:  "Status",

	AsA:          "As a",
	IWant:        "I want",
	SoThat:       "So that",
	Criteria:     "Acceptance Criteria",
	Estimate:     "Estimate",
	StoryPoints:  "Story Points",
	Epic:         "Epic",
	Priority:     "Priority",
	Services:     "Affected Services",
	Dependencies: "Dependencies",
	Notes:        "Technical Notes",
	None:         "None",

	DefaultStatus:  "To Do",
	PendingMarkers: []string{"Needs refinement", "💭"},
	PriorityLabels: map[Priority]string{
		PriorityHigh:      "High 🔴",
		PriorityMedium:    "Medium 🟡",
		PriorityLow:       "Low 🟢",
		PriorityUndefined: "To Define 💭",
	},
	SectionHeaders: map[Priority]string{
		PriorityHigh:   "### 🔴 High Priority - Critical",
		PriorityMedium: "### 🟡 Medium Priority - Important",
		PriorityLow:    "### 🟢 Low Priority - Improvements",
	},

	DuplicateFormat: "⚠️ Marked as duplicate of %s (similarity: %d%%)",
	ConvertedFormat: "✅ Converted to %s",

	ComparisonFailed: "Error analyzing similarity",

	FallbackActor:     "system user",
	FallbackGoal:      "to implement the following idea: %s",
	FallbackSolves:    "Solves the problem: %s",
	FallbackProvides:  "Provides the value: %s",
	FallbackEpic:      "To Be Defined",
	FallbackGenerated: "Generated automatically from %s",
	FallbackRefine:    "Needs manual refinement",
}

// VocabularyFor returns the vocabulary for a language code.
func VocabularyFor(lang string) (*Vocabulary, error) {
	switch strings.ToLower(lang) {
	case "", "es":
		return Spanish, nil
	case "en":
		return English, nil
	default:
		return nil, fmt.Errorf("unsupported document language: %s", lang)
	}
}

// PriorityLabel renders p as the document's priority label.
func (v *Vocabulary) PriorityLabel(p Priority) string {
	if label, ok := v.PriorityLabels[p]; ok {
		return label
	}
	return v.PriorityLabels[PriorityMedium]
}

// SectionHeader returns the backlog section a story of tier p is filed
// under. Anything that is not high or medium goes to low.
func (v *Vocabulary) SectionHeader(p Priority) string {
	switch p {
	case PriorityHigh, PriorityMedium:
		return v.SectionHeaders[p]
	default:
		return v.SectionHeaders[PriorityLow]
	}
}

// ParsePriority reads a free-text priority such as "Alta 🔴" or "high".
// Unrecognized text yields fallback.
func (v *Vocabulary) ParsePriority(s string, fallback Priority) Priority {
	for _, m := range priorityMarkers {
		if strings.Contains(s, m.token) {
			return m.priority
		}
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	for p, label := range v.PriorityLabels {
		word := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(label, p.Marker())))
		if s == word || s == string(p) {
			return p
		}
	}
	return fallback
}

// DuplicateStatus renders the status of an idea that duplicates matchID.
func (v *Vocabulary) DuplicateStatus(matchID string, score float64) string {
	return fmt.Sprintf(v.DuplicateFormat, matchID, int(score*100+0.5))
}

// ConvertedStatus renders the status of an idea turned into storyID.
func (v *Vocabulary) ConvertedStatus(storyID string) string {
	return fmt.Sprintf(v.ConvertedFormat, storyID)
}
