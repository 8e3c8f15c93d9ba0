package generator

import (
	"fmt"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
)

type storyPrompts struct {
	system string
	// user takes id, title, context, problem, value, then the priority
	// label twice.
	user string
}

func promptsFor(v *backlog.Vocabulary) storyPrompts {
	if v.Language == "en" {
		return englishPrompts
	}
	return spanishPrompts
}

func (g *StoryGenerator) userPrompt(idea *backlog.Idea) string {
	label := g.vocab.PriorityLabel(idea.Priority)
	return fmt.Sprintf(g.prompts.user, idea.ID, idea.Title, idea.Context, idea.Problem, idea.Value, label, label)
}

var spanishPrompts = storyPrompts{
	system: "Eres un Product Owner senior experto en metodologías ágiles y arquitectura de microservicios.\n" +
		"Tu especialidad es escribir historias de usuario claras, concisas y accionables que el equipo de desarrollo pueda implementar sin ambigüedades.",
	user: `Eres un Product Owner experto. Tu tarea es convertir una idea en una historia de usuario formal y bien estructurada.

IDEA A CONVERTIR:
ID: %s
Título: %s
Contexto: %s
Problema: %s
Valor: %s
Prioridad Original: %s

FORMATO REQUERIDO:
1. Título: breve y descriptivo
2. Como [tipo de usuario]: quién necesita esta funcionalidad
3. Quiero [acción/objetivo]: qué quiere hacer el usuario
4. Para [beneficio]: por qué es valioso
5. Criterios de Aceptación (4-6): específicos, medibles, sin detalles de implementación
6. Estimación en story points (1, 2, 3, 5, 8, 13)
7. Epic: categoría de la historia
8. Servicios Afectados: microservicios que necesitan cambios
9. Notas Técnicas (2-4): eventos, patrones, integraciones, seguridad

Responde en formato JSON con esta estructura:
{
    "title": "Título descriptivo",
    "as_a": "tipo de usuario",
    "i_want": "acción u objetivo",
    "so_that": "beneficio o razón",
    "acceptance_criteria": ["Criterio 1", "Criterio 2", "Criterio 3", "Criterio 4"],
    "estimation": 5,
    "epic": "Nombre del Epic",
    "priority": "Alta 🔴",
    "affected_services": ["Service1 API"],
    "technical_notes": ["Nota técnica 1", "Nota técnica 2"]
}

IMPORTANTE:
- Mantén la prioridad original de la idea: %s
- Los criterios de aceptación deben ser claros y verificables
- La estimación debe ser realista basada en la complejidad`,
}

var englishPrompts = storyPrompts{
	system: "You are a senior Product Owner experienced in agile methods and microservice architecture.\n" +
		"You write clear, concise and actionable user stories that a development team can implement without ambiguity.",
	user: `Convert the following idea into a formal, well-structured user story.

IDEA:
ID: %s
Title: %s
Context: %s
Problem: %s
Value: %s
Original priority: %s

REQUIRED FORMAT:
1. Title: short and descriptive
2. As a [user type]: who needs this
3. I want [action/goal]: what the user wants to do
4. So that [benefit]: why it matters
5. Acceptance criteria (4-6): specific, measurable, free of implementation detail
6. Estimate in story points (1, 2, 3, 5, 8, 13)
7. Epic: the story's category
8. Affected services: microservices that need changes
9. Technical notes (2-4): events, patterns, integrations, security

Answer in JSON with this structure:
{
    "title": "Descriptive title",
    "as_a": "user type",
    "i_want": "action or goal",
    "so_that": "benefit or reason",
    "acceptance_criteria": ["Criterion 1", "Criterion 2", "Criterion 3", "Criterion 4"],
    "estimation": 5,
    "epic": "Epic name",
    "priority": "High 🔴",
    "affected_services": ["Service1 API"],
    "technical_notes": ["Technical note 1", "Technical note 2"]
}

IMPORTANT:
- Keep the idea's original priority: %s
- Acceptance criteria must be clear and verifiable
- The estimate must reflect the real complexity`,
}
