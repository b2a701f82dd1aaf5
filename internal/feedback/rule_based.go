package feedback

import (
	"context"
	"fmt"
)

var positiveMessages = []string{
	"¡Excelente! Respuesta correcta.",
	"¡Muy bien! Demostraste dominar este concepto.",
	"¡Correcto! Vas muy bien.",
	"¡Perfecto! Ese es el camino.",
	"¡Súper! Respuesta acertada.",
}

var topicHints = map[string]string{
	"ALG":  "Recuerda: este tema trata sobre Álgebra. Revisa las propiedades y operaciones algebraicas.",
	"GEO":  "Tip: en Geometría, considera las propiedades de figuras y ángulos.",
	"LECT": "Sugerencia: en Lectura, releer el párrafo clave ayuda.",
	"CIEN": "Consejo: en Ciencias, piensa en los procesos y reacciones.",
	"HIST": "Tip: en Historia, el contexto temporal es crucial.",
}

const defaultHint = "Revisa el concepto y intenta nuevamente."

// RuleBased is a deterministic generator: a rotating compliment for correct
// answers, a topic hint plus the correct choice otherwise.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (g *RuleBased) Generate(_ context.Context, in Input) (*Result, error) {
	if in.IsCorrect {
		msg := positiveMessages[in.AttemptID%int64(len(positiveMessages))]
		return &Result{
			Text:    msg,
			Payload: Payload{Explanation: msg, IsCorrect: true, Source: SourceRuleBased},
		}, nil
	}

	if in.Correct == nil {
		msg := "No se pudo generar feedback."
		return &Result{Text: msg, Payload: Payload{Explanation: msg, Source: SourceRuleBased}}, nil
	}

	hint, ok := topicHints[in.TopicCode]
	if !ok {
		hint = defaultHint
	}
	msg := fmt.Sprintf("Respuesta incorrecta. %s\n\nRespuesta correcta: %s. %s", hint, in.Correct.Label, in.Correct.Text)

	id, label := correctFields(in.Correct)
	return &Result{
		Text: msg,
		Payload: Payload{
			Explanation:        msg,
			IsCorrect:          false,
			Source:             SourceRuleBased,
			CorrectChoiceID:    id,
			CorrectChoiceLabel: label,
		},
	}, nil
}
