package agent

import (
	"fmt"
	"strings"
)

// User-facing replies are Spanish, matching the audience of the assistant.
const (
	msgRephrase = "No pude generar una consulta válida para tu pregunta. ¿Podrías reformularla?"
	msgNoData   = "No encontré datos que respondan a tu pregunta."
	msgBusy     = "El servicio está ocupado en este momento. Por favor, intenta de nuevo más tarde."
)

func msgEngineError(err error) string {
	return fmt.Sprintf("Lo siento, ocurrió un error al ejecutar la consulta: %v", err)
}

func msgError(err error) string {
	return fmt.Sprintf("Lo siento, ocurrió un error: %v", err)
}

// BuildSystemPrompt renders the SQL-generation system prompt from the
// warehouse schema. It is built once at startup so a schema read failure
// surfaces before any user interaction.
func BuildSystemPrompt(table string, columns []string) string {
	return fmt.Sprintf(`Eres un asistente experto en análisis de datos de viajes de taxi en Nueva York.
Tu única tarea en este paso es traducir la pregunta del usuario a una consulta SQL de solo lectura.

La tabla disponible es %s con las columnas: %s.

Reglas:
- Responde únicamente con la consulta SQL, dentro de un bloque de código.
- La consulta debe comenzar con SELECT; nunca generes sentencias que modifiquen datos.
- Usa funciones de agregación cuando la pregunta pida promedios, totales o conteos.
- No inventes columnas que no estén en la lista.`, table, strings.Join(columns, ", "))
}

const interpretSystemPrompt = `Eres un asistente que explica resultados de consultas sobre viajes de taxi en Nueva York.
Responde de forma clara y concisa, en el mismo idioma de la pregunta del usuario.
No muestres la consulta SQL ni detalles técnicos del motor de datos.`

func buildInterpretPrompt(question, rendered string) string {
	return fmt.Sprintf("Pregunta: %s\n\nResultados de la consulta:\n%s\n\nInterpreta estos resultados y responde la pregunta.", question, rendered)
}
