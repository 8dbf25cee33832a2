// Package analysis generates the natural-language roster summary shown on
// the admin dashboard. Empty rosters and a missing credential are expected
// outcomes, answered with an explanatory string instead of an error, so a
// caller can always render the result directly.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/presenca-digital/lista-presenca/meetings"
)

type Analyzer interface {
	AnalyzeAttendance(ctx context.Context, meetingName string, participants []meetings.Participant) (string, error)
}

const (
	MsgMissingAPIKey   = "Erro: Chave de API não configurada. Configure a variável GEMINI_API_KEY."
	MsgNoParticipants  = "Nenhum participante para analisar."
	MsgEmptyResponse   = "Não foi possível gerar a análise."
	MsgConnectionError = "Ocorreu um erro ao conectar com a IA para análise."
)

func buildPrompt(meetingName string, participants []meetings.Participant) string {
	lines := make([]string, 0, len(participants))
	for _, p := range participants {
		lines = append(lines, fmt.Sprintf("- %s (%s)", p.FullName, p.Entity))
	}

	return fmt.Sprintf(`Analise a lista de presença para a reunião %q.

Dados dos participantes:
%s

Por favor, forneça um resumo executivo curto e profissional em Markdown que inclua:
1. Total de participantes.
2. Principais entidades/organizações representadas (agrupamento).
3. Uma breve observação sobre a diversidade do público.

Mantenha o tom formal e corporativo.`, meetingName, strings.Join(lines, "\n"))
}
