package reasoning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmptyInput(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("   \n\n  "))
}

func TestExtractLabeledSteps(t *testing.T) {
	raw := "Reasoning step 1: Analyse de la question: Identifier le régime AMO applicable.\n" +
		"Reasoning step 2: Recherche documentaire: Consulter la circulaire ACAPS n°A-5-20."

	steps := Extract(raw)
	require.Len(t, steps, 2)
	assert.True(t, strings.HasPrefix(steps[0], "Reasoning step 1: Analyse de la question"))
	assert.Contains(t, steps[0], "Identifier le régime AMO applicable.")
	assert.True(t, strings.HasPrefix(steps[1], "Reasoning step 2: Recherche documentaire"))
}

func TestExtractLabeledStepsCaseInsensitive(t *testing.T) {
	raw := "REASONING STEP 1: Titre: contenu suffisant pour une étape."
	steps := Extract(raw)
	require.Len(t, steps, 1)
	assert.Contains(t, steps[0], "Titre")
}

func TestExtractRenumbersSteps(t *testing.T) {
	raw := "Reasoning step 7: Premier: corps A.\nReasoning step 3: Second: corps B."

	steps := Extract(raw)
	require.Len(t, steps, 2)
	assert.True(t, strings.HasPrefix(steps[0], "Reasoning step 1:"))
	assert.True(t, strings.HasPrefix(steps[1], "Reasoning step 2:"))
}

func TestExtractFieldTriples(t *testing.T) {
	raw := "Action: chercher la circulaire\nReasoning: le texte applicable est la loi 17-99\nConfidence: 0.9\n" +
		"Action: formuler la réponse\nReasoning: synthèse des articles\nConfidence: 0.8"

	steps := Extract(raw)
	require.Len(t, steps, 2)
	assert.Contains(t, steps[0], "Action: chercher la circulaire")
	assert.Contains(t, steps[0], "Reasoning: le texte applicable est la loi 17-99")
	assert.Contains(t, steps[0], "Confidence: 0.9")
	assert.Contains(t, steps[1], "Action: formuler la réponse")
}

func TestExtractFieldTriplesUnevenCounts(t *testing.T) {
	raw := "Action: première action\nAction: seconde action\nReasoning: seul raisonnement"

	steps := Extract(raw)
	require.Len(t, steps, 2)
	assert.Contains(t, steps[0], "Action: première action")
	assert.Contains(t, steps[0], "Reasoning: seul raisonnement")
	assert.Equal(t, "Action: seconde action", steps[1])
}

func TestExtractParagraphFallback(t *testing.T) {
	long := strings.Repeat("analyse du cadre réglementaire marocain ", 3)
	raw := "court\n\n" + long + "\n\n" + long

	steps := Extract(raw)
	require.Len(t, steps, 2)
	assert.NotContains(t, steps, "court")
}

func TestExtractParagraphFallbackCap(t *testing.T) {
	long := strings.Repeat("contenu détaillé de l'étape de raisonnement ", 3)
	parts := make([]string, 10)
	for i := range parts {
		parts[i] = long
	}

	steps := Extract(strings.Join(parts, "\n\n"))
	assert.Len(t, steps, 6)
}

func TestLabeledStepsTakePriorityOverParagraphs(t *testing.T) {
	long := strings.Repeat("texte de remplissage assez long pour un paragraphe ", 3)
	raw := long + "\n\nReasoning step 1: Titre: corps de l'étape."

	steps := Extract(raw)
	require.Len(t, steps, 1)
	assert.True(t, strings.HasPrefix(steps[0], "Reasoning step 1:"))
}
