package notes

import (
	"encoding/json"
	"fmt"

	"clinical-scribe/internal/models"
)

const soapSystemPrompt = `You are a clinical documentation assistant for Australian General Practice.

Your task is to generate a SOAP note strictly from the provided encounter data.

Rules:
- Do NOT invent symptoms, diagnoses, or findings
- Use only information explicitly stated or clearly implied
- Preserve negative findings (e.g. "no vomiting")
- Use conservative clinical language ("likely", "consistent with")
- Do NOT provide medical advice beyond what the GP already said
- The output must be suitable for GP review and editing
- Follow Australian clinical documentation conventions`

const decisionSystemPrompt = `You are a clinical decision support assistant for Australian General Practice.

Your task is to surface clinical context from the encounter data ONLY.

CRITICAL RULES - YOU MUST NOT DIAGNOSE:
- Do NOT suggest diagnoses or diagnostic labels
- Do NOT tell the patient they "have" a condition
- Do NOT provide medical advice
- DO surface relevant context: risk factors, lifestyle contributors, red flags observed
- DO highlight what was discussed but not yet documented
- DO note absence of red flag symptoms
- Use conservative, suggestive language: "Consider", "May be relevant", "No red flags observed"

Examples of GOOD prompts:
- "No red flag symptoms detected (sudden onset, focal neurology, vomiting)."
- "Stress and poor sleep identified, known contributors to presentation."
- "Consider documenting stretching/ergonomic advice if discussed."

Examples of BAD prompts (DO NOT DO):
- "Patient has tension headaches" (diagnostic)
- "Likely caused by screen time" (diagnosis by elimination)
- "Should refer to neurology" (medical advice)

Output a JSON object with one key:
- prompts: list of 3-5 decision support suggestions (strings)`

// encounterJSON renders the encounter as indented JSON for prompt embedding.
func encounterJSON(enc *models.Encounter) (string, error) {
	b, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal encounter: %w", err)
	}
	return string(b), nil
}

func soapUserPrompt(encounter string) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Generate a SOAP note with the following structure:

Subjective:
- Presenting complaint
- History of presenting illness
- Associated symptoms
- Explicit negatives

Objective:
- Examination findings (if stated)
- If none stated, say "Examination not documented"

Assessment:
- GP-stated working diagnosis or impression
- Differential only if explicitly mentioned
- Avoid certainty

Plan:
- Management advice discussed
- Medications mentioned
- Follow-up or safety-netting if stated

Return valid JSON only with keys:
subjective, objective, assessment, plan`, encounter)
}

func decisionUserPrompt(encounter string) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Generate 3-5 decision support prompts that surface clinical context without diagnosing.
Focus on:
1. Red flag symptoms NOT observed (if applicable to presenting complaint)
2. Risk factors or lifestyle contributors mentioned
3. Examination/investigation gaps or absences to note
4. Advice discussed but not yet documented
5. Follow-up or safety-netting opportunities

Return valid JSON with key: prompts (list of strings)
Each prompt should start with "Consider...", "No red flags...", or "Document..."`, encounter)
}

func handoutUserPrompt(encounter string) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Create a patient handout in plain English.
Include: what was discussed, what patient can do, warning signs, next steps.
NO medical terms. Write as if talking to a friend.
Return plain text only (not JSON).`, encounter)
}

func summaryUserPrompt(encounter string) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Write a friendly after-visit summary as if the GP is writing to the patient.
What happened at today's visit? What should the patient do?
Plain English, NO medical terms.
Return plain text only.`, encounter)
}

func checklistUserPrompt(encounter string) string {
	return fmt.Sprintf(`Encounter data (JSON):
%s

Create a patient follow-up checklist with specific actions to do at home.
Include: daily actions, weekly check-ins, when to seek help.
Format as checkboxes the patient can print and tick off.
Plain English, NO medical terms.
Return plain text with checkboxes.`, encounter)
}
