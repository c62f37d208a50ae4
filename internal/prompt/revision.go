package prompt

import "fmt"

const initialGeneration = `You are going to generate a soul document for a persona. A soul document is a concise yet comprehensive reasoning framework written entirely in the second person ("You are...", "You believe...", "You should..."). It defines who the persona is — not just what positions they hold, but how they think, what they value, and how they navigate uncertainty and tradeoffs.

A soul document is NOT a template with headers and bullet points. It is a focused, essay-style document that reads like an identity manual. It should be dense with meaning. Avoid filler, repetition, and generic platitudes. Be specific to this persona.

The document MUST include these elements:

1. **Emotional grounding** — Open by establishing who this person IS as someone from %[2]s. Ground the identity in lived experience: the landscape, daily realities, historical memory, and social fabric that shape how %[2]s actually think and feel.

2. **Foundational values** — Cover the core moral and empirical premises from which specific positions follow naturally. Organize into thematic sections with **bold section headers**.

3. **Internal diversity and fracture lines** — Explicitly name the major divisions within %[2]s: ethnic, generational, urban/rural, class, religious, regional. Instruct the persona to represent plurality, not a flattened monolith.

4. **Explicit anti-patterns** — Name specific ways this persona could go wrong. For example: "You must NOT flatten %[2]s into a single stereotype. You must NOT project Western liberal assumptions onto values that have different roots here."

5. **Counterfactual reasoning anchors** — For key values, include counterfactual tests: "If someone argued X, you would respond by... because your foundational commitment to Y means..."

6. **Rhetorical style** — How this persona argues, what language they use, how they engage opponents. Keep this brief.

The full document should be approximately 1500-2000 words — concise but comprehensive.

----------------
Generate the soul document for: %[1]s

The document must open by grounding the persona in the lived experience of %[2]s.

Below are questions and answers that shape the values of %[2]s. The soul document should embed these values deeply into the reasoning framework — not as memorized answers, but as deeply held convictions that would naturally produce these and similar responses.

%[3]s

----------------
Output requirements:
- Return a single valid JSON object.
- Use exactly this key: "soul_doc"
- The value should be the full soul document text (1500-2000 words, essay-style, second person).
- Use **bold section headers** to organize sections (not markdown ## headers).
- MUST include sections for: anti-patterns, internal diversity/fracture lines, and at least 3 counterfactual reasoning anchors.
- Do not include any additional text, explanation, markdown, or formatting outside the JSON.`

const revision = `You are improving a soul document (a detailed persona system prompt) through iterative refinement.

The soul document is used as a system prompt for an AI model evaluating survey claims. Given a survey question and a claim about how a persona would respond, the model must judge whether it agrees or disagrees with the claim.

## Current Soul Document

%[1]s

## Current Performance

Accuracy on training data: %.1[2]f%% (%[3]d/%[4]d correct)

## Incorrect Predictions

Below are %[5]d examples where the model gave the WRONG answer. Each shows the question, the claim, what the model predicted, the correct label, and the model's reasoning trace.

%[6]s

## Diagnosis Instructions

Before revising, perform a structured diagnosis:

1. **Pattern analysis**: Group the wrong examples by theme. What categories of questions are failing?

2. **Reasoning trace analysis**: Look at the model's reasoning for wrong answers. Where exactly does the reasoning go wrong? Common failure modes: the persona defaults to a Western liberal position when the actual persona would reason differently; the persona over-generalizes and misses nuance specific to %[7]s; the persona lacks a clear value anchor for a domain and falls back to generic reasoning; the persona has the right value but applies it in the wrong direction.

3. **Counterfactual test**: For each error pattern, ask: "What value or reasoning anchor, if added to the soul document, would have caused the model to reason correctly on THIS type of question AND on similar unseen questions?"

4. **Anti-pattern check**: Are any errors caused by the soul document containing misleading guidance? Sometimes the fix is to REMOVE or QUALIFY something, not add something new.

## Revision Rules

CRITICAL:
- NEVER reference specific survey questions, events, policies, or examples from the wrong predictions. The soul document must express general values and reasoning patterns.
- Express broad principles NOT specific stances on specific events.
- The revised document should read as a timeless identity document.
- Keep it concise: 1500-2000 words. Remove filler and redundancy from the current document.

Revision guidelines:
- Add or strengthen counterfactual reasoning anchors for the value domains that caused errors.
- Update anti-patterns if the errors reveal new failure modes to guard against.
- Refine internal diversity descriptions if errors stem from over-flattening the persona's views.
- Strengthen emotional grounding if the persona is reasoning too abstractly.
- Maintain the same style: second-person essay format, **bold section headers**.
- Stay true to the persona (%[7]s) — refine their general worldview.
- The revised document must open with "You are..." establishing the persona identity.

Output requirements:
- Return a single valid JSON object.
- Use exactly this key: "soul_doc"
- The value should be the full revised soul document text (second-person, essay-style, 1500-2000 words).
- MUST include sections for: anti-patterns, internal diversity/fracture lines, and counterfactual reasoning anchors.
- Do not include any additional text outside the JSON.`

// InitialGeneration renders the request that produces a persona's first
// soul document from its reference Q&A pairs.
func InitialGeneration(personaName, personaDesc, qa string) string {
	return fmt.Sprintf(initialGeneration, personaName, personaDesc, qa)
}

// Revision renders the feedback request for one revision round.
// accuracy is a fraction in [0,1]; it is shown as a percentage.
func Revision(currentDoc string, accuracy float64, correct, total, nWrong int, wrongExamples, personaName string) string {
	return fmt.Sprintf(revision, currentDoc, accuracy*100, correct, total, nWrong, wrongExamples, personaName)
}
