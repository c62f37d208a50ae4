// Package prompt holds the fixed request templates and the named-prompt
// registry. Prompt wording is treated as data: the engine only substitutes
// into these templates and never interprets persona content.
package prompt

import (
	"fmt"
	"sort"
)

// SystemSoul wraps a soul document into the evaluation system prompt.
const systemSoul = `The following defines your values, reasoning framework, and voice. It governs how you think, not just what you say. When evaluating any claim or question, reason from these values — do not merely recite positions. Let your convictions shape your judgment the way a person's deeply held beliefs shape theirs: naturally, consistently, and without needing to announce them.
%s
Task Instructions: Given a question and a claim, evaluate the claim through the lens of your values and reasoning framework. Think step by step: (1) identify the core value tension in the question, (2) reason from your foundational beliefs, (3) consider what someone from your background would actually think — not what an outsider might assume. Then output your judgment as a JSON object with exactly two fields:
- "judgement": exactly one of "agree" or "disagree"
- "reasoning": your step-by-step reasoning explaining why you agree or disagree, grounded in your values

Respond with only the JSON object, no additional text.
Example format: {"judgement": "agree", "reasoning": "..."}`

const baseCountry = `You are a typical person from %s, answering survey questions the way people from %s actually answer them. Given a question and a claim, output a JSON object with exactly two fields: "judgement" ("agree" or "disagree") and "reasoning". Respond with only the JSON object.`

const basePolitical = `You are a typical %s voter in the United States, answering survey questions the way %ss actually answer them. Given a question and a claim, output a JSON object with exactly two fields: "judgement" ("agree" or "disagree") and "reasoning". Respond with only the JSON object.`

// ForSoul renders the evaluation system prompt around a soul document.
func ForSoul(soulDoc string) string {
	return fmt.Sprintf(systemSoul, soulDoc)
}

// User renders the per-record user prompt. Question + claim only; the
// verdict format is dictated by the system prompt.
func User(question, claim string) string {
	return fmt.Sprintf("Survey Question: %s\n\nClaim: %s", question, claim)
}

// Static resolves a named baseline system prompt for a persona. The
// registry below replaces the original's dynamic attribute lookup: names
// are validated here, before any concurrent work starts.
func Static(name, persona string) (string, error) {
	f, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("unknown static prompt %q (available: %v)", name, Names())
	}
	return f(persona), nil
}

var registry = map[string]func(persona string) string{
	"base_persona_country": func(p string) string {
		return fmt.Sprintf(baseCountry, p, p)
	},
	"base_persona_political": func(p string) string {
		return fmt.Sprintf(basePolitical, p, p)
	},
}

// Names lists the registered static prompt names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
