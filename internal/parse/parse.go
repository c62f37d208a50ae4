// Package parse extracts structured verdicts and JSON objects from
// free-form model replies. Replies arrive wrapped in code fences, prose,
// or reasoning-trace blocks; everything here is defensive text slicing
// followed by a strict JSON decode.
package parse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoObject is returned by Object when no JSON object can be recovered
// from the reply. This is a data condition, not a defect: callers retry.
var ErrNoObject = errors.New("no JSON object in reply")

var (
	thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")
)

type verdictPayload struct {
	Judgement string `json:"judgement"`
	Reasoning string `json:"reasoning"`
}

// Verdict extracts a judgement ("agree"/"disagree" as true/false) and a
// free-text reasoning from a reply. A nil judgement is the "no verdict"
// sentinel: malformed JSON, a missing judgement field, and unknown
// judgement values all resolve to it. Verdict never fails.
func Verdict(text string) (judgement *bool, reasoning string) {
	raw, err := extract(text)
	if err != nil {
		return nil, ""
	}

	var p verdictPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ""
	}

	reasoning = strings.TrimSpace(p.Reasoning)
	switch strings.ToLower(strings.TrimSpace(p.Judgement)) {
	case "agree":
		v := true
		return &v, reasoning
	case "disagree":
		v := false
		return &v, reasoning
	}
	return nil, ""
}

// Object recovers a JSON object from a reply, tolerating <think> blocks,
// code fences, and surrounding explanatory text.
func Object(text string) (map[string]any, error) {
	raw, err := extract(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, ErrNoObject
	}
	return obj, nil
}

// extract resolves the JSON payload in order: whole trimmed text, fenced
// content, then the substring between the first '{' and the last '}'.
func extract(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(thinkRe.ReplaceAllString(text, ""))

	if json.Valid([]byte(text)) && text != "" {
		return json.RawMessage(text), nil
	}

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		fenced := strings.TrimSpace(m[1])
		if json.Valid([]byte(fenced)) {
			return json.RawMessage(fenced), nil
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first != -1 && last > first {
		candidate := text[first : last+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	return nil, ErrNoObject
}
