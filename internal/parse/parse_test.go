package parse

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestVerdict_CanonicalForm(t *testing.T) {
	tests := []struct {
		name      string
		judgement string
		want      bool
	}{
		{"agree", "agree", true},
		{"disagree", "disagree", false},
		{"uppercase", "AGREE", true},
		{"padded", "  disagree ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := json.Marshal(map[string]string{
				"judgement": tt.judgement,
				"reasoning": "because",
			})
			got, reasoning := Verdict(string(raw))
			if got == nil {
				t.Fatal("expected a verdict, got nil")
			}
			if *got != tt.want {
				t.Errorf("judgement = %v, want %v", *got, tt.want)
			}
			if reasoning != "because" {
				t.Errorf("reasoning = %q, want %q", reasoning, "because")
			}
		})
	}
}

func TestVerdict_RoundTrip(t *testing.T) {
	raw, _ := json.Marshal(map[string]string{
		"judgement": "agree",
		"reasoning": "step by step",
	})
	got, reasoning := Verdict(string(raw))
	if got == nil || !*got || reasoning != "step by step" {
		t.Fatalf("round trip failed: got=%v reasoning=%q", got, reasoning)
	}
}

func TestVerdict_NoVerdictNeverPanics(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"prose", "I think the answer is probably yes."},
		{"truncated json", `{"judgement": "agr`},
		{"missing judgement", `{"reasoning": "hmm"}`},
		{"unknown judgement", `{"judgement": "maybe", "reasoning": "x"}`},
		{"array", `[1, 2, 3]`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reasoning := Verdict(tt.in)
			if got != nil {
				t.Errorf("expected no verdict, got %v", *got)
			}
			if reasoning != "" {
				t.Errorf("expected empty reasoning, got %q", reasoning)
			}
		})
	}
}

func TestVerdict_CodeFence(t *testing.T) {
	in := "```json\n{\"judgement\": \"agree\", \"reasoning\": \"fenced\"}\n```"
	got, reasoning := Verdict(in)
	if got == nil || !*got {
		t.Fatalf("expected agree, got %v", got)
	}
	if reasoning != "fenced" {
		t.Errorf("reasoning = %q, want %q", reasoning, "fenced")
	}
}

func TestVerdict_SurroundingProse(t *testing.T) {
	in := "Sure, here is my answer:\n{\"judgement\": \"disagree\", \"reasoning\": \"r\"}\nHope that helps!"
	got, _ := Verdict(in)
	if got == nil || *got {
		t.Fatalf("expected disagree, got %v", got)
	}
}

func TestObject_StripsThinkBlocks(t *testing.T) {
	in := "<think>\nlong reasoning trace {not json}\n</think>\n{\"soul_doc\": \"You are...\"}"
	obj, err := Object(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["soul_doc"] != "You are..." {
		t.Errorf("soul_doc = %v", obj["soul_doc"])
	}
}

func TestObject_FencedAndWrapped(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bare", `{"soul_doc": "d"}`},
		{"fenced", "```json\n{\"soul_doc\": \"d\"}\n```"},
		{"fenced no lang", "```\n{\"soul_doc\": \"d\"}\n```"},
		{"prose wrapped", "Here you go: {\"soul_doc\": \"d\"} done."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Object(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if obj["soul_doc"] != "d" {
				t.Errorf("soul_doc = %v, want d", obj["soul_doc"])
			}
		})
	}
}

func TestObject_Failure(t *testing.T) {
	for _, in := range []string{"", "no json here", "{broken", "[1,2]"} {
		if _, err := Object(in); !errors.Is(err, ErrNoObject) {
			t.Errorf("Object(%q) error = %v, want ErrNoObject", in, err)
		}
	}
}
