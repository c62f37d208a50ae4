package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskConfig declares one survey task: where its persona-partitioned data
// lives and how persona names map into prompts and answer columns. Path
// templates use {persona}, substituted lowercase.
type TaskConfig struct {
	TrainPath     string   `yaml:"train_path"`
	TestPath      string   `yaml:"test_path"`
	QuestionsPath string   `yaml:"questions_path"`
	AnswerKey     string   `yaml:"answer_key"`   // e.g. "{persona}_response"
	NameFormat    string   `yaml:"name_format"`  // e.g. "{persona}"
	DescFormat    string   `yaml:"desc_format"`  // e.g. "the people of {persona}"
	Personas      []string `yaml:"personas"`
}

// Registry maps task names to their configuration. It replaces the
// original's module-level task constants with an explicit object that is
// validated once, at load, before any concurrent work starts.
type Registry struct {
	Tasks map[string]TaskConfig `yaml:"tasks"`
}

// ResolvedTask is a task bound to one persona, with all templates
// substituted.
type ResolvedTask struct {
	Task          string
	Persona       string
	TrainPath     string
	TestPath      string
	QuestionsPath string
	AnswerKey     string
	PersonaName   string
	PersonaDesc   string
}

// LoadTasks reads and validates the task registry from a YAML file.
func LoadTasks(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task registry: %w", err)
	}
	var reg Registry
	if err := yaml.Unmarshal(b, &reg); err != nil {
		return nil, fmt.Errorf("parse task registry: %w", err)
	}
	if err := reg.validate(); err != nil {
		return nil, fmt.Errorf("invalid task registry %s: %w", path, err)
	}
	return &reg, nil
}

func (r *Registry) validate() error {
	if len(r.Tasks) == 0 {
		return fmt.Errorf("no tasks defined")
	}
	for name, t := range r.Tasks {
		if t.TrainPath == "" || t.TestPath == "" {
			return fmt.Errorf("task %q: train_path and test_path are required", name)
		}
		if len(t.Personas) == 0 {
			return fmt.Errorf("task %q: at least one persona is required", name)
		}
	}
	return nil
}

// Resolve binds a task to a persona, rejecting personas the task does not
// declare.
func (r *Registry) Resolve(task, persona string) (*ResolvedTask, error) {
	t, ok := r.Tasks[task]
	if !ok {
		names := make([]string, 0, len(r.Tasks))
		for n := range r.Tasks {
			names = append(names, n)
		}
		return nil, fmt.Errorf("unknown task %q (available: %v)", task, names)
	}

	found := false
	for _, p := range t.Personas {
		if strings.EqualFold(p, persona) {
			persona = p
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("task %q has no persona %q (available: %v)", task, persona, t.Personas)
	}

	// Name and description keep the registry's casing; only file paths
	// and answer keys are lowercased.
	name := strings.ReplaceAll(t.NameFormat, "{persona}", persona)
	if name == "" {
		name = persona
	}
	desc := strings.ReplaceAll(t.DescFormat, "{persona}", persona)
	if desc == "" {
		desc = persona
	}

	return &ResolvedTask{
		Task:          task,
		Persona:       persona,
		TrainPath:     substitute(t.TrainPath, persona),
		TestPath:      substitute(t.TestPath, persona),
		QuestionsPath: t.QuestionsPath,
		AnswerKey:     substitute(t.AnswerKey, persona),
		PersonaName:   name,
		PersonaDesc:   desc,
	}, nil
}

func substitute(template, persona string) string {
	return strings.ReplaceAll(template, "{persona}", strings.ToLower(persona))
}
