// Package config provides configuration loading utilities for the role profile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the role context injected into extraction, evaluation, and
// question-generation prompts. Only the input/output contract of those
// prompts is load-bearing; the texts themselves are operator-tunable.
type Profile struct {
	Role          RoleSection `yaml:"role"`
	Rubric        string      `yaml:"rubric"`
	QuestionStyle string      `yaml:"question_style"`
}

// RoleSection describes the position candidates are screened for.
type RoleSection struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// DefaultProfile returns the built-in role profile used when no profile file
// is present. Keeping a usable default means an upload never fails on a
// missing config file.
func DefaultProfile() Profile {
	return Profile{
		Role: RoleSection{
			Title: "Enterprise Account Executive",
			Description: "Full-cycle enterprise sales role selling B2B SaaS into finance and " +
				"operations teams. Typical deals are six-figure ACV with multi-stakeholder, " +
				"multi-quarter cycles. Prior founder, startup, or enterprise experience and a " +
				"documented quota track record are strong signals.",
		},
		Rubric: "Score candidates 0-100 on evidence of closing ability, deal size, quota " +
			"attainment, domain fit, and career trajectory. Penalize job hopping, title " +
			"inflation, unexplained gaps, and overqualification. Reward selling to finance " +
			"buyers, founder experience, and verified enterprise deals.",
		QuestionStyle: "Direct, evidence-seeking behavioural questions that probe the " +
			"candidate's largest closed deals, quota history, and any flagged concerns.",
	}
}

// LoadProfile reads a role profile from a YAML file, filling any missing
// section from the defaults. A missing file yields the defaults without
// error; a malformed file is an error.
func LoadProfile(path string) (Profile, error) {
	def := DefaultProfile()
	if path == "" {
		return def, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return Profile{}, fmt.Errorf("op=config.LoadProfile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, fmt.Errorf("op=config.LoadProfile: parse %s: %w", path, err)
	}
	if p.Role.Title == "" {
		p.Role.Title = def.Role.Title
	}
	if p.Role.Description == "" {
		p.Role.Description = def.Role.Description
	}
	if p.Rubric == "" {
		p.Rubric = def.Rubric
	}
	if p.QuestionStyle == "" {
		p.QuestionStyle = def.QuestionStyle
	}
	return p, nil
}
