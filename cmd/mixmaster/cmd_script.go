package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Script is a list of edits applied to a page in one go, read from YAML:
//
//	steps:
//	  - op: replace
//	    locator: "#title"
//	    html: "<h1>Remixed</h1>"
//	  - op: delete
//	    locator: "p:nth-child(2)"
//	  - op: undo
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is a single edit of a Script. Op is one of replace, delete, undo and
// redo.
type Step struct {
	Op      string `yaml:"op"`
	Locator string `yaml:"locator"`
	HTML    string `yaml:"html"`
}

var scriptCmd = &cobra.Command{
	Use:   "script <page> <script.yaml>",
	Short: "Apply the edits listed in a YAML script",
	Long: `Apply the edits listed in a YAML script, in order. Unlike separate
invocations, a script can redo what it undid before the page is saved.
The page is left untouched if any step fails.`,
	Args: cobra.ExactArgs(2),
	RunE: runScript,
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

func runScript(cmd *cobra.Command, args []string) error {
	s, err := LoadScript(args[1])
	if err != nil {
		return err
	}
	p, err := openPage(cmd, args[0])
	if err != nil {
		return err
	}
	for i, step := range s.Steps {
		if err := p.apply(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		logger.Debug("step applied", zap.Int("step", i+1), zap.String("op", step.Op))
	}
	return p.save()
}

func (p *page) apply(step Step) error {
	switch step.Op {
	case "replace":
		if err := p.focus(step.Locator); err != nil {
			return err
		}
		_, err := p.mm.ReplaceFocusedElement(step.HTML)
		return err
	case "delete":
		if err := p.focus(step.Locator); err != nil {
			return err
		}
		return p.mm.DeleteFocusedElement()
	case "undo":
		return p.mm.Undo()
	case "redo":
		return p.mm.Redo()
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}
