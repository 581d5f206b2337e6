package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpar/stackwizard/internal/core/wizard"
	"github.com/artpar/stackwizard/internal/shell/session"
)

// Script is an action script for the generate command.
//
//	template: nginx
//	actions:
//	  - type: set_field
//	    payload: {field: name, value: web}
//	  - type: add_port
//	    payload: {host: "8080", container: "80"}
//
// Actions run in order from the first step. Once they are exhausted the
// wizard is advanced to the review step.
type Script struct {
	Template string           `yaml:"template"`
	Actions  []map[string]any `yaml:"actions"`
}

// ParseScript decodes a YAML action script into typed actions. A template
// entry becomes a leading select_template action.
func ParseScript(data []byte) ([]wizard.Action, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	var actions []wizard.Action
	if s.Template != "" {
		actions = append(actions, wizard.SelectTemplate{TemplateID: s.Template})
	}
	for i, raw := range s.Actions {
		// Round-trip through JSON so the wizard codec owns the action schema.
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		a, err := wizard.DecodeAction(data)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// runScript applies actions and then advances to the review step.
func runScript(m *session.Manager, actions []wizard.Action) (wizard.View, error) {
	for i, a := range actions {
		if _, err := m.Apply(a); err != nil {
			return m.View(), fmt.Errorf("action %d (%s): %w", i+1, a.Type(), err)
		}
	}
	for m.View().State.Step < wizard.StepReview {
		if _, err := m.Apply(wizard.Next{}); err != nil {
			return m.View(), err
		}
	}
	return m.View(), nil
}

func newGenerateCmd() *cobra.Command {
	var (
		template   string
		scriptPath string
		outputPath string
		deploy     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a manifest non-interactively from an action script",
		Example: `  stackwizard generate --template nginx
  stackwizard generate --script site.yml --output docker-compose.yml
  stackwizard generate --template wordpress --deploy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}

			var actions []wizard.Action
			if template != "" {
				actions = append(actions, wizard.SelectTemplate{TemplateID: template})
			}
			if scriptPath != "" {
				data, err := os.ReadFile(scriptPath)
				if err != nil {
					return err
				}
				scripted, err := ParseScript(data)
				if err != nil {
					return err
				}
				actions = append(actions, scripted...)
			}
			if len(actions) == 0 {
				return errors.New("either --template or --script is required")
			}

			a, err := newApp(cfg, logger, appOptions{Deploy: deploy})
			if err != nil {
				return err
			}
			defer a.Close()

			stderr := cmd.ErrOrStderr()
			view, err := runScript(a.session, actions)
			if err != nil {
				var te *wizard.TransitionError
				if errors.As(err, &te) && len(te.Findings) > 0 {
					fmt.Fprint(stderr, renderFindings(te.Findings))
				}
				return err
			}

			if view.Manifest == nil {
				return errors.New("no manifest was generated")
			}
			fmt.Fprint(stderr, renderFindings(view.FinalFindings))
			fmt.Fprint(stderr, renderSummary(view.Manifest.Summary, view.Verification))
			if view.FinalFindings.Blocking() {
				return &ServerError{Op: "generate", Err: session.ErrNotDeployable, ExitCode: ExitNotDeployable}
			}

			if err := writeManifest(cmd.OutOrStdout(), outputPath, view.Manifest.Text); err != nil {
				return err
			}

			if deploy {
				dep, err := a.session.Deploy(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(stderr, successStyle.Render("deployment "+dep.DeploymentID+" written to "+dep.Receipt.Location))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "template to start from")
	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "YAML action script")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the manifest to this file instead of stdout")
	cmd.Flags().BoolVar(&deploy, "deploy", false, "submit the manifest and plan to deploy.output_dir")
	return cmd
}

func writeManifest(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
