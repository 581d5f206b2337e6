package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/artpar/stackwizard/internal/core/domain"
	"github.com/artpar/stackwizard/internal/core/validation"
	"github.com/artpar/stackwizard/internal/core/wizard"
	"github.com/artpar/stackwizard/internal/shell/session"
	"github.com/artpar/stackwizard/internal/shell/simulator"
	"github.com/artpar/stackwizard/internal/shell/suggest"
)

// Navigation choices offered at the end of each step.
const (
	navNext = "next"
	navBack = "back"
	navQuit = "quit"
)

func newWizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Build a manifest interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger, appOptions{Drafts: true, Deploy: true})
			if err != nil {
				return err
			}
			defer a.Close()

			return runWizard(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

// runWizard drives the session one step at a time until the user quits or
// deploys. The draft is saved after every step.
func runWizard(ctx context.Context, a *app, out io.Writer) error {
	m := a.session

	if err := offerResume(ctx, m, out); err != nil {
		return err
	}

	for {
		var (
			nav string
			err error
		)
		switch m.View().State.Step {
		case wizard.StepTemplateSelect:
			nav, err = promptTemplate(a, out)
		case wizard.StepConfigure:
			nav, err = promptConfigure(ctx, a, out)
		case wizard.StepDesign:
			nav, err = promptDesign(a, out)
		case wizard.StepNetwork:
			nav, err = promptNetwork(m, out)
		case wizard.StepReview:
			nav, err = promptReview(ctx, a, out)
		}

		if errors.Is(err, huh.ErrUserAborted) {
			nav, err = navQuit, nil
		}
		if err != nil {
			return err
		}

		saveDraft(ctx, m, out)

		switch nav {
		case navQuit:
			fmt.Fprintln(out, dimStyle.Render("Draft saved. Run stackwizard wizard again to resume."))
			return nil
		case navBack:
			if _, err := m.Apply(wizard.Back{}); err != nil {
				fmt.Fprintln(out, formatError("back", err.Error()))
			}
		case navNext:
			advance(m, out)
		}
	}
}

func offerResume(ctx context.Context, m *session.Manager, out io.Writer) error {
	_, err := m.Load(ctx, false)
	switch {
	case err == nil:
		view := m.View()
		resume := true
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Resume the saved draft?").
				Description(fmt.Sprintf("It stopped at the %s step.", view.State.Step)).
				Value(&resume),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if !resume {
			_, err := m.Apply(wizard.Reset{})
			return err
		}
		return nil
	case errors.Is(err, session.ErrNoDraft), errors.Is(err, session.ErrNoStore):
		return nil
	default:
		fmt.Fprintln(out, formatError("draft", err.Error()))
		return nil
	}
}

func saveDraft(ctx context.Context, m *session.Manager, out io.Writer) {
	if _, err := m.Flush(ctx); err != nil && !errors.Is(err, session.ErrNoStore) {
		fmt.Fprintln(out, formatError("draft", err.Error()))
	}
}

// advance moves to the next step, printing the findings that block it.
func advance(m *session.Manager, out io.Writer) {
	_, err := m.Apply(wizard.Next{})
	if err == nil {
		return
	}
	var te *wizard.TransitionError
	if errors.As(err, &te) {
		fmt.Fprintln(out, errorStyle.Render("Cannot continue: "+te.Reason.Error()))
		fmt.Fprint(out, renderFindings(te.Findings.Filter(validation.SeverityError)))
		return
	}
	fmt.Fprintln(out, formatError("next", err.Error()))
}

func promptNav(title string) (string, error) {
	nav := navNext
	options := []huh.Option[string]{
		huh.NewOption("Continue", navNext),
		huh.NewOption("Back", navBack),
		huh.NewOption("Save and quit", navQuit),
	}

	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(options...).Value(&nav),
	)).Run()
	return nav, err
}

// =============================================================================
// Step 1: Template
// =============================================================================

func promptTemplate(a *app, out io.Writer) (string, error) {
	view := a.session.View()

	var id string
	if view.State.SelectedTemplate != nil {
		id = view.State.SelectedTemplate.ID
	}
	var options []huh.Option[string]
	for _, t := range a.catalog.List() {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", t.Name, t.Category), t.ID))
	}

	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Pick a template").
			Options(options...).
			Value(&id),
	)).Run()
	if err != nil {
		return "", err
	}

	if _, err := a.session.Apply(wizard.SelectTemplate{TemplateID: id}); err != nil {
		fmt.Fprintln(out, formatError("template", err.Error()))
		return "", nil
	}
	return navNext, nil
}

// =============================================================================
// Step 2: Configure
// =============================================================================

// configAnswers holds the text form of the editable config.
type configAnswers struct {
	Name        string
	Image       string
	Memory      string
	CPU         string
	Restart     string
	Ports       string // "8080:80, 443:443"
	Env         string // one KEY=VALUE per line
	Healthcheck string
}

func answersFrom(cfg domain.ServiceConfig) configAnswers {
	return configAnswers{
		Name:        cfg.Name,
		Image:       cfg.Image,
		Memory:      formatFloat(cfg.MemoryGiB),
		CPU:         formatFloat(cfg.CPUCores),
		Restart:     string(cfg.RestartPolicy),
		Ports:       formatPorts(cfg.Ports),
		Env:         formatEnv(cfg.Environment),
		Healthcheck: cfg.HealthcheckCommand,
	}
}

func printTips(ctx context.Context, a *app, t domain.Target, out io.Writer) {
	for _, s := range suggest.ForTarget(ctx, a.analyzer, t, a.cfg.Suggest.Timeout, a.logger) {
		fmt.Fprintln(out, "  "+dimStyle.Render("tip: "+s))
	}
}

func promptConfigure(ctx context.Context, a *app, out io.Writer) (string, error) {
	view := a.session.View()

	if view.State.IsStack() {
		fmt.Fprintln(out, headerStyle.Render("Stack services"))
		for _, svc := range view.State.SelectedTemplate.Stack {
			fmt.Fprintf(out, "  %-12s %s\n", svc.Name, dimStyle.Render(svc.Image))
		}
		fmt.Fprint(out, renderFindings(view.Findings))
		printTips(ctx, a, view.State.Target(), out)
		return promptNav("Stack services are used as defined")
	}

	cur := view.State.Config
	in := answersFrom(cur)

	var restartOptions []huh.Option[string]
	for _, p := range domain.RestartPolicies {
		restartOptions = append(restartOptions, huh.NewOption(string(p), string(p)))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Service name").Value(&in.Name),
			huh.NewInput().Title("Image").Value(&in.Image),
			huh.NewInput().Title("Memory limit (GiB)").Value(&in.Memory),
			huh.NewInput().Title("CPU limit (cores)").Value(&in.CPU),
			huh.NewSelect[string]().Title("Restart policy").Options(restartOptions...).Value(&in.Restart),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Ports").
				Description("host:container pairs, comma separated").
				Placeholder("8080:80").
				Value(&in.Ports),
			huh.NewText().
				Title("Environment").
				Description("One KEY=VALUE per line").
				Value(&in.Env),
			huh.NewInput().
				Title("Healthcheck command").
				Value(&in.Healthcheck),
		),
	).Run()
	if err != nil {
		return "", err
	}

	actions, err := configActions(cur, in)
	if err != nil {
		fmt.Fprintln(out, formatError("input", err.Error()))
		return "", nil
	}
	for _, act := range actions {
		if _, err := a.session.Apply(act); err != nil {
			fmt.Fprintln(out, formatError(act.Type(), err.Error()))
			return "", nil
		}
	}

	view = a.session.View()
	fmt.Fprint(out, renderFindings(view.Findings))
	printTips(ctx, a, view.State.Target(), out)
	return promptNav("Configuration")
}

// configActions computes the actions that turn cur into the answers. Port and
// environment lists are replaced wholesale when their text changed.
func configActions(cur domain.ServiceConfig, in configAnswers) ([]wizard.Action, error) {
	was := answersFrom(cur)
	var actions []wizard.Action

	fields := []struct {
		field    string
		old, new string
	}{
		{wizard.FieldName, was.Name, in.Name},
		{wizard.FieldImage, was.Image, in.Image},
		{wizard.FieldMemory, was.Memory, in.Memory},
		{wizard.FieldCPU, was.CPU, in.CPU},
		{wizard.FieldRestart, was.Restart, in.Restart},
		{wizard.FieldHealthcheck, was.Healthcheck, in.Healthcheck},
	}
	for _, f := range fields {
		if f.old != f.new {
			actions = append(actions, wizard.SetField{Field: f.field, Value: f.new})
		}
	}

	if in.Ports != was.Ports {
		ports, err := parsePortList(in.Ports)
		if err != nil {
			return nil, err
		}
		for range cur.Ports {
			actions = append(actions, wizard.RemovePort{Index: 0})
		}
		for _, p := range ports {
			actions = append(actions, p)
		}
	}

	if in.Env != was.Env {
		env, err := parseEnvLines(in.Env)
		if err != nil {
			return nil, err
		}
		secret := make(map[string]bool)
		for _, e := range cur.Environment {
			secret[e.Key] = e.Secret
		}
		for range cur.Environment {
			actions = append(actions, wizard.RemoveEnv{Index: 0})
		}
		for _, e := range env {
			actions = append(actions, wizard.AddEnv{Key: e.Key, Value: e.Value, Secret: secret[e.Key]})
		}
	}

	return actions, nil
}

// parsePortList splits "8080:80, 443:443" into AddPort actions. The numbers
// themselves are checked when the actions are applied.
func parsePortList(s string) ([]wizard.AddPort, error) {
	var out []wizard.AddPort
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		host, container, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("port %q: expected host:container", part)
		}
		out = append(out, wizard.AddPort{Host: strings.TrimSpace(host), Container: strings.TrimSpace(container)})
	}
	return out, nil
}

// parseEnvLines parses KEY=VALUE lines, skipping blank ones.
func parseEnvLines(s string) ([]domain.EnvVar, error) {
	var out []domain.EnvVar
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("environment %q: expected KEY=VALUE", line)
		}
		out = append(out, domain.EnvVar{Key: strings.TrimSpace(key), Value: value})
	}
	return out, nil
}

func formatPorts(ports []domain.PortMapping) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d:%d", p.Host, p.Container)
	}
	return strings.Join(parts, ", ")
}

func formatEnv(env []domain.EnvVar) string {
	lines := make([]string, len(env))
	for i, e := range env {
		lines[i] = e.Key + "=" + e.Value
	}
	return strings.Join(lines, "\n")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// =============================================================================
// Step 3: Design
// =============================================================================

const (
	designAdd    = "add"
	designLayout = "layout"
	designRemove = "remove"
)

func promptDesign(a *app, out io.Writer) (string, error) {
	m := a.session
	view := m.View()

	fmt.Fprintln(out, headerStyle.Render("Canvas"))
	for _, p := range view.State.Canvas.Placements() {
		fmt.Fprintf(out, "  %-12s at (%s, %s)\n", p.Name, formatFloat(p.X), formatFloat(p.Y))
	}
	fmt.Fprint(out, renderFindings(view.Findings))

	choice := navNext
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Design").
			Options(
				huh.NewOption("Continue", navNext),
				huh.NewOption("Add a service from a template", designAdd),
				huh.NewOption("Arrange on a grid", designLayout),
				huh.NewOption("Remove a service", designRemove),
				huh.NewOption("Back", navBack),
				huh.NewOption("Save and quit", navQuit),
			).
			Value(&choice),
	)).Run()
	if err != nil {
		return "", err
	}

	switch choice {
	case designAdd:
		var id string
		var options []huh.Option[string]
		for _, t := range a.catalog.List() {
			options = append(options, huh.NewOption(t.Name, t.ID))
		}
		if err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("Template").Options(options...).Value(&id),
		)).Run(); err != nil {
			return "", err
		}
		applyAll(m, out, wizard.DropTemplate{TemplateID: id}, wizard.AutoLayout{})
		return "", nil
	case designLayout:
		applyAll(m, out, wizard.AutoLayout{})
		return "", nil
	case designRemove:
		var id string
		var options []huh.Option[string]
		for _, p := range view.State.Canvas.Placements() {
			options = append(options, huh.NewOption(p.Name, p.ID))
		}
		if len(options) == 0 {
			return "", nil
		}
		if err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("Service").Options(options...).Value(&id),
		)).Run(); err != nil {
			return "", err
		}
		applyAll(m, out, wizard.RemoveCanvasService{ID: id})
		return "", nil
	}
	return choice, nil
}

func applyAll(m *session.Manager, out io.Writer, actions ...wizard.Action) {
	for _, act := range actions {
		if _, err := m.Apply(act); err != nil {
			fmt.Fprintln(out, formatError(act.Type(), err.Error()))
			return
		}
	}
}

// =============================================================================
// Step 4: Network
// =============================================================================

func promptNetwork(m *session.Manager, out io.Writer) (string, error) {
	view := m.View()
	fmt.Fprintln(out, headerStyle.Render("Networks")+" "+strings.Join(view.State.Networks, ", "))
	if len(view.State.Volumes) > 0 {
		names := make([]string, len(view.State.Volumes))
		for i, v := range view.State.Volumes {
			names[i] = v.Name + ":" + string(v.Type)
		}
		fmt.Fprintln(out, headerStyle.Render("Volumes")+" "+strings.Join(names, ", "))
	}
	if view.DiagramD2 != "" {
		fmt.Fprintln(out, dimStyle.Render(view.DiagramD2))
	}

	var networks, volumes string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Add networks").
			Description("Comma separated names").
			Value(&networks),
		huh.NewInput().
			Title("Add volumes").
			Description("Comma separated name or name:type (local, nfs, tmpfs)").
			Value(&volumes),
	)).Run()
	if err != nil {
		return "", err
	}

	actions := networkActions(networks, volumes)
	applyAll(m, out, actions...)
	if len(actions) > 0 {
		return "", nil
	}
	return promptNav("Network")
}

// networkActions turns the comma separated answers into AddNetwork and
// AddVolumeDef actions.
func networkActions(networks, volumes string) []wizard.Action {
	var actions []wizard.Action
	for _, name := range strings.Split(networks, ",") {
		if name = strings.TrimSpace(name); name != "" {
			actions = append(actions, wizard.AddNetwork{Name: name})
		}
	}
	for _, spec := range strings.Split(volumes, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		name, typ, _ := strings.Cut(spec, ":")
		actions = append(actions, wizard.AddVolumeDef{Name: strings.TrimSpace(name), Kind: strings.TrimSpace(typ)})
	}
	return actions
}

// =============================================================================
// Step 5: Review
// =============================================================================

const (
	reviewDeploy   = "deploy"
	reviewSimulate = "simulate"
)

func promptReview(ctx context.Context, a *app, out io.Writer) (string, error) {
	view := a.session.View()
	if view.Manifest == nil {
		fmt.Fprintln(out, formatError("review", "no manifest was generated"))
		return navBack, nil
	}

	fmt.Fprintln(out, headerStyle.Render("docker-compose.yml"))
	fmt.Fprintln(out, view.Manifest.Text)
	fmt.Fprint(out, renderFindings(view.FinalFindings))
	fmt.Fprint(out, renderSummary(view.Manifest.Summary, view.Verification))

	options := []huh.Option[string]{}
	if view.FinalFindings.Blocking() {
		fmt.Fprintln(out, errorStyle.Render("Fix the errors above before deploying."))
	} else {
		options = append(options, huh.NewOption("Deploy", reviewDeploy))
	}
	options = append(options,
		huh.NewOption("Simulate the deployment", reviewSimulate),
		huh.NewOption("Back", navBack),
		huh.NewOption("Save and quit", navQuit),
	)

	var choice string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Review").Options(options...).Value(&choice),
	)).Run(); err != nil {
		return "", err
	}

	switch choice {
	case reviewDeploy:
		dep, err := a.session.Deploy(ctx)
		if err != nil {
			fmt.Fprintln(out, formatError("deploy", err.Error()))
			return "", nil
		}
		fmt.Fprintln(out, successStyle.Render("Submitted deployment "+dep.DeploymentID))
		if err := simulate(ctx, a.simulator, dep.Manifest, out); err != nil {
			return "", err
		}
		fmt.Fprintln(out, dimStyle.Render("Files written to "+dep.Receipt.Location))
		return navQuit, nil
	case reviewSimulate:
		return "", simulate(ctx, a.simulator, view.Manifest.Text, out)
	}
	return choice, nil
}

// simulate prints each simulated stage as it completes.
func simulate(ctx context.Context, sim *simulator.Simulator, manifest string, out io.Writer) error {
	_, err := sim.Run(ctx, manifest, func(ev simulator.Event) {
		fmt.Fprintf(out, "%s %s\n", dimStyle.Render(fmt.Sprintf("%3.0f%%", ev.Percent)), ev.Line)
	})
	return err
}
