// Package validation turns a service configuration into an ordered list of
// findings and decides whether the wizard may move on.
//
// All functions are pure: the same input always yields the same findings in
// the same order. Findings are data, never errors; callers render them and
// ask Findings.Blocking whether any of them has error severity.
//
// # Functions
//
//   - Validate: step-2 rules for one ServiceConfig plus canvas rules
//   - ValidateTarget: Validate for a single target, per-member rules for a stack
//   - FinalValidate: the review-step superset pass with the memory ceiling
//
// # Usage
//
//	findings := validation.ValidateTarget(target, canvasModel)
//	if findings.Blocking() {
//	    // stay on the current step and show findings
//	}
package validation
