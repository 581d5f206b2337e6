// Package deployment provides pure functions for deployment planning.
//
// This package turns a wizard target into the plan a deploy executor would
// act on. All functions are pure (no I/O, no side effects).
//
// # Functions
//
//   - Naming: Generate consistent resource names (NetworkName, VolumeName)
//   - Ordering: Sort services by dependencies (TopologicalSort, StartOrder)
//   - Ports: Convert port mappings to planned bindings (ConvertPorts)
//   - Plan: Build the full plan for a target (BuildPlan)
//
// # Usage
//
// The session layer builds a plan next to the manifest on the review step and
// hands both to the executor:
//
//	plan, err := deployment.BuildPlan(deployment.BuildPlanParams{
//	    DeploymentID: id,
//	    Target:       target,
//	    Networks:     state.Networks,
//	})
package deployment
