package deployment

import "fmt"

// =============================================================================
// Resource Naming Functions
// =============================================================================

// NamePrefix namespaces every runtime resource of a deployment.
const NamePrefix = "stackwizard"

// NetworkName generates the name of a deployment network.
// Pattern: stackwizard_{deploymentID}_{network}
//
// Example:
//
//	NetworkName("abc123", "default") // returns "stackwizard_abc123_default"
func NetworkName(deploymentID, network string) string {
	return fmt.Sprintf("%s_%s_%s", NamePrefix, deploymentID, network)
}

// VolumeName generates a volume name for a deployment.
// Pattern: stackwizard_{deploymentID}_{volumeName}
//
// Example:
//
//	VolumeName("abc123", "data") // returns "stackwizard_abc123_data"
func VolumeName(deploymentID, volumeName string) string {
	return fmt.Sprintf("%s_%s_%s", NamePrefix, deploymentID, volumeName)
}
