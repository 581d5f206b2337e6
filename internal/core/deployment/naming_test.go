package deployment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// NetworkName Tests
// =============================================================================

func TestNetworkName_Simple(t *testing.T) {
	got := NetworkName("abc123", "default")
	assert.Equal(t, "stackwizard_abc123_default", got)
}

func TestNetworkName_UUID(t *testing.T) {
	got := NetworkName("018f6d2e-7b1a-7c3e-9a55-4f1d2c3b4a59", "backend")
	assert.Equal(t, "stackwizard_018f6d2e-7b1a-7c3e-9a55-4f1d2c3b4a59_backend", got)
}

// =============================================================================
// VolumeName Tests
// =============================================================================

func TestVolumeName_Simple(t *testing.T) {
	got := VolumeName("abc123", "data")
	assert.Equal(t, "stackwizard_abc123_data", got)
}

func TestVolumeName_WithUnderscore(t *testing.T) {
	got := VolumeName("abc123", "postgres_data")
	assert.Equal(t, "stackwizard_abc123_postgres_data", got)
}

func TestVolumeName_EmptyDeploymentID(t *testing.T) {
	got := VolumeName("", "data")
	assert.Equal(t, "stackwizard__data", got)
}
