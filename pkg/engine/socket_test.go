package engine

import (
	"testing"

	"github.com/containers/podman/v5/libpod/define"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVolumeMountsBindMountForAbsoluteSource(t *testing.T) {
	binds, namedVolumes, err := parseVolumeMounts([]string{"/home/dev/code:/home/dev/code"})
	require.NoError(t, err)
	assert.Empty(t, namedVolumes)
	require.Len(t, binds, 1)
	assert.Equal(t, define.TypeBind, binds[0].Type)
	assert.Equal(t, "/home/dev/code", binds[0].Source)
	assert.Equal(t, "/home/dev/code", binds[0].Destination)
}

func TestParseVolumeMountsBindMountForDotPrefixedSource(t *testing.T) {
	binds, namedVolumes, err := parseVolumeMounts([]string{"./relative:/ctr/path"})
	require.NoError(t, err)
	assert.Empty(t, namedVolumes)
	require.Len(t, binds, 1)
	assert.Equal(t, define.TypeBind, binds[0].Type)
	assert.Equal(t, "./relative", binds[0].Source)
}

func TestParseVolumeMountsNamedVolumeForBareName(t *testing.T) {
	binds, namedVolumes, err := parseVolumeMounts([]string{"devobox-cache:/var/cache"})
	require.NoError(t, err)
	assert.Empty(t, binds)
	require.Len(t, namedVolumes, 1)
	assert.Equal(t, "devobox-cache", namedVolumes[0].Name)
	assert.Equal(t, "/var/cache", namedVolumes[0].Dest)
}

func TestParseVolumeMountsCarriesOptions(t *testing.T) {
	binds, _, err := parseVolumeMounts([]string{"/home/dev/.ssh:/home/dev/.ssh:ro"})
	require.NoError(t, err)
	require.Len(t, binds, 1)
	assert.Equal(t, []string{"ro"}, binds[0].Options)
}

func TestParseVolumeMountsSplitsBindsAndVolumesTogether(t *testing.T) {
	binds, namedVolumes, err := parseVolumeMounts([]string{
		"/home/dev/code:/home/dev/code",
		"devobox-cache:/var/cache",
		"/home/dev/.ssh:/home/dev/.ssh:ro",
	})
	require.NoError(t, err)
	require.Len(t, binds, 2)
	require.Len(t, namedVolumes, 1)
	assert.Equal(t, "devobox-cache", namedVolumes[0].Name)
}

func TestParseVolumeMountsRejectsMalformedSpec(t *testing.T) {
	_, _, err := parseVolumeMounts([]string{"no-colon-here"})
	require.Error(t, err)
}

func TestParsePortMappingsDefaultsToTCP(t *testing.T) {
	mappings, err := parsePortMappings([]string{"8080:80"})
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, uint16(8080), mappings[0].HostPort)
	assert.Equal(t, uint16(80), mappings[0].ContainerPort)
	assert.Equal(t, "tcp", mappings[0].Protocol)
}

func TestParsePortMappingsHonorsExplicitProtocol(t *testing.T) {
	mappings, err := parsePortMappings([]string{"5353:53/udp"})
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "udp", mappings[0].Protocol)
}

func TestParsePortMappingsRejectsMalformedSpec(t *testing.T) {
	_, err := parsePortMappings([]string{"not-a-port-spec"})
	require.Error(t, err)
}

func TestParsePortMappingsRejectsNonNumericPort(t *testing.T) {
	_, err := parsePortMappings([]string{"abc:80"})
	require.Error(t, err)
}
