package orchestrator

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devobox/devobox/pkg/config"
	"github.com/devobox/devobox/pkg/engine"
	"github.com/devobox/devobox/pkg/errdomain"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(nil)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func pgService() config.Service {
	return config.Service{
		Name:  "pg",
		Image: "docker.io/postgres:16",
		Type:  "database",
		Healthcheck: config.Healthcheck{
			Command:  "pg_isready -U postgres",
			Interval: "1s",
			Retries:  3,
		},
	}
}

func redisService() config.Service {
	return config.Service{Name: "redis", Image: "docker.io/redis:7", Type: "database"}
}

func resolvedConfig(services ...config.Service) *config.ResolvedConfig {
	return &config.ResolvedConfig{
		AppConfig: config.AppConfig{
			Container: config.Container{Name: "devobox", Workdir: "/home/dev"},
			Build:     config.Build{ImageName: "devobox-img"},
		},
		Services: services,
	}
}

// TestUpColdInit is scenario S1: pg reports Starting twice then Healthy;
// redis has no healthcheck. up must create+start both services, poll pg's
// health, then start the hub.
func TestUpColdInit(t *testing.T) {
	mock := &engine.MockRuntime{
		// the hub is assumed already built (Up only ensures it running, it
		// never creates it — see DESIGN.md's note on the MissingContainer
		// remedy-hint design).
		Containers: map[string]engine.ContainerState{"devobox": engine.Stopped},
		HealthSequence: map[string][]engine.ContainerHealth{
			"pg": {engine.Starting, engine.Starting, engine.Healthy},
		},
	}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	cfg := resolvedConfig(pgService(), redisService())

	err := o.Up(context.Background(), cfg, "")
	require.NoError(t, err)

	assert.Equal(t, 2, mock.CallCount("Create"), "pg and redis are created; the hub is only ensured running")
	createdNames := map[string]bool{}
	for _, call := range mock.CallsOf("Create") {
		createdNames[call[0].(string)] = true
	}
	// pg and redis should both have been created (hub is ensured running,
	// not created, by Up).
	assert.True(t, createdNames["pg"])
	assert.True(t, createdNames["redis"])

	assert.Equal(t, 3, mock.CallCount("Health"), "three health polls: Starting, Starting, Healthy")

	startedNames := map[string]bool{}
	for _, call := range mock.CallsOf("Start") {
		startedNames[call[0].(string)] = true
	}
	assert.True(t, startedNames["pg"])
	assert.True(t, startedNames["redis"])
	assert.True(t, startedNames["devobox"], "hub must be started by EnsureRunning")
}

// TestUpHealthTimeout is scenario S2: pg reports Unhealthy on every poll
// with retries=3; up fails with StartupFailed but redis remains Running (no
// rollback).
func TestUpHealthTimeout(t *testing.T) {
	mock := &engine.MockRuntime{
		HealthFunc: func(ctx context.Context, name string) (engine.ContainerHealth, error) {
			return engine.Unhealthy, nil
		},
	}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	cfg := resolvedConfig(pgService(), redisService())

	err := o.Up(context.Background(), cfg, "")
	require.Error(t, err)
	assert.True(t, errdomain.Is(err, errdomain.StartupFailed))

	state, stateErr := mock.State(context.Background(), "redis")
	require.NoError(t, stateErr)
	assert.Equal(t, engine.Running, state, "redis must remain Running; up does not roll back")
}

// TestUpMissingHubSurfacesMissingContainer: Up never creates the hub; if the
// hub was never built, EnsureRunning must fail with a remedy-hint error.
func TestUpMissingHubSurfacesMissingContainer(t *testing.T) {
	mock := &engine.MockRuntime{}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	cfg := resolvedConfig(redisService())

	err := o.Up(context.Background(), cfg, "")
	require.Error(t, err)
	assert.True(t, errdomain.Is(err, errdomain.MissingContainer))
}

func TestUpFiltersByKind(t *testing.T) {
	mock := &engine.MockRuntime{Containers: map[string]engine.ContainerState{"devobox": engine.Stopped}}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	app := config.Service{Name: "app", Image: "myapp:latest", Type: "generic"}
	cfg := resolvedConfig(pgService(), app)

	err := o.Up(context.Background(), cfg, config.Database)
	require.NoError(t, err)

	createdNames := map[string]bool{}
	for _, call := range mock.CallsOf("Create") {
		createdNames[call[0].(string)] = true
	}
	assert.True(t, createdNames["pg"])
	assert.False(t, createdNames["app"], "non-database service must be excluded by --dbs-only filter")
}

// TestDownIdempotent is property 4: applying down twice produces the same
// final state as applying it once.
func TestDownIdempotent(t *testing.T) {
	mock := &engine.MockRuntime{Containers: map[string]engine.ContainerState{
		"pg":      engine.Running,
		"redis":   engine.Running,
		"devobox": engine.Running,
	}}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	cfg := resolvedConfig(pgService(), redisService())

	errs1 := o.Down(context.Background(), cfg)
	assert.Empty(t, errs1)

	first := map[string]engine.ContainerState{}
	for _, n := range []string{"pg", "redis", "devobox"} {
		s, _ := mock.State(context.Background(), n)
		first[n] = s
	}

	errs2 := o.Down(context.Background(), cfg)
	assert.Empty(t, errs2)

	for _, n := range []string{"pg", "redis", "devobox"} {
		s, _ := mock.State(context.Background(), n)
		assert.Equal(t, first[n], s)
	}
}

func TestDownReportsButDoesNotAbortOnIndividualFailure(t *testing.T) {
	mock := &engine.MockRuntime{
		StopFunc: func(ctx context.Context, name string) error {
			if name == "pg" {
				return errdomain.NewEngine(engine.KindOther, "stuck", "")
			}
			return nil
		},
	}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	cfg := resolvedConfig(pgService(), redisService())

	errs := o.Down(context.Background(), cfg)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, mock.CallCount("Stop"), "redis and devobox stop must still be attempted")
}

func TestRebaseWorkdirInsideCodeRoot(t *testing.T) {
	got := RebaseWorkdir("/home/alice/code/frontend/src", "/home/alice/code", "/home/dev")
	assert.Equal(t, "/home/dev/code/frontend/src", got)
}

func TestRebaseWorkdirAtCodeRoot(t *testing.T) {
	got := RebaseWorkdir("/home/alice/code", "/home/alice/code", "/home/dev")
	assert.Equal(t, "/home/dev/code", got)
}

// TestRebaseWorkdirOutsideCodeRoot is scenario S6's fallback branch.
func TestRebaseWorkdirOutsideCodeRoot(t *testing.T) {
	got := RebaseWorkdir("/tmp/elsewhere", "/home/alice/code", "/home/dev")
	assert.Equal(t, "/home/dev", got)
}

func TestCleanupNoFlagsIsConservative(t *testing.T) {
	mock := &engine.MockRuntime{}
	o := New(mock, "devobox", "/home/alice/code", testLogger())

	err := o.Cleanup(context.Background(), CleanupFlags{})
	require.NoError(t, err)

	assert.Equal(t, 1, mock.CallCount("PruneContainers"))
	assert.Equal(t, 1, mock.CallCount("PruneImages"))
	assert.Equal(t, 1, mock.CallCount("PruneBuildCache"))
	assert.Equal(t, 0, mock.CallCount("PruneVolumes"), "volumes preserved with no flags")
}

func TestCleanupNukeIgnoresOtherFlags(t *testing.T) {
	mock := &engine.MockRuntime{}
	o := New(mock, "devobox", "/home/alice/code", testLogger())

	err := o.Cleanup(context.Background(), CleanupFlags{Nuke: true, Containers: true})
	require.NoError(t, err)

	assert.Equal(t, 1, mock.CallCount("NukeSystem"))
	assert.Equal(t, 0, mock.CallCount("PruneContainers"))
}

func TestCleanupVolumesOnlyWhenRequested(t *testing.T) {
	mock := &engine.MockRuntime{}
	o := New(mock, "devobox", "/home/alice/code", testLogger())

	err := o.Cleanup(context.Background(), CleanupFlags{Volumes: true})
	require.NoError(t, err)

	assert.Equal(t, 1, mock.CallCount("PruneVolumes"))
	assert.Equal(t, 0, mock.CallCount("PruneContainers"))
}

// TestBuildThenUpLeavesNoServiceStopped is property 5: build followed by up
// from a clean slate leaves every service Running (Healthy or NotApplicable).
func TestBuildThenUpLeavesNoServiceStopped(t *testing.T) {
	mock := &engine.MockRuntime{
		HealthSequence: map[string][]engine.ContainerHealth{
			"pg": {engine.Starting, engine.Healthy},
		},
	}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	cfg := resolvedConfig(pgService(), redisService())

	require.NoError(t, o.Build(context.Background(), cfg, true))
	require.NoError(t, o.Up(context.Background(), cfg, ""))

	for _, name := range []string{"pg", "redis", "devobox"} {
		state, err := mock.State(context.Background(), name)
		require.NoError(t, err)
		assert.Equal(t, engine.Running, state, "%s must be Running after build+up", name)
	}
}

func TestStatusReportsHubAndServices(t *testing.T) {
	mock := &engine.MockRuntime{Containers: map[string]engine.ContainerState{
		"pg":      engine.Running,
		"devobox": engine.Stopped,
	}}
	o := New(mock, "devobox", "/home/alice/code", testLogger())
	cfg := resolvedConfig(pgService())

	rows, err := o.Status(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "pg", rows[0].Name)
	assert.Equal(t, "devobox", rows[1].Name)
	assert.Equal(t, "Hub", rows[1].Kind)
}
