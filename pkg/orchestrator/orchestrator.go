// Package orchestrator composes the engine adapter, the container service,
// and the session adapter into the top-level workflows spec.md §4.6 names:
// build, up, down, shell, project_up, cleanup, and the health-gated
// start-and-wait protocol. Grounded on the teacher's PodmanCommand
// orchestration methods in pkg/commands/podman.go, generalized from a
// TUI-refresh loop to a one-shot CLI workflow driver.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/devobox/devobox/pkg/config"
	"github.com/devobox/devobox/pkg/containersvc"
	"github.com/devobox/devobox/pkg/engine"
	"github.com/devobox/devobox/pkg/errdomain"
	"github.com/devobox/devobox/pkg/session"
)

// Orchestrator drives batches of services through start/stop/restart, polls
// health, and composes the top-level workflows.
type Orchestrator struct {
	Runtime  engine.Runtime
	Svc      *containersvc.Service
	Session  *session.Adapter
	Log      *logrus.Entry
	CodeRoot string

	// mu is held around waitHealthy's debug log line; the per-service retry
	// counter itself is a local variable of each waitHealthy call. Grounded
	// on PodmanCommand.ContainerMutex/ServiceMutex.
	mu deadlock.Mutex
}

// New wires an Orchestrator around runtime.
func New(runtime engine.Runtime, hubName, codeRoot string, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		Runtime:  runtime,
		Svc:      containersvc.New(runtime),
		Session:  session.New(runtime, hubName),
		Log:      log,
		CodeRoot: codeRoot,
	}
}

// ContainerStatusRow is one line of `status`/`db status`/`service status`.
type ContainerStatusRow struct {
	Name   string
	Kind   string
	State  engine.ContainerState
	Health engine.ContainerHealth
}

// Build optionally prunes stopped containers and dangling images, builds
// the image tag, recreates every service in the closure, then recreates the
// hub.
func (o *Orchestrator) Build(ctx context.Context, cfg *config.ResolvedConfig, skipCleanup bool) error {
	if !skipCleanup {
		if err := o.Runtime.PruneContainers(ctx); err != nil {
			o.Log.WithError(err).Warn("prune containers before build failed")
		}
		if err := o.Runtime.PruneImages(ctx); err != nil {
			o.Log.WithError(err).Warn("prune images before build failed")
		}
	}

	containerfile := filepath.Join(".", cfg.Paths.Containerfile)
	if err := o.Runtime.Build(ctx, cfg.Build.ImageName, containerfile, "."); err != nil {
		return err
	}

	for _, svc := range cfg.Services {
		if err := o.Svc.Recreate(ctx, svc.ToSpec()); err != nil {
			return errdomain.Newf(errdomain.EngineError, "recreating %s: %v", svc.Name, err)
		}
	}

	hubSpec := containersvc.HubSpec(cfg.AppConfig, o.CodeRoot)
	return o.Svc.Recreate(ctx, hubSpec)
}

// Up resolves the closure (already resolved into cfg), optionally filters
// by kind, ensures each service is created, runs the start-and-wait
// protocol, then ensures the hub is running.
func (o *Orchestrator) Up(ctx context.Context, cfg *config.ResolvedConfig, filter config.Kind) error {
	services := filterByKind(cfg.Services, filter)

	for _, svc := range services {
		if err := o.Svc.EnsureCreated(ctx, svc.ToSpec()); err != nil {
			return errdomain.Newf(errdomain.EngineError, "creating %s: %v", svc.Name, err)
		}
	}

	if err := o.startAndWait(ctx, services); err != nil {
		return err
	}

	return o.Svc.EnsureRunning(ctx, cfg.Container.Name)
}

// startAndWait is the health-gated batch start: every start is issued up
// front (bounded by errgroup so a slow engine call doesn't serialize the
// whole batch), then each service with a healthcheck is polled in
// declaration order until Healthy, NotApplicable, or its retry budget is
// exhausted.
func (o *Orchestrator) startAndWait(ctx context.Context, services []config.Service) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(8)

	for _, svc := range services {
		svc := svc
		group.Go(func() error {
			if err := o.Runtime.Start(gctx, svc.Name); err != nil {
				return errdomain.Newf(errdomain.EngineError, "starting %s: %v", svc.Name, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, svc := range services {
		if svc.Healthcheck.Command == "" {
			continue
		}
		if err := o.waitHealthy(ctx, svc); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) waitHealthy(ctx context.Context, svc config.Service) error {
	retries := svc.Healthcheck.Retries
	if retries == 0 {
		retries = 3
	}
	interval, err := config.ParseDuration(svc.Healthcheck.Interval)
	if err != nil {
		interval = time.Second
	}

	o.mu.Lock()
	o.Log.Debugf("waiting for %s to become healthy (retries=%d interval=%s)", svc.Name, retries, interval)
	o.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return errdomain.New(errdomain.UserAbort, "health wait for "+svc.Name+" interrupted")
		default:
		}

		health, err := o.Runtime.Health(ctx, svc.Name)
		if err != nil {
			return errdomain.Newf(errdomain.EngineError, "checking health of %s: %v", svc.Name, err)
		}

		switch health {
		case engine.Healthy, engine.NotApplicable:
			return nil
		case engine.Starting, engine.Unknown:
			select {
			case <-ctx.Done():
				return errdomain.New(errdomain.UserAbort, "health wait for "+svc.Name+" interrupted")
			case <-time.After(interval):
			}
		case engine.Unhealthy:
			retries--
			if retries <= 0 {
				return errdomain.New(errdomain.StartupFailed, "service "+svc.Name+" did not become healthy")
			}
			select {
			case <-ctx.Done():
				return errdomain.New(errdomain.UserAbort, "health wait for "+svc.Name+" interrupted")
			case <-time.After(interval):
			}
		}
	}
}

// StartNames creates (if needed) and starts the named subset of cfg.Services,
// running the same health-gated wait as Up. Used by `db start`/`service
// start` when scoped to specific containers rather than a whole kind.
func (o *Orchestrator) StartNames(ctx context.Context, cfg *config.ResolvedConfig, names []string) error {
	scoped := scopeByNames(cfg.Services, names)
	for _, svc := range scoped {
		if err := o.Svc.EnsureCreated(ctx, svc.ToSpec()); err != nil {
			return errdomain.Newf(errdomain.EngineError, "creating %s: %v", svc.Name, err)
		}
	}
	return o.startAndWait(ctx, scoped)
}

// Down enumerates every known container (hub + closure) and stops each.
// Individual failures are reported but never abort the batch.
func (o *Orchestrator) Down(ctx context.Context, cfg *config.ResolvedConfig) []error {
	names := append(serviceNames(cfg.Services), cfg.Container.Name)
	return o.Svc.StopAll(ctx, names)
}

// Shell attaches to the hub, auto-initializing or starting it as needed,
// optionally bringing up databases first, and rebasing the host cwd onto
// the hub's code-root mount.
func (o *Orchestrator) Shell(ctx context.Context, cfg *config.ResolvedConfig, withDBs, autoStop bool, hostCwd string) (int, error) {
	state, err := o.Runtime.State(ctx, cfg.Container.Name)
	if err != nil {
		return -1, err
	}

	switch state {
	case engine.NotCreated:
		if err := o.Build(ctx, cfg, false); err != nil {
			return -1, err
		}
	case engine.Stopped:
		if err := o.Runtime.Start(ctx, cfg.Container.Name); err != nil {
			return -1, err
		}
	}

	if withDBs {
		if err := o.Up(ctx, cfg, config.Database); err != nil {
			return -1, err
		}
	}

	workdir := RebaseWorkdir(hostCwd, o.CodeRoot, cfg.Container.Workdir)
	code, err := o.Runtime.ExecShell(ctx, cfg.Container.Name, workdir)
	if err != nil {
		return code, err
	}

	if autoStop {
		_ = o.Down(ctx, cfg)
	}
	return code, nil
}

// RebaseWorkdir computes the in-container workdir for `shell`: the host cwd
// rebased from codeRoot onto /home/<user>/code when cwd lies inside the
// code root, or the hub's configured workdir otherwise.
func RebaseWorkdir(hostCwd, codeRoot, hubWorkdir string) string {
	rel, err := filepath.Rel(codeRoot, hostCwd)
	if err != nil || strings.HasPrefix(rel, "..") || rel == ".." {
		return hubWorkdir
	}
	if rel == "." {
		return containerCodeDir(hubWorkdir)
	}
	return filepath.Join(containerCodeDir(hubWorkdir), rel)
}

// containerCodeDir is the hub's code-root mount, /home/<user>/code, with
// <user> taken from the hub workdir the same way containersvc.HubSpec does
// ("dev" when the workdir is not under /home/).
func containerCodeDir(hubWorkdir string) string {
	user := "dev"
	if rest := strings.TrimPrefix(hubWorkdir, "/home/"); rest != hubWorkdir && rest != "" {
		user = strings.SplitN(rest, "/", 2)[0]
	}
	return "/home/" + user + "/code"
}

// ProjectUp locates projectCfg (already loaded by the caller via
// discovery.FindProject + config.Load), runs start-and-wait on its closed
// service list, and opens or attaches the project's session.
func (o *Orchestrator) ProjectUp(ctx context.Context, projectName, projectDir string, projectCfg *config.ResolvedConfig) (int, error) {
	for _, svc := range projectCfg.Services {
		if err := o.Svc.EnsureCreated(ctx, svc.ToSpec()); err != nil {
			return -1, errdomain.Newf(errdomain.EngineError, "creating %s: %v", svc.Name, err)
		}
	}
	if err := o.startAndWait(ctx, projectCfg.Services); err != nil {
		return -1, err
	}

	sessionName := fmt.Sprintf("%s-%s", hubNameFromSession(o.Session), projectName)
	return o.Session.OpenOrAttach(ctx, sessionName, projectDir, projectCfg.Project.StartupCommand)
}

func hubNameFromSession(s *session.Adapter) string {
	return s.HubName()
}

// CleanupFlags maps one-to-one onto the engine's prune operations.
type CleanupFlags struct {
	Containers bool
	Images     bool
	Volumes    bool
	BuildCache bool
	Nuke       bool
}

// Cleanup runs the requested prune operations. With no flag set, it
// conservatively prunes stopped containers, dangling images, and build
// cache, preserving volumes. --nuke removes everything, including named
// volumes, and requires no other flag.
func (o *Orchestrator) Cleanup(ctx context.Context, flags CleanupFlags) error {
	if flags.Nuke {
		return o.Runtime.NukeSystem(ctx)
	}

	noFlags := !flags.Containers && !flags.Images && !flags.Volumes && !flags.BuildCache
	if noFlags {
		flags.Containers = true
		flags.Images = true
		flags.BuildCache = true
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if flags.Containers {
		record(o.Runtime.PruneContainers(ctx))
	}
	if flags.Images {
		record(o.Runtime.PruneImages(ctx))
	}
	if flags.Volumes {
		record(o.Runtime.PruneVolumes(ctx))
	}
	if flags.BuildCache {
		record(o.Runtime.PruneBuildCache(ctx))
	}
	return firstErr
}

// Restart is `db restart`/`service restart`'s semantics, which spec.md §4.6
// lists as a CLI verb without separately defining: equivalent to `down`
// scoped to names followed by `up` scoped to the same names, never
// touching unrelated services.
func (o *Orchestrator) Restart(ctx context.Context, cfg *config.ResolvedConfig, names []string) []error {
	var errs []error
	for _, err := range o.Svc.StopAll(ctx, names) {
		errs = append(errs, err)
	}

	scoped := scopeByNames(cfg.Services, names)
	if err := o.startAndWait(ctx, scoped); err != nil {
		errs = append(errs, err)
	}
	for _, svc := range scoped {
		if err := o.Runtime.Start(ctx, svc.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Status returns one row per hub+closure container, for `status`,
// `db status`, and `service status` (the latter two scoped by kind and
// optional name by the caller).
func (o *Orchestrator) Status(ctx context.Context, cfg *config.ResolvedConfig) ([]ContainerStatusRow, error) {
	var rows []ContainerStatusRow

	for _, svc := range cfg.Services {
		state, err := o.Runtime.State(ctx, svc.Name)
		if err != nil {
			return nil, err
		}
		health, err := o.Runtime.Health(ctx, svc.Name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ContainerStatusRow{Name: svc.Name, Kind: string(svc.Kind()), State: state, Health: health})
	}

	hubState, err := o.Runtime.State(ctx, cfg.Container.Name)
	if err != nil {
		return nil, err
	}
	rows = append(rows, ContainerStatusRow{Name: cfg.Container.Name, Kind: "Hub", State: hubState, Health: engine.NotApplicable})

	return rows, nil
}

func filterByKind(services []config.Service, filter config.Kind) []config.Service {
	if filter == "" {
		return services
	}
	var out []config.Service
	for _, s := range services {
		if s.Kind() == filter {
			out = append(out, s)
		}
	}
	return out
}

func scopeByNames(services []config.Service, names []string) []config.Service {
	if len(names) == 0 {
		return services
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	var out []config.Service
	for _, s := range services {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

func serviceNames(services []config.Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.Name
	}
	return out
}
