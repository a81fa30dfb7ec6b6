package engine

import "context"

// Runtime is the narrow capability interface spec.md §4.1 asks for. Every
// operation is idempotent against its target state where noted, and every
// failure surfaces as an *errdomain.Error with Category EngineError.
type Runtime interface {
	// Create materializes a stopped container from spec. Fails with Kind
	// AlreadyExists if a container by that name already exists.
	Create(ctx context.Context, spec ContainerSpec) error
	// Start is a no-op if the container is already Running.
	Start(ctx context.Context, name string) error
	// Stop is a no-op if the container is already Stopped.
	Stop(ctx context.Context, name string) error
	// Remove deletes the container. Fails with Kind NotFound if absent.
	Remove(ctx context.Context, name string) error
	// State reports the normalized lifecycle state. NotCreated is returned,
	// not an error, when no container by that name exists.
	State(ctx context.Context, name string) (ContainerState, error)
	// Health reports the normalized healthcheck state. NotApplicable is
	// returned when the container has no healthcheck configured.
	Health(ctx context.Context, name string) (ContainerHealth, error)
	// ExecShell opens an interactive terminal inside the container at
	// workdir (empty means the container's configured home), propagating
	// the calling process's stdio and returning the exit code. With no
	// command it opens the container's login shell; the session adapter
	// passes a tmux invocation instead so the multiplexer itself becomes
	// the attached process.
	ExecShell(ctx context.Context, name, workdir string, command ...string) (int, error)
	// ExecCapture runs command inside the container non-interactively and
	// returns its captured stdout, trimmed of a trailing newline. Used for
	// commands whose result is consumed programmatically rather than
	// attached to a terminal, e.g. the session adapter's session listing.
	ExecCapture(ctx context.Context, name, workdir string, command ...string) (string, error)
	// Build invokes the engine's image build for containerfile against
	// context, tagging the result tag.
	Build(ctx context.Context, tag, containerfile, buildContext string) error

	PruneContainers(ctx context.Context) error
	PruneImages(ctx context.Context) error
	PruneVolumes(ctx context.Context) error
	PruneBuildCache(ctx context.Context) error
	// NukeSystem removes everything the engine manages, including named
	// volumes; it is the only destructive cleanup flag requiring no peers.
	NukeSystem(ctx context.Context) error

	Close() error
	Mode() string
}
