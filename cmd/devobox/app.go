package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/devobox/devobox/pkg/config"
	"github.com/devobox/devobox/pkg/engine"
	"github.com/devobox/devobox/pkg/errdomain"
	applog "github.com/devobox/devobox/pkg/log"
	"github.com/devobox/devobox/pkg/orchestrator"
	"github.com/devobox/devobox/pkg/osexec"
)

// appContext bundles the wiring most subcommands need (all but `install`,
// `project list`, and `project info`): logger, subprocess runner, live
// engine connection, and orchestrator.
type appContext struct {
	Log      *logrus.Entry
	OS       *osexec.OSCommand
	Runtime  engine.Runtime
	Orch     *orchestrator.Orchestrator
	Cfg      *config.ResolvedConfig
	CodeRoot string
	ConfigDir string
}

// bootstrap resolves the config directory, loads the layered configuration,
// connects to the engine (tunneling over ssh first if CONTAINER_HOST/
// DOCKER_HOST names an ssh:// host), and wires an Orchestrator. The
// returned closer must be deferred by the caller to release the engine
// connection and any ssh tunnel.
func bootstrap(ctx context.Context) (*appContext, func(), error) {
	configDir, err := config.ConfigDir(flagConfigDir)
	if err != nil {
		return nil, nil, errdomain.Newf(errdomain.ConfigError, "resolving config directory: %v", err)
	}

	log := newLogger(configDir)
	osCmd := osexec.New(log)

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(cwd, configDir)
	if err != nil {
		return nil, nil, errdomain.Newf(errdomain.ConfigError, "%v", err)
	}

	socketPath, err := engine.DetectSocket(log)
	if err != nil {
		return nil, nil, errdomain.Newf(errdomain.EngineError, "%v", err)
	}
	resolved, tunnel, err := engine.ResolveHost(ctx, socketPath, osCmd)
	if err != nil {
		return nil, nil, errdomain.Newf(errdomain.EngineError, "opening ssh tunnel to engine: %v", err)
	}

	runtime, err := engine.NewSocketRuntime(ctx, resolved, osCmd, tunnel)
	if err != nil {
		return nil, nil, err
	}

	codeRoot := config.CodeRoot()
	orch := orchestrator.New(runtime, cfg.Container.Name, codeRoot, log)

	app := &appContext{
		Log:       log,
		OS:        osCmd,
		Runtime:   runtime,
		Orch:      orch,
		Cfg:       cfg,
		CodeRoot:  codeRoot,
		ConfigDir: configDir,
	}

	return app, func() { _ = runtime.Close() }, nil
}

func newLogger(configDir string) *logrus.Entry {
	return applog.NewLogger(configDir, flagDebug, version)
}

// formatErr applies the CLI layer's single formatting policy: a leading
// glyph plus the category prefix. No stack trace is printed, with or
// without --debug.
func formatErr(err error) string {
	var de *errdomain.Error
	if xerrors.As(err, &de) {
		glyph := color.RedString("✗")
		if de.Category == errdomain.UserAbort {
			glyph = color.YellowString("⚠")
		}
		return fmt.Sprintf("%s %s: %s", glyph, de.Category, de.Message)
	}
	return fmt.Sprintf("%s %v", color.RedString("✗"), err)
}
