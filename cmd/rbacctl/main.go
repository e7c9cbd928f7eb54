package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/punit-mobi/RBAC-project/internal/adminctl"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server"
	"github.com/punit-mobi/RBAC-project/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := commandArgs(os.Args[1:])
	if len(args) == 0 {
		adminctl.Usage(os.Stderr)
		return 2
	}

	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer app.Close()

	if err := adminctl.New(app, os.Stdin, os.Stdout).Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, adminctl.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}

// valueFlags are the config flags that take a separate value argument.
var valueFlags = map[string]bool{
	"-a": true, "-d": true, "-s": true, "-t": true, "-l": true,
	"-u": true, "-p": true, "-b": true, "-g": true, "-e": true,
	"-c": true, "-config": true, "--config": true,
}

// commandArgs returns the arguments from the command name onwards, so
// config flags may precede the command.
func commandArgs(argv []string) []string {
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if !strings.HasPrefix(arg, "-") {
			return argv[i:]
		}
		if valueFlags[arg] {
			i++
		}
	}
	return nil
}
