// urdfkit computes URDF mass properties for robot parts and assembles
// robot descriptions from recipes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chazu/urdfkit/internal/config"
	"github.com/chazu/urdfkit/internal/logger"
	"github.com/chazu/urdfkit/pkg/graph"
	"github.com/chazu/urdfkit/pkg/reconcile"
	"github.com/chazu/urdfkit/pkg/urdf"
	"github.com/go-gl/mathgl/mgl64"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	command, args := args[0], args[1:]
	var err error
	switch command {
	case "compute":
		err = cmdCompute(ctx, args, stdout)
	case "mirror":
		err = cmdMirror(ctx, args, stdout)
	case "bulk-mirror":
		err = cmdBulkMirror(ctx, args, stdout)
	case "reorigin":
		err = cmdReorigin(ctx, args, stdout)
	case "build":
		err = cmdBuild(ctx, args, stdout)
	case "primitive", "prim":
		err = cmdPrimitive(ctx, args, stdout)
	case "watch":
		err = cmdWatch(ctx, args, stdout)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 2
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `urdfkit - URDF part mass properties and robot assembly

Usage:
  urdfkit <command> [options] <args>

Commands:
  compute <part.stl>...        Compute mass properties and write <part>.xml
  mirror <L_part.stl>          Mirror a part and its document
  bulk-mirror <dir>            Mirror every L_/l_ part in a directory
  reorigin <part.stl>          Move the mesh origin to an attachment point
  build <recipe> [-o dir]      Assemble a robot from a recipe
  primitive -o <out.stl>       Generate a box, cylinder or sphere mesh
  watch <dir>                  Recompute part documents when meshes change

Global options (all commands):
  -config <file>   config file (.yaml or .toml)
  -debug           debug logging
  -workers <n>     parallel workers
  -digits <n>      significant digits for exported scalars

Examples:
  urdfkit compute -mass 0.35 meshes/L_upper_arm.stl
  urdfkit bulk-mirror -plane xz meshes
  urdfkit build -o out examples/arm/arm.lisp
  urdfkit primitive -shape cylinder -radius 0.02 -length 0.3 -o wheel.stl`)
}

// env is the per-command setup shared by every command.
type env struct {
	fs    *flag.FlagSet
	flags *config.Flags
}

func newEnv(name string) *env {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &env{fs: fs, flags: config.RegisterFlags(fs)}
}

// app parses args and builds the App.
func (e *env) app(args []string, stdout io.Writer) (*App, error) {
	if err := e.fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(e.flags.Config, e.flags)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	return NewApp(cfg, log, stdout), nil
}

func cmdCompute(_ context.Context, args []string, stdout io.Writer) error {
	e := newEnv("compute")
	mass := e.fs.String("mass", "", "Pin the mass (kg)")
	density := e.fs.String("density", "", "Pin the density (kg/m^3)")
	volume := e.fs.String("volume", "", "Pin the volume (m^3)")
	com := e.fs.String("com", "", "Override the center of mass, \"x y z\"")
	color := e.fs.String("color", "", "Part color as #RRGGBB")
	axis := e.fs.String("axis", "", "Joint axis, \"x y z\"")
	app, err := e.app(args, stdout)
	if err != nil {
		return err
	}
	defer logger.Sync(app.log)
	if e.fs.NArg() < 1 {
		return errors.New("usage: urdfkit compute [options] <part.stl>...")
	}

	opts := app.partOptions()
	opts.Pinned, err = reconcile.ParseInputs(
		reconcile.Field{Text: *volume, Pinned: *volume != ""},
		reconcile.Field{Text: *density, Pinned: *density != ""},
		reconcile.Field{Text: *mass, Pinned: *mass != ""},
	)
	if err != nil {
		return err
	}
	if opts.CenterOfMass, err = optionalVec3(*com); err != nil {
		return err
	}
	if opts.Axis, err = optionalVec3(*axis); err != nil {
		return err
	}
	if *color != "" {
		c, err := urdf.ParseHexColor(*color)
		if err != nil {
			return err
		}
		opts.Color = &c
	}

	for _, path := range e.fs.Args() {
		if err := app.Compute(path, opts); err != nil {
			return err
		}
	}
	return nil
}

func optionalVec3(s string) (*mgl64.Vec3, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := reconcile.ParseVec3(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func cmdMirror(_ context.Context, args []string, stdout io.Writer) error {
	e := newEnv("mirror")
	overwrite := e.fs.Bool("overwrite", false, "Replace existing targets")
	app, err := e.app(args, stdout)
	if err != nil {
		return err
	}
	defer logger.Sync(app.log)
	if e.fs.NArg() != 1 {
		return errors.New("usage: urdfkit mirror [options] <part.stl>")
	}
	return app.Mirror(e.fs.Arg(0), *overwrite)
}

func cmdReorigin(_ context.Context, args []string, stdout io.Writer) error {
	e := newEnv("reorigin")
	point := e.fs.String("point", "", "Attachment point to use as origin (default: first)")
	out := e.fs.String("o", "", "Output mesh (default: <stem>_origin.stl)")
	app, err := e.app(args, stdout)
	if err != nil {
		return err
	}
	defer logger.Sync(app.log)
	if e.fs.NArg() != 1 {
		return errors.New("usage: urdfkit reorigin [-point name] [-o out.stl] <part.stl>")
	}
	return app.Reorigin(e.fs.Arg(0), *point, *out)
}

func cmdBulkMirror(ctx context.Context, args []string, stdout io.Writer) error {
	e := newEnv("bulk-mirror")
	app, err := e.app(args, stdout)
	if err != nil {
		return err
	}
	defer logger.Sync(app.log)
	if e.fs.NArg() != 1 {
		return errors.New("usage: urdfkit bulk-mirror [options] <dir>")
	}
	return app.BulkMirror(ctx, e.fs.Arg(0))
}

func cmdBuild(ctx context.Context, args []string, stdout io.Writer) error {
	e := newEnv("build")
	outDir := e.fs.String("o", ".", "Output directory")
	app, err := e.app(args, stdout)
	if err != nil {
		return err
	}
	defer logger.Sync(app.log)
	if e.fs.NArg() != 1 {
		return errors.New("usage: urdfkit build [options] <recipe>")
	}
	_, err = app.Build(ctx, e.fs.Arg(0), *outDir)
	return err
}

func cmdPrimitive(_ context.Context, args []string, stdout io.Writer) error {
	e := newEnv("primitive")
	shape := e.fs.String("shape", "box", "box, cylinder or sphere")
	size := e.fs.String("size", "1 1 1", "Box edge lengths, \"x y z\"")
	radius := e.fs.Float64("radius", 0.5, "Cylinder or sphere radius")
	length := e.fs.Float64("length", 1, "Cylinder length")
	out := e.fs.String("o", "", "Output STL path")
	app, err := e.app(args, stdout)
	if err != nil {
		return err
	}
	defer logger.Sync(app.log)
	if *out == "" {
		return errors.New("usage: urdfkit primitive -shape <kind> [dimensions] -o <out.stl>")
	}

	sh, err := parseShape(*shape, *size, *radius, *length)
	if err != nil {
		return err
	}
	return app.Primitive(sh, *out)
}

func parseShape(kind, size string, radius, length float64) (graph.Shape, error) {
	switch strings.ToLower(kind) {
	case "box":
		v, err := reconcile.ParseVec3(size)
		if err != nil {
			return graph.Shape{}, err
		}
		return graph.Shape{Kind: graph.ShapeBox, Size: v}, nil
	case "cylinder":
		return graph.Shape{Kind: graph.ShapeCylinder, Radius: radius, Length: length}, nil
	case "sphere":
		return graph.Shape{Kind: graph.ShapeSphere, Radius: radius}, nil
	}
	return graph.Shape{}, fmt.Errorf("unknown shape %q", kind)
}

func cmdWatch(ctx context.Context, args []string, stdout io.Writer) error {
	e := newEnv("watch")
	app, err := e.app(args, stdout)
	if err != nil {
		return err
	}
	defer logger.Sync(app.log)
	if e.fs.NArg() != 1 {
		return errors.New("usage: urdfkit watch [options] <dir>")
	}
	return app.Watch(ctx, e.fs.Arg(0))
}
