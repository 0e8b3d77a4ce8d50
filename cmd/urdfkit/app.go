package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/urdfkit/internal/config"
	"github.com/chazu/urdfkit/internal/watch"
	"github.com/chazu/urdfkit/pkg/build"
	"github.com/chazu/urdfkit/pkg/engine"
	"github.com/chazu/urdfkit/pkg/graph"
	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/chazu/urdfkit/pkg/kernel/sdfx"
	"github.com/chazu/urdfkit/pkg/massprop"
	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/mirror"
	"github.com/chazu/urdfkit/pkg/part"
	"github.com/chazu/urdfkit/pkg/urdf"
	"go.uber.org/zap"
)

// App wires configuration, logging and the engines behind the commands.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	mass   *massprop.Engine
	kernel kernel.Kernel
	out    io.Writer
}

// NewApp creates an App from a loaded configuration.
func NewApp(cfg *config.Config, log *zap.Logger, out io.Writer) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		log:    log,
		mass:   massprop.New(cfg.MassProp(log)),
		kernel: sdfx.New(sdfx.WithMeshCells(cfg.Kernel.MeshCells)),
		out:    out,
	}
}

// partOptions returns the file options implied by the configuration.
func (a *App) partOptions() part.FileOptions {
	return part.FileOptions{
		DefaultDensity: a.cfg.Material.DefaultDensity,
		DefaultColor:   a.cfg.Color(),
		Formatter:      a.cfg.Formatter(),
	}
}

// Compute writes the part document of one mesh and prints its summary.
func (a *App) Compute(stlPath string, opts part.FileOptions) error {
	docPath, res, err := part.File(a.mass, stlPath, opts)
	if err != nil {
		return err
	}
	for _, d := range res.Properties.Diagnostics.Warnings() {
		a.log.Warn("mass properties", zap.String("mesh", stlPath), zap.Stringer("diagnostic", d))
	}
	if res.Reconciled.Conflict {
		a.log.Warn("pinned volume, density and mass disagree; density recomputed", zap.String("mesh", stlPath))
	}

	f := opts.Formatter
	p := res.Properties
	fmt.Fprintf(a.out, "%s\n", docPath)
	fmt.Fprintf(a.out, "  volume:  %s\n", f.Scalar(p.Volume))
	fmt.Fprintf(a.out, "  density: %s\n", f.Scalar(p.Density))
	fmt.Fprintf(a.out, "  mass:    %s (%s)\n", f.Scalar(p.Mass), res.Reconciled.Rule)
	fmt.Fprintf(a.out, "  com:     %s\n", f.Vec3(p.CenterOfMass))
	fmt.Fprintf(a.out, "  %s\n", urdf.InertiaElement(p.Inertia))
	return nil
}

// Mirror mirrors one mesh and its part document.
func (a *App) Mirror(stlPath string, overwrite bool) error {
	rep := mirror.New(a.mass).File(stlPath, a.fileOptions(overwrite))
	if rep.Err != nil {
		return rep.Err
	}
	fmt.Fprintf(a.out, "%s -> %s (%s)\n", rep.Source, rep.Target, rep.Outcome)
	return nil
}

// BulkMirror mirrors every left-hand mesh in dir and reports each file.
// It fails when any file failed.
func (a *App) BulkMirror(ctx context.Context, dir string) error {
	reports, err := mirror.New(a.mass).Bulk(ctx, dir, a.fileOptions(false))
	if err != nil {
		return err
	}
	var failed []error
	for _, r := range reports {
		fmt.Fprintf(a.out, "%-10s %s -> %s\n", r.Outcome, filepath.Base(r.Source), filepath.Base(r.Target))
		if r.Outcome == mirror.OutcomeFailed {
			failed = append(failed, fmt.Errorf("%s: %w", r.Source, r.Err))
		}
	}
	return errors.Join(failed...)
}

func (a *App) fileOptions(overwrite bool) mirror.FileOptions {
	return mirror.FileOptions{
		Plane:     a.cfg.Plane(),
		Formatter: a.cfg.Formatter(),
		Overwrite: overwrite,
		Workers:   a.cfg.Engine.Workers,
		Logger:    a.log,
	}
}

// Build evaluates a recipe and writes <robot>.urdf into outDir, with the
// meshes and part documents of every link in the mesh directory.
func (a *App) Build(ctx context.Context, recipePath, outDir string) (*build.Output, error) {
	src, err := os.ReadFile(recipePath)
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine(engine.WithLogger(a.log))
	g, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = fmt.Errorf("%s: %w", recipePath, e)
		}
		return nil, errors.Join(errs...)
	}

	out, err := build.Build(ctx, g, build.Options{
		Kernel:         a.kernel,
		Loader:         meshio.FileLoader{Root: filepath.Dir(recipePath)},
		Engine:         a.mass,
		Formatter:      a.cfg.Formatter(),
		DefaultDensity: a.cfg.Material.DefaultDensity,
		DefaultColor:   a.cfg.Color(),
		MeshDir:        a.cfg.Export.MeshDir,
		Workers:        a.cfg.Engine.Workers,
		Logger:         a.log,
	})
	if err != nil {
		return nil, err
	}
	if err := a.writeOutput(out, outDir); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *App) writeOutput(out *build.Output, outDir string) error {
	meshDir := filepath.Join(outDir, out.MeshDir)
	if err := os.MkdirAll(meshDir, 0o755); err != nil {
		return err
	}
	for _, l := range out.Links {
		if l.MeshFile != "" && l.Mesh != nil {
			if err := meshio.Save(filepath.Join(meshDir, l.MeshFile), l.Mesh); err != nil {
				return err
			}
		}
		if l.Part != nil {
			if err := urdf.WritePartFile(filepath.Join(meshDir, l.Name+".xml"), l.Part); err != nil {
				return err
			}
		}
	}

	robotPath := filepath.Join(outDir, out.Robot.Name+".urdf")
	f, err := os.Create(robotPath)
	if err != nil {
		return err
	}
	if err := out.Robot.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.Info("robot written", zap.String("path", robotPath), zap.Int("links", len(out.Robot.Links)))
	fmt.Fprintln(a.out, robotPath)
	return nil
}

// Reorigin moves the origin of a mesh to one of its attachment points and
// writes the shifted mesh and part document.
func (a *App) Reorigin(stlPath, point, outPath string) error {
	out, res, err := part.Reorigin(a.mass, stlPath, part.ReoriginOptions{
		Point:          point,
		Output:         outPath,
		DefaultDensity: a.cfg.Material.DefaultDensity,
		Formatter:      a.cfg.Formatter(),
	})
	if err != nil {
		return err
	}
	for _, d := range res.Properties.Diagnostics.Warnings() {
		a.log.Warn("mass properties", zap.String("mesh", out), zap.Stringer("diagnostic", d))
	}
	fmt.Fprintf(a.out, "%s -> %s\n", stlPath, out)
	return nil
}

// Primitive tessellates a primitive shape and saves it as STL.
func (a *App) Primitive(sh graph.Shape, outPath string) error {
	name := meshio.Stem(outPath)
	m, err := build.Tessellate(a.kernel, name, sh)
	if err != nil {
		return err
	}
	if err := meshio.Save(outPath, m); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d triangles\n", outPath, m.TriangleCount())
	return nil
}

// Watch recomputes part documents in dir until ctx is cancelled.
func (a *App) Watch(ctx context.Context, dir string) error {
	w, err := watch.New(dir, a.mass, a.partOptions(), a.log)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
