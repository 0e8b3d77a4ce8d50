package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/urdfkit/pkg/meshio"
	"github.com/chazu/urdfkit/pkg/urdf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcome is what happened to one file.
type Outcome int

const (
	OutcomeMirrored Outcome = iota
	OutcomeMeshOnly         // no part document next to the mesh
	OutcomeSkipped          // a target already exists
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMirrored:
		return "mirrored"
	case OutcomeMeshOnly:
		return "mesh-only"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Report describes the handling of one source mesh.
type Report struct {
	Source  string
	Target  string
	Outcome Outcome
	Err     error
}

// ErrTargetExists is returned by File when a target exists and overwriting
// was not requested.
var ErrTargetExists = errors.New("mirror: target exists")

// FileOptions controls File and Bulk.
type FileOptions struct {
	Plane     Plane
	Formatter urdf.Formatter
	Overwrite bool
	Workers   int
	Logger    *zap.Logger
}

func (o FileOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// File mirrors the mesh at stlPath and, when present, its part document
// (same stem, .xml). Targets are written next to the source under the
// mirrored name.
func (m *Mirrorer) File(stlPath string, opts FileOptions) Report {
	dir := filepath.Dir(stlPath)
	stem := meshio.Stem(stlPath)
	target := Name(stem)
	targetSTL := filepath.Join(dir, target+filepath.Ext(stlPath))
	targetXML := filepath.Join(dir, target+".xml")
	rep := Report{Source: stlPath, Target: targetSTL}

	if !opts.Overwrite && (exists(targetSTL) || exists(targetXML)) {
		rep.Outcome = OutcomeSkipped
		rep.Err = ErrTargetExists
		return rep
	}

	mesh, err := meshio.Load(stlPath)
	if err != nil {
		return failed(rep, err)
	}
	mirrored := Mesh(mesh, opts.Plane)
	mirrored.PartName = target

	docPath := filepath.Join(dir, stem+".xml")
	if !exists(docPath) {
		if err := meshio.Save(targetSTL, mirrored); err != nil {
			return failed(rep, err)
		}
		rep.Outcome = OutcomeMeshOnly
		return rep
	}

	doc, err := urdf.ReadPartFile(docPath)
	if err != nil {
		return failed(rep, err)
	}
	vals, err := doc.Values()
	if err != nil {
		return failed(rep, fmt.Errorf("%s: %w", docPath, err))
	}
	if vals.Mass == nil {
		return failed(rep, fmt.Errorf("%s: %w: mass", docPath, urdf.ErrMissingValue))
	}
	authored := Authored{Mass: *vals.Mass}
	if vals.CenterOfMass != nil {
		authored.CenterOfMass = *vals.CenterOfMass
	} else {
		com, _ := m.engine.CenterOfMass(mesh, nil)
		opts.logger().Warn("no center of mass in part document; using the mesh centroid",
			zap.String("part", stem), zap.Float64s("centroid", com[:]))
		authored.CenterOfMass = com
	}

	res, err := m.Properties(mesh, opts.Plane, authored)
	if err != nil {
		return failed(rep, fmt.Errorf("%s: %w", stlPath, err))
	}
	out, err := Document(doc, target, opts.Plane, res.Properties, opts.Formatter)
	if err != nil {
		return failed(rep, err)
	}

	if err := meshio.Save(targetSTL, mirrored); err != nil {
		return failed(rep, err)
	}
	if err := urdf.WritePartFile(targetXML, out); err != nil {
		return failed(rep, err)
	}
	for _, d := range res.Properties.Diagnostics.Warnings() {
		opts.logger().Warn("mirrored part diagnostic", zap.String("part", target), zap.Stringer("diagnostic", d))
	}
	rep.Outcome = OutcomeMirrored
	return rep
}

// Bulk mirrors every left-hand mesh (L_ or l_ prefix, .stl extension) in
// dir. Existing right-hand targets are never overwritten. Reports are
// sorted by source path; per-file failures are reported, not returned.
func (m *Mirrorer) Bulk(ctx context.Context, dir string, opts FileOptions) ([]Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("mirror: %w", err)
	}
	var sources []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".stl") {
			continue
		}
		if strings.HasPrefix(name, "L_") || strings.HasPrefix(name, "l_") {
			sources = append(sources, filepath.Join(dir, name))
		}
	}

	opts.Overwrite = false
	log := opts.logger()
	reports := make([]Report, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = m.File(src, opts)
			log.Info("bulk mirror",
				zap.String("source", src),
				zap.String("target", reports[i].Target),
				zap.Stringer("outcome", reports[i].Outcome))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Source < reports[j].Source })
	return reports, nil
}

func failed(rep Report, err error) Report {
	rep.Outcome = OutcomeFailed
	rep.Err = err
	return rep
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
