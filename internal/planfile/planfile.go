// Package planfile loads split plans from YAML.
//
// A plan file declares everything a run needs: the source document, the
// boundary markers, the segments cut between them, visibility policy and
// renames. The library packages below never read plan files themselves;
// this package turns YAML into the core types they consume.
package planfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chiselkit/chisel/pkg/core"
)

// Plan is the parsed, validated form of a plan file.
type Plan struct {
	Path string // plan file location, used to resolve relative paths

	Source   string              `yaml:"source"`
	Shim     bool                `yaml:"shim"`
	Markers  []MarkerSpec        `yaml:"markers"`
	Segments []SegmentSpec       `yaml:"segments"`
	Exports  map[string][]string `yaml:"exports"`
	Renames  []RenameSpec        `yaml:"renames"`
}

// MarkerSpec declares one boundary marker.
type MarkerSpec struct {
	ID     string `yaml:"id"`
	Match  string `yaml:"match"`
	Kind   string `yaml:"kind"`   // literal | regex | decl; default literal
	Role   string `yaml:"role"`   // segment-start | segment-end | exclude
	Unique *bool  `yaml:"unique"` // default true
}

// SegmentSpec declares one segment between markers.
type SegmentSpec struct {
	Name       string `yaml:"name"`
	Start      string `yaml:"start"` // marker ID
	End        string `yaml:"end"`   // marker ID; empty means next start or EOF
	Dest       string `yaml:"dest"`
	Visibility string `yaml:"visibility"`
	Trim       *bool  `yaml:"trim"` // trim blank boundary lines; default true
}

// RenameSpec declares one symbol rename.
type RenameSpec struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Export bool   `yaml:"export"`
}

var knownFields = map[string]bool{
	"source":   true,
	"shim":     true,
	"markers":  true,
	"segments": true,
	"exports":  true,
	"renames":  true,
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	plan.Path = path
	return plan, nil
}

// Parse parses plan YAML. Unknown top-level fields are rejected so a
// typo'd key fails loudly instead of being silently ignored.
func Parse(data []byte) (*Plan, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	for field := range raw {
		if !knownFields[field] {
			return nil, fmt.Errorf("unknown field %q", field)
		}
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *Plan) validate() error {
	if p.Source == "" {
		return fmt.Errorf("plan has no source")
	}
	if len(p.Markers) == 0 {
		return fmt.Errorf("plan has no markers")
	}
	if len(p.Segments) == 0 {
		return fmt.Errorf("plan has no segments")
	}

	markerIDs := make(map[string]bool, len(p.Markers))
	for i, m := range p.Markers {
		if m.ID == "" {
			return fmt.Errorf("marker %d has no id", i)
		}
		if m.Match == "" {
			return fmt.Errorf("marker %q has no match", m.ID)
		}
		if markerIDs[m.ID] {
			return fmt.Errorf("duplicate marker id %q", m.ID)
		}
		markerIDs[m.ID] = true
		switch m.Kind {
		case "", "literal", "regex", "decl":
		default:
			return fmt.Errorf("marker %q: unknown kind %q", m.ID, m.Kind)
		}
		switch m.Role {
		case "", "segment-start", "segment-end", "exclude":
		default:
			return fmt.Errorf("marker %q: unknown role %q", m.ID, m.Role)
		}
	}

	segNames := make(map[string]bool, len(p.Segments))
	for i, s := range p.Segments {
		if s.Name == "" {
			return fmt.Errorf("segment %d has no name", i)
		}
		if segNames[s.Name] {
			return fmt.Errorf("duplicate segment name %q", s.Name)
		}
		segNames[s.Name] = true
		if s.Start == "" {
			return fmt.Errorf("segment %q has no start marker", s.Name)
		}
		if !markerIDs[s.Start] {
			return fmt.Errorf("segment %q: unknown start marker %q", s.Name, s.Start)
		}
		if s.End != "" && !markerIDs[s.End] {
			return fmt.Errorf("segment %q: unknown end marker %q", s.Name, s.End)
		}
		if s.Dest == "" {
			return fmt.Errorf("segment %q has no dest", s.Name)
		}
		if _, err := core.ParseVisibility(s.Visibility); err != nil {
			return fmt.Errorf("segment %q: %w", s.Name, err)
		}
	}

	for name, syms := range p.Exports {
		if !segNames[name] {
			return fmt.Errorf("exports: unknown segment %q", name)
		}
		if len(syms) == 0 {
			return fmt.Errorf("exports: segment %q lists no symbols", name)
		}
	}

	for i, r := range p.Renames {
		if r.From == "" || r.To == "" {
			return fmt.Errorf("rename %d: from and to are required", i)
		}
	}
	return nil
}

// SourcePath resolves the source document relative to the plan file.
func (p *Plan) SourcePath() string {
	return p.resolve(p.Source)
}

// DestPath resolves a segment destination relative to the plan file.
func (p *Plan) DestPath(dest string) string {
	return p.resolve(dest)
}

func (p *Plan) resolve(path string) string {
	if p.Path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(p.Path), path)
}

// CoreMarkers converts marker specs into compiled core markers.
func (p *Plan) CoreMarkers() ([]core.Marker, error) {
	markers := make([]core.Marker, 0, len(p.Markers))
	for _, spec := range p.Markers {
		m := core.Marker{
			ID:      spec.ID,
			Pattern: spec.Match,
			Kind:    core.MarkerKind(spec.Kind),
			Role:    core.MarkerRole(spec.Role),
			Unique:  true,
		}
		if m.Kind == "" {
			m.Kind = core.MarkerLiteral
		}
		if m.Role == "" {
			m.Role = core.RoleSegmentStart
		}
		if spec.Unique != nil {
			m.Unique = *spec.Unique
		}
		if err := m.Compile(); err != nil {
			return nil, fmt.Errorf("marker %q: %w", spec.ID, err)
		}
		markers = append(markers, m)
	}
	return markers, nil
}

// CoreRenames converts rename specs into core renames.
func (p *Plan) CoreRenames() []core.Rename {
	renames := make([]core.Rename, 0, len(p.Renames))
	for _, r := range p.Renames {
		renames = append(renames, core.Rename{From: r.From, To: r.To, Export: r.Export})
	}
	return renames
}
