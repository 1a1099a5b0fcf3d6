// Package version implements the WDL version dialect registry: which
// grammar productions and semantic rules are active for each of
// 1.0/1.1/1.2/1.3.
package version

import (
	"fmt"
	"sort"
)

// Version identifies one of the four supported WDL language versions.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// AtLeast reports whether v is the same as or newer than other.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}

	return v.Minor >= other.Minor
}

var (
	V1_0 = Version{1, 0}
	V1_1 = Version{1, 1}
	V1_2 = Version{1, 2}
	V1_3 = Version{1, 3}
)

// Feature is a version-gated grammar or semantic capability.
type Feature string

const (
	FeatureInputKeywordOptional Feature = "call-input-keyword-optional"
	FeatureTaskHandle           Feature = "task-handle"
	FeatureTaskPrevious         Feature = "task-previous"
	FeatureTaskMaxRetries       Feature = "task-max-retries"
	FeatureRequirements         Feature = "requirements-section"
	FeatureHints                Feature = "hints-section"
	FeatureEnum                 Feature = "enum-decl"
	FeatureElseIf               Feature = "else-if"
	FeatureEnvModifier          Feature = "env-modifier"
	FeaturePlaceholderOptions   Feature = "placeholder-options" // sep=/default=/true=/false=
	FeatureNestedInputsHint     Feature = "allow-nested-inputs-hint"
)

// Dialect exposes the feature set and parse/validation behavior active
// for one WDL version. Dialects are registered once at init time via
// RegisterDialect and looked up by Version.
type Dialect interface {
	Version() Version
	Supports(f Feature) bool
}

type dialect struct {
	version  Version
	features map[Feature]bool
}

func (d *dialect) Version() Version        { return d.version }
func (d *dialect) Supports(f Feature) bool { return d.features[f] }

// DialectFactory constructs a Dialect for a registered version.
type DialectFactory func() Dialect

var dialects = map[Version]DialectFactory{}

// RegisterDialect adds a dialect factory for v. Called from this
// package's init; exported so a future version can be registered by a
// collaborator without modifying this file.
func RegisterDialect(v Version, factory DialectFactory) {
	dialects[v] = factory
}

// ErrUnknownVersion is returned by Resolve for an unregistered version
// string, e.g. a `version 2.0` header this toolchain doesn't implement.
type ErrUnknownVersion struct{ Raw string }

func (e *ErrUnknownVersion) Error() string { return "wdl: unknown version " + e.Raw }

// Resolve parses a raw version header token ("1.0", "1.3", ...) and
// returns its registered Dialect.
func Resolve(raw string) (Dialect, error) {
	v, ok := parse(raw)
	if !ok {
		return nil, &ErrUnknownVersion{Raw: raw}
	}

	factory, ok := dialects[v]
	if !ok {
		return nil, &ErrUnknownVersion{Raw: raw}
	}

	return factory(), nil
}

// Registered returns every registered version, sorted oldest-first.
func Registered() []Version {
	out := make([]Version, 0, len(dialects))
	for v := range dialects {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Major != out[j].Major {
			return out[i].Major < out[j].Major
		}

		return out[i].Minor < out[j].Minor
	})

	return out
}

func parse(raw string) (Version, bool) {
	var major, minor int

	n, err := fmt.Sscanf(raw, "%d.%d", &major, &minor)
	if err != nil || n != 2 {
		return Version{}, false
	}

	return Version{major, minor}, true
}

func init() {
	RegisterDialect(V1_0, func() Dialect {
		return &dialect{version: V1_0, features: map[Feature]bool{
			FeaturePlaceholderOptions: true,
		}}
	})
	RegisterDialect(V1_1, func() Dialect {
		return &dialect{version: V1_1, features: map[Feature]bool{
			// placeholder options are already deprecated in 1.1 but still
			// parse; FeaturePlaceholderOptions tracks "still legal", not
			// "preferred" — the deprecation itself is a lint concern.
			FeaturePlaceholderOptions: true,
		}}
	})
	RegisterDialect(V1_2, func() Dialect {
		return &dialect{version: V1_2, features: map[Feature]bool{
			FeatureInputKeywordOptional: true,
			FeatureTaskHandle:           true,
			FeatureRequirements:         true,
			FeatureHints:                true,
			FeatureEnvModifier:          true,
			FeatureNestedInputsHint:     true,
		}}
	})
	RegisterDialect(V1_3, func() Dialect {
		return &dialect{version: V1_3, features: map[Feature]bool{
			FeatureInputKeywordOptional: true,
			FeatureTaskHandle:           true,
			FeatureTaskPrevious:         true,
			FeatureTaskMaxRetries:       true,
			FeatureRequirements:         true,
			FeatureHints:                true,
			FeatureEnum:                 true,
			FeatureElseIf:               true,
			FeatureEnvModifier:          true,
			FeatureNestedInputsHint:     true,
		}}
	})
}
