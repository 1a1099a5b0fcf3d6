package version_test

import (
	"testing"

	"github.com/wdltools/wdl/version"
)

func TestResolveKnownVersions(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"1.0", "1.1", "1.2", "1.3"} {
		d, err := version.Resolve(raw)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", raw, err)
		}

		if d.Version().String() != raw {
			t.Errorf("Resolve(%q).Version() = %s", raw, d.Version())
		}
	}
}

func TestResolveUnknownVersion(t *testing.T) {
	t.Parallel()

	_, err := version.Resolve("2.0")
	if err == nil {
		t.Fatal("expected an error for an unregistered version")
	}
}

func TestFeatureGating(t *testing.T) {
	t.Parallel()

	d10, _ := version.Resolve("1.0")
	if d10.Supports(version.FeatureTaskHandle) {
		t.Error("1.0 must not support task.*")
	}

	d13, _ := version.Resolve("1.3")
	if !d13.Supports(version.FeatureEnum) || !d13.Supports(version.FeatureElseIf) {
		t.Error("1.3 must support enum and else-if")
	}

	if d13.Supports(version.FeaturePlaceholderOptions) {
		t.Error("placeholder options should be flagged removed by 1.2+, not supported")
	}
}

func TestVersionAtLeast(t *testing.T) {
	t.Parallel()

	if !version.V1_2.AtLeast(version.V1_0) {
		t.Error("1.2 should be >= 1.0")
	}

	if version.V1_0.AtLeast(version.V1_3) {
		t.Error("1.0 should not be >= 1.3")
	}
}
