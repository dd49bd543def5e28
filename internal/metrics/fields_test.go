package metrics

import "testing"

func TestMetricFieldKeysAreStable(t *testing.T) {
	for _, k := range []string{AttrMethod, AttrPath, AttrStatus, AttrSource, AttrClass, AttrFallback, AttrOrigin, AttrKind} {
		if k == "" {
			t.Fatalf("expected metric attribute keys to be non-empty")
		}
	}
}
