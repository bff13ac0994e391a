package refcode

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	g, err := NewGenerator("test-salt")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := g.Generate(42)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !strings.HasPrefix(code, "BZ-") {
			t.Fatalf("code %q missing BZ- prefix", code)
		}
		if len(code) < len("BZ-")+8 {
			t.Fatalf("code %q shorter than minimum length", code)
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q for the same owner", code)
		}
		seen[code] = struct{}{}
	}
}

func TestGeneratorsWithDifferentSaltsDiffer(t *testing.T) {
	a, err := NewGenerator("salt-a")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	b, err := NewGenerator("salt-b")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	// Same inputs must not be recognizable across salts; a direct equality
	// check is the strongest statement possible with a random nonce in play,
	// so compare the deterministic encoder output instead.
	codeA, err := a.h.EncodeInt64([]int64{7, 7})
	if err != nil {
		t.Fatalf("EncodeInt64: %v", err)
	}
	codeB, err := b.h.EncodeInt64([]int64{7, 7})
	if err != nil {
		t.Fatalf("EncodeInt64: %v", err)
	}
	if codeA == codeB {
		t.Errorf("identical codes %q across different salts", codeA)
	}
}
