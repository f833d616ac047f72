package fair

import "testing"

func TestDeriveValueDeterministic(t *testing.T) {
	a := DeriveValue("seed", "agent:alice", 1, "coinflip")
	b := DeriveValue("seed", "agent:alice", 1, "coinflip")
	if a != b {
		t.Fatalf("same inputs gave %v and %v", a, b)
	}
}

func TestDeriveValueRange(t *testing.T) {
	for nonce := int64(1); nonce <= 500; nonce++ {
		v := DeriveValue("seed", "agent:alice", nonce, "dice")
		if v < 0 || v >= 1 {
			t.Fatalf("nonce %d: value %v out of [0,1)", nonce, v)
		}
	}
}

func TestDeriveValueInputsMatter(t *testing.T) {
	base := DeriveValue("seed", "client", 1, "coinflip")
	if DeriveValue("seed2", "client", 1, "coinflip") == base {
		t.Fatal("seed change did not change value")
	}
	if DeriveValue("seed", "client2", 1, "coinflip") == base {
		t.Fatal("client seed change did not change value")
	}
	if DeriveValue("seed", "client", 2, "coinflip") == base {
		t.Fatal("nonce change did not change value")
	}
	if DeriveValue("seed", "client", 1, "dice") == base {
		t.Fatal("game change did not change value")
	}
}

func TestSeedCommitmentRoundTrip(t *testing.T) {
	seed := NewSeed()
	if len(seed) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(seed))
	}
	hash := SeedHash(seed)
	if !VerifyReveal(seed, hash) {
		t.Fatal("revealed seed did not verify against its own commitment")
	}
	if VerifyReveal(NewSeed(), hash) {
		t.Fatal("different seed verified against commitment")
	}
}

func TestNewSeedUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s := NewSeed()
		if seen[s] {
			t.Fatal("duplicate seed generated")
		}
		seen[s] = true
	}
}
