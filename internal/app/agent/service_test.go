package agent

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"agent-casino/internal/config"
	"agent-casino/internal/store"
	"agent-casino/internal/testutil"
)

func newTestService(st *store.Store) *Service {
	return NewService(st, config.ServerConfig{
		InitialBalance: 10000,
		PublicBaseURL:  "http://localhost:8080",
	})
}

func TestRegisterAndAuthenticate(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st)

	resp, err := svc.Register(ctx, RegisterInput{Name: "Gambler_One", Description: "test agent"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Agent.Name != "gambler_one" {
		t.Fatalf("name must be lowercased, got %q", resp.Agent.Name)
	}
	if !strings.HasPrefix(resp.Agent.APIKey, "casino_") {
		t.Fatalf("api key missing prefix: %q", resp.Agent.APIKey)
	}
	if !strings.Contains(resp.Agent.ClaimURL, "/claim/claim_") {
		t.Fatalf("claim url malformed: %q", resp.Agent.ClaimURL)
	}
	if !strings.HasPrefix(resp.Agent.VerificationCode, "casino-") {
		t.Fatalf("verification code malformed: %q", resp.Agent.VerificationCode)
	}

	a, err := svc.Authenticate(ctx, resp.Agent.APIKey)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if a.ID != resp.Agent.ID {
		t.Fatalf("authenticated wrong agent: %s vs %s", a.ID, resp.Agent.ID)
	}

	if _, err := svc.Authenticate(ctx, "casino_bogus"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestRegisterRejectsBadNamesAndDuplicates(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st)

	for _, name := range []string{"", "x", "has spaces", "way!bad", strings.Repeat("a", 33)} {
		if _, err := svc.Register(ctx, RegisterInput{Name: name}); !errors.Is(err, ErrInvalidBody) {
			t.Errorf("name %q: expected ErrInvalidBody, got %v", name, err)
		}
	}

	if _, err := svc.Register(ctx, RegisterInput{Name: "dupe"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Case-insensitive: names are stored lowercased.
	if _, err := svc.Register(ctx, RegisterInput{Name: "DUPE"}); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestStateIncludesCommitmentAndNetWorth(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st)

	resp, err := svc.Register(ctx, RegisterInput{Name: "stately"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	a, _ := svc.Authenticate(ctx, resp.Agent.APIKey)

	state, err := svc.State(ctx, a)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Balance.Amount != 10000 || state.Bank.Amount != 0 || state.NetWorth != 10000 {
		t.Fatalf("unexpected balances: %+v", state)
	}
	if state.ProvablyFair.ServerSeedHash == "" || state.ProvablyFair.Nonce != 0 {
		t.Fatalf("missing fairness commitment: %+v", state.ProvablyFair)
	}
	if state.Config == nil || state.Config.RiskProfile != "degen" {
		t.Fatalf("missing default config: %+v", state.Config)
	}
}

func TestPatchConfigMergeAndClear(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st)

	resp, err := svc.Register(ctx, RegisterInput{Name: "tuner"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	a, _ := svc.Authenticate(ctx, resp.Agent.APIKey)

	var patch ConfigPatch
	if err := json.Unmarshal([]byte(`{"risk_profile":"balanced","stop_loss":500}`), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	cfg, err := svc.PatchConfig(ctx, a, patch)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if cfg.Config.RiskProfile != "balanced" || cfg.Config.StopLoss == nil || *cfg.Config.StopLoss != 500 {
		t.Fatalf("patch not applied: %+v", cfg.Config)
	}
	if cfg.Config.MaxBet != 250 {
		t.Fatalf("untouched field changed: %+v", cfg.Config)
	}

	// Explicit null clears, absence preserves.
	patch = ConfigPatch{}
	if err := json.Unmarshal([]byte(`{"stop_loss":null,"max_bet":1000}`), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	cfg, err = svc.PatchConfig(ctx, a, patch)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if cfg.Config.StopLoss != nil {
		t.Fatalf("null should clear stop_loss: %+v", cfg.Config)
	}
	if cfg.Config.MaxBet != 1000 || cfg.Config.RiskProfile != "balanced" {
		t.Fatalf("merge broken: %+v", cfg.Config)
	}

	badProfile := "yolo"
	if _, err := svc.PatchConfig(ctx, a, ConfigPatch{RiskProfile: &badProfile}); !errors.Is(err, ErrInvalidBody) {
		t.Fatalf("expected ErrInvalidBody for bad profile, got %v", err)
	}
}

func TestSubmitClaimByToken(t *testing.T) {
	st, ctx, cleanup := testutil.OpenStore(t)
	defer cleanup()
	svc := newTestService(st)

	resp, err := svc.Register(ctx, RegisterInput{Name: "claimer"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token := strings.TrimPrefix(resp.Agent.ClaimURL, "http://localhost:8080/claim/")

	a, err := svc.SubmitClaim(ctx, token, ClaimInput{XHandle: "@claimer", TweetURL: "https://x.com/claimer/status/1"})
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}
	if a.ClaimStatus != "pending_review" {
		t.Fatalf("unexpected claim status: %q", a.ClaimStatus)
	}

	if _, err := svc.SubmitClaim(ctx, "claim_wrong", ClaimInput{XHandle: "@x", TweetURL: "u"}); !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("expected ErrClaimNotFound, got %v", err)
	}
}
