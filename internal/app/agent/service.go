// Package agent covers the account lifecycle: registration with its
// one-time API key, the authenticated self views, risk config and the
// human ownership claim flow.
package agent

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"agent-casino/internal/config"
	"agent-casino/internal/fair"
	"agent-casino/internal/store"
)

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_\-]{2,32}$`)

type Service struct {
	store *store.Store
	cfg   config.ServerConfig
}

func NewService(st *store.Store, cfg config.ServerConfig) *Service {
	return &Service{store: st, cfg: cfg}
}

// newSecret mints a bearer credential: 32 random bytes, base64url,
// behind a recognizable prefix so leaked keys are greppable.
func newSecret(prefix string) string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return prefix + "_" + base64.RawURLEncoding.EncodeToString(b[:])
}

func newVerificationCode(prefix string) string {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(b[:]))
}

// Register creates the agent with its starting chips, default risk
// config and fairness commitment. The plaintext API key appears only in
// this response; the database keeps the hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResponse, error) {
	if !nameRe.MatchString(in.Name) || len(in.Description) > 240 {
		return nil, ErrInvalidBody
	}
	name := strings.ToLower(in.Name)

	apiKey := newSecret("casino")
	claimToken := newSecret("claim")
	verificationCode := newVerificationCode("casino")

	id := store.NewID()
	seed := fair.NewSeed()
	seedHash := fair.SeedHash(seed)

	err := s.store.CreateAgent(ctx, store.CreateAgentParams{
		ID:             id,
		Name:           name,
		Description:    in.Description,
		APIKeyHash:     store.HashToken(apiKey),
		ClaimTokenHash: store.HashToken(claimToken),
		InitialBalance: s.cfg.InitialBalance,
		ServerSeed:     seed,
		ServerSeedHash: seedHash,
		Registered: store.NewEvent(id, nil, store.EventAgentRegistered, store.AgentRegisteredPayload{
			VerificationCode: verificationCode,
			FairCommit:       store.FairCommit{ServerSeedHash: seedHash, Nonce: 0},
		}),
	})
	if err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			return nil, ErrNameTaken
		}
		return nil, err
	}

	resp := &RegisterResponse{
		Important: "SAVE YOUR API KEY. It cannot be retrieved later.",
		XClaimTemplate: fmt.Sprintf("I'm claiming my agent %q on AgentCasino\n\nVerification: %s",
			name, verificationCode),
	}
	resp.Agent.ID = id
	resp.Agent.Name = name
	resp.Agent.APIKey = apiKey
	resp.Agent.ClaimURL = s.cfg.PublicBaseURL + "/claim/" + claimToken
	resp.Agent.VerificationCode = verificationCode
	return resp, nil
}

// Authenticate resolves a bearer API key to its agent.
func (s *Service) Authenticate(ctx context.Context, apiKey string) (*store.Agent, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	a, err := s.store.GetAgentByAPIKeyHash(ctx, store.HashToken(apiKey))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	return a, nil
}

// State is the full self view: both balances, net worth, config and
// the current fairness commitment.
func (s *Service) State(ctx context.Context, a *store.Agent) (*StateResponse, error) {
	bal, err := s.store.GetBalance(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	bank, err := s.store.GetBankBalance(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.GetAgentConfig(ctx, a.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	fs, err := s.store.GetFairState(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &StateResponse{
		Agent: AgentSummary{
			ID:          a.ID,
			Name:        a.Name,
			ClaimStatus: a.ClaimStatus,
			IsPaused:    a.IsPaused,
		},
		Balance:      BalanceView{Amount: bal.Amount, UpdatedAt: bal.UpdatedAt},
		Bank:         BalanceView{Amount: bank.Amount, UpdatedAt: bank.UpdatedAt},
		NetWorth:     bal.Amount + bank.Amount,
		Config:       cfg,
		ProvablyFair: store.FairCommit{ServerSeedHash: fs.ServerSeedHash, Nonce: fs.Nonce},
	}, nil
}

func (s *Service) Status(a *store.Agent) *StatusResponse {
	resp := &StatusResponse{Status: a.ClaimStatus}
	resp.Agent.ID = a.ID
	resp.Agent.Name = a.Name
	resp.Agent.XHandle = a.XHandle
	resp.Agent.ClaimedAt = a.ClaimedAt
	return resp
}

func (s *Service) GetConfig(ctx context.Context, a *store.Agent) (*ConfigResponse, error) {
	cfg, err := s.store.GetAgentConfig(ctx, a.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	bal, err := s.store.GetBalance(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{Config: cfg, Balance: bal.Amount}, nil
}

var riskProfiles = map[string]bool{"conservative": true, "balanced": true, "degen": true}

// PatchConfig merges the patch into the stored config. The anchor
// balance resets to the current balance when asked, or when no anchor
// exists yet; stop_loss and take_profit are measured in chips relative
// to the anchor.
func (s *Service) PatchConfig(ctx context.Context, a *store.Agent, p ConfigPatch) (*ConfigResponse, error) {
	if p.RiskProfile != nil && !riskProfiles[*p.RiskProfile] {
		return nil, ErrInvalidBody
	}
	if p.MaxBet != nil && (*p.MaxBet < 1 || *p.MaxBet > 5000) {
		return nil, ErrInvalidBody
	}
	for _, v := range []*int64{p.StopLoss, p.TakeProfit} {
		if v != nil && (*v < 1 || *v > 100000) {
			return nil, ErrInvalidBody
		}
	}

	cur, err := s.store.GetAgentConfig(ctx, a.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		cur = &store.AgentConfig{AgentID: a.ID, RiskProfile: "degen", MaxBet: 250}
	}
	bal, err := s.store.GetBalance(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	next := *cur
	if p.RiskProfile != nil {
		next.RiskProfile = *p.RiskProfile
	}
	if p.MaxBet != nil {
		next.MaxBet = *p.MaxBet
	}
	if p.StopLossSet {
		next.StopLoss = p.StopLoss
	}
	if p.TakeProfitSet {
		next.TakeProfit = p.TakeProfit
	}
	if p.ResetAnchor || next.AnchorBalance == nil {
		anchor := bal.Amount
		next.AnchorBalance = &anchor
	}
	if err := s.store.UpsertAgentConfig(ctx, next); err != nil {
		return nil, err
	}
	cfg, err := s.store.GetAgentConfig(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{Config: cfg, Balance: bal.Amount}, nil
}

// SubmitClaim records the owner's X handle and claim tweet, moving the
// agent to pending_review. Verification happens out of band.
func (s *Service) SubmitClaim(ctx context.Context, claimToken string, in ClaimInput) (*store.Agent, error) {
	if in.XHandle == "" || in.TweetURL == "" {
		return nil, ErrInvalidBody
	}
	a, err := s.store.GetAgentByClaimTokenHash(ctx, store.HashToken(claimToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	if err := s.store.SubmitClaim(ctx, a.ID, in.XHandle, in.TweetURL); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return s.store.GetAgentByID(ctx, a.ID)
}

// Pause stops an agent from acting; the flag and its feed event land
// atomically. Admin only.
func (s *Service) Pause(ctx context.Context, agentID, reason string) error {
	ev := store.NewEvent(agentID, nil, store.EventAgentPaused, store.PauseStatePayload{Reason: reason})
	return s.store.SetAgentPaused(ctx, agentID, true, reason, ev)
}

func (s *Service) Resume(ctx context.Context, agentID string) error {
	ev := store.NewEvent(agentID, nil, store.EventAgentResumed, store.PauseStatePayload{})
	return s.store.SetAgentPaused(ctx, agentID, false, "", ev)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]store.Agent, error) {
	return s.store.ListAgents(ctx, limit, offset)
}

func (s *Service) MarkClaimed(ctx context.Context, agentID string) error {
	return s.store.MarkAgentClaimed(ctx, agentID)
}
