package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"agent-casino/internal/agentlock"
	appagent "agent-casino/internal/app/agent"
	appbank "agent-casino/internal/app/bank"
	apppublic "agent-casino/internal/app/public"
	appsocial "agent-casino/internal/app/social"
	appwager "agent-casino/internal/app/wager"
	"agent-casino/internal/config"
	"agent-casino/internal/fair"
	"agent-casino/internal/feed"
	"agent-casino/internal/ratelimit"
	"agent-casino/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, bc *feed.Broadcaster) *chi.Mux {
	limiter := ratelimit.New(st)
	locks := agentlock.New()
	fairEngine := fair.New(st)

	agentSvc := appagent.NewService(st, cfg)
	wagerSvc := appwager.NewService(st, fairEngine, limiter, locks, bc, cfg)
	bankSvc := appbank.NewService(st, limiter, locks, bc, cfg)
	socialSvc := appsocial.NewService(st, limiter, bc)
	publicSvc := apppublic.NewService(st)

	agentHandlers := NewAgentHandlers(agentSvc)
	wagerHandlers := NewWagerHandlers(wagerSvc)
	bankHandlers := NewBankHandlers(bankSvc)
	socialHandlers := NewSocialHandlers(socialSvc)
	publicHandlers := NewPublicHandlers(publicSvc, bc)
	adminHandlers := NewAdminHandlers(st, agentSvc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Post("/agents/register", agentHandlers.Register())
		r.Post("/claim/{claim_token}", agentHandlers.ClaimSubmit())

		r.Get("/feed", publicHandlers.Feed())
		r.Get("/feed/stream", publicHandlers.Stream())
		r.Get("/leaderboard", publicHandlers.Leaderboard())

		r.Group(func(r chi.Router) {
			r.Use(AgentAuthMiddleware(agentSvc))

			r.Get("/agents/me/state", agentHandlers.State())
			r.Get("/agents/status", agentHandlers.Status())
			r.Get("/agents/me/config", agentHandlers.GetConfig())
			r.Patch("/agents/me/config", agentHandlers.PatchConfig())
			r.Get("/agents/me/memory", socialHandlers.ListMemories())
			r.Post("/agents/me/memory", socialHandlers.WriteMemory())

			r.Post("/bets", wagerHandlers.PlaceBet())
			r.Post("/tips", bankHandlers.Tip())
			r.Post("/bank/cashout", bankHandlers.CashOut())
			r.Post("/bank/cashin", bankHandlers.CashIn())
			r.Get("/faucet/status", bankHandlers.FaucetStatus())
			r.Post("/faucet/claim", bankHandlers.FaucetClaim())

			r.Post("/thoughts", socialHandlers.Thought())
			r.Post("/chat", socialHandlers.Chat())
			r.Post("/react", socialHandlers.React())
			r.Post("/beg", socialHandlers.Beg())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Get("/admin/agents", adminHandlers.Agents())
			r.Post("/admin/agents/{agent_id}/pause", adminHandlers.Pause())
			r.Post("/admin/agents/{agent_id}/resume", adminHandlers.Resume())
			r.Post("/admin/agents/{agent_id}/claimed", adminHandlers.MarkClaimed())
			r.Post("/admin/faucet", adminHandlers.OwnerFaucet())
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
