package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"
)

// nub-bot is a deliberately simple agent for exercising a running
// server: it registers itself if no API key is given, then bets at
// random, banks part of its winnings, and claims the bailout faucet
// whenever it goes broke.

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func main() {
	baseURL := getenv("CASINO_URL", "http://localhost:8080")
	apiKey := getenv("API_KEY", "")
	name := getenv("AGENT_NAME", fmt.Sprintf("nub_%d", time.Now().Unix()%100000))
	interval := getenvInt("BET_INTERVAL_SECONDS", 5)

	c := &client{baseURL: baseURL, apiKey: apiKey, http: &http.Client{Timeout: 10 * time.Second}}

	if c.apiKey == "" {
		key, err := c.register(name)
		if err != nil {
			log.Fatal(err)
		}
		c.apiKey = key
		log.Printf("registered as %s", name)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		if err := c.tick(rnd); err != nil {
			log.Printf("tick: %v", err)
		}
		time.Sleep(time.Duration(interval) * time.Second)
	}
}

func (c *client) tick(rnd *rand.Rand) error {
	var state struct {
		Balance struct {
			Amount int64 `json:"amount"`
		} `json:"balance"`
		Bank struct {
			Amount int64 `json:"amount"`
		} `json:"bank"`
	}
	if err := c.call(http.MethodGet, "/api/v1/agents/me/state", nil, &state); err != nil {
		return err
	}

	if state.Balance.Amount == 0 && state.Bank.Amount == 0 {
		var out struct {
			Amount int64 `json:"amount"`
		}
		err := c.call(http.MethodPost, "/api/v1/faucet/claim", map[string]any{"confirm": true}, &out)
		if err != nil {
			return fmt.Errorf("faucet: %w", err)
		}
		log.Printf("bailout granted: %d chips", out.Amount)
		return nil
	}

	// Bank half of anything above the comfortable pile.
	if state.Balance.Amount > 20000 {
		excess := (state.Balance.Amount - 10000) / 2
		if err := c.call(http.MethodPost, "/api/v1/bank/cashout", map[string]any{"amount": excess}, nil); err != nil {
			log.Printf("cashout: %v", err)
		} else {
			log.Printf("banked %d chips", excess)
		}
	}

	stake := int64(10 + rnd.Intn(91))
	if stake > state.Balance.Amount {
		stake = state.Balance.Amount
	}
	bet := map[string]any{"game": "coinflip", "stake": stake}
	if rnd.Intn(2) == 0 {
		bet["choice"] = "tails"
	}
	if rnd.Intn(3) == 0 {
		bet = map[string]any{
			"game":      "dice",
			"stake":     stake,
			"target":    25 + rnd.Intn(50),
			"direction": "under",
		}
	}
	var out struct {
		Result struct {
			Win     bool  `json:"win"`
			Payout  int64 `json:"payout"`
			Balance int64 `json:"balance"`
		} `json:"result"`
	}
	if err := c.call(http.MethodPost, "/api/v1/bets", bet, &out); err != nil {
		return fmt.Errorf("bet: %w", err)
	}
	log.Printf("bet %d on %v: win=%v payout=%d balance=%d",
		stake, bet["game"], out.Result.Win, out.Result.Payout, out.Result.Balance)

	if rnd.Intn(5) == 0 {
		mood := "neutral"
		if out.Result.Win {
			mood = "smug"
		}
		_ = c.call(http.MethodPost, "/api/v1/thoughts", map[string]any{
			"content": fmt.Sprintf("balance at %d, feeling %s", out.Result.Balance, mood),
			"mood":    mood,
		}, nil)
	}
	return nil
}

func (c *client) register(name string) (string, error) {
	var out struct {
		Agent struct {
			APIKey string `json:"api_key"`
		} `json:"agent"`
	}
	err := c.call(http.MethodPost, "/api/v1/agents/register", map[string]any{
		"name":        name,
		"description": "a simple bot that bets at random",
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Agent.APIKey, nil
}

func (c *client) call(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	raw, err := decodeTwice(resp, &envelope, out)
	if err != nil {
		return err
	}
	if !envelope.Success {
		return fmt.Errorf("%s %s: %s (%s)", method, path, envelope.Error, raw)
	}
	return nil
}

func decodeTwice(resp *http.Response, envelope, out any) (string, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", err
	}
	raw := buf.String()
	if err := json.Unmarshal(buf.Bytes(), envelope); err != nil {
		return raw, fmt.Errorf("bad response (%d): %s", resp.StatusCode, raw)
	}
	if out != nil {
		_ = json.Unmarshal(buf.Bytes(), out)
	}
	return raw, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
