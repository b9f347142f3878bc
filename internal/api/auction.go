package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rickgao/mock-auction/internal/auction"
	"github.com/rickgao/mock-auction/internal/model"
	"github.com/rickgao/mock-auction/internal/server"
)

// HealthResponse from GET /health
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]json.RawMessage `json:"components"`
}

// Health fetches server health. An unhealthy server answers 503; the
// decoded body is returned along with the error.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
			var resp HealthResponse
			if json.Unmarshal(apiErr.Body, &resp) == nil {
				return &resp, err
			}
		}
		return nil, fmt.Errorf("get health: %w", err)
	}

	var resp HealthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

// Version fetches the server build info.
func (c *Client) Version(ctx context.Context) (*server.VersionResponse, error) {
	var resp server.VersionResponse
	if err := c.get(ctx, "/version", nil, &resp); err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return &resp, nil
}

// Teams lists teams in registration order.
func (c *Client) Teams(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := c.get(ctx, "/api/teams", nil, &teams); err != nil {
		return nil, fmt.Errorf("get teams: %w", err)
	}
	return teams, nil
}

// AddTeam registers a team with an initial budget in lakhs.
func (c *Client) AddTeam(ctx context.Context, name string, budget int) (*model.Team, error) {
	var team model.Team
	req := server.AddTeamRequest{Name: name, Budget: budget}
	if err := c.send(ctx, http.MethodPost, "/api/teams", req, &team); err != nil {
		return nil, fmt.Errorf("add team %s: %w", name, err)
	}
	return &team, nil
}

// Squad fetches one team's squad summary.
func (c *Client) Squad(ctx context.Context, team string) (*server.SquadResponse, error) {
	var resp server.SquadResponse
	if err := c.get(ctx, "/api/teams/"+url.PathEscape(team)+"/squad", nil, &resp); err != nil {
		return nil, fmt.Errorf("get squad %s: %w", team, err)
	}
	return &resp, nil
}

// Players lists players, latest first. status is "", "sold" or "unsold".
func (c *Client) Players(ctx context.Context, status string) ([]model.Player, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	var players []model.Player
	if err := c.get(ctx, "/api/players", query, &players); err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	return players, nil
}

// Player fetches a player by name.
func (c *Client) Player(ctx context.Context, name string) (*model.Player, error) {
	var p model.Player
	if err := c.get(ctx, "/api/players/"+url.PathEscape(name), nil, &p); err != nil {
		return nil, fmt.Errorf("get player %s: %w", name, err)
	}
	return &p, nil
}

// AddPlayer records a sale or an unsold player.
func (c *Client) AddPlayer(ctx context.Context, in auction.PlayerInput) (*auction.Receipt, error) {
	var receipt auction.Receipt
	if err := c.send(ctx, http.MethodPost, "/api/players", in, &receipt); err != nil {
		return nil, fmt.Errorf("add player %s: %w", in.Name, err)
	}
	return &receipt, nil
}

// ModifyPlayer rewrites the player with the given name.
func (c *Client) ModifyPlayer(ctx context.Context, in auction.PlayerInput) (*auction.Receipt, error) {
	var receipt auction.Receipt
	if err := c.send(ctx, http.MethodPut, "/api/players", in, &receipt); err != nil {
		return nil, fmt.Errorf("modify player %s: %w", in.Name, err)
	}
	return &receipt, nil
}

// DeletePlayer removes a player and refunds the buying team.
func (c *Client) DeletePlayer(ctx context.Context, name string) (*auction.Receipt, error) {
	var receipt auction.Receipt
	if err := c.send(ctx, http.MethodDelete, "/api/players/"+url.PathEscape(name), nil, &receipt); err != nil {
		return nil, fmt.Errorf("delete player %s: %w", name, err)
	}
	return &receipt, nil
}

// Standings fetches the team rankings.
func (c *Client) Standings(ctx context.Context) ([]auction.Standing, error) {
	var rows []auction.Standing
	if err := c.get(ctx, "/api/standings", nil, &rows); err != nil {
		return nil, fmt.Errorf("get standings: %w", err)
	}
	return rows, nil
}

// Ticker fetches the sold-player ticker.
func (c *Client) Ticker(ctx context.Context) ([]auction.TickerItem, error) {
	var items []auction.TickerItem
	if err := c.get(ctx, "/api/ticker", nil, &items); err != nil {
		return nil, fmt.Errorf("get ticker: %w", err)
	}
	return items, nil
}

// DeleteAllData wipes every team and player.
func (c *Client) DeleteAllData(ctx context.Context) error {
	if err := c.send(ctx, http.MethodDelete, "/api/data", nil, nil); err != nil {
		return fmt.Errorf("delete all data: %w", err)
	}
	return nil
}

// ExportCSV downloads teams.csv or players.csv.
func (c *Client) ExportCSV(ctx context.Context, file string) ([]byte, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, "/export/"+url.PathEscape(file), nil)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", file, err)
	}
	return body, nil
}
