package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ai2048/communication"
	"ai2048/game"
)

// Client talks to a board server over HTTP.
type Client struct {
	serverURL string
	http      *http.Client
}

func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		http:      http.DefaultClient,
	}
}

func (c *Client) Board(ctx context.Context) (communication.BoardState, error) {
	var state communication.BoardState
	err := c.do(ctx, http.MethodGet, "/board", nil, &state)
	return state, err
}

func (c *Client) Move(ctx context.Context, d game.Direction) (communication.MoveResponse, error) {
	var resp communication.MoveResponse
	err := c.do(ctx, http.MethodPost, "/move", communication.MoveRequest{Direction: d.String()}, &resp)
	return resp, err
}

// Step asks the server to play one greedy move, with its default weights
// when weights is nil.
func (c *Client) Step(ctx context.Context, weights *game.Weights) (communication.MoveResponse, error) {
	var resp communication.MoveResponse
	err := c.do(ctx, http.MethodPost, "/step", communication.StepRequest{Weights: weights}, &resp)
	return resp, err
}

func (c *Client) Reset(ctx context.Context) (communication.BoardState, error) {
	var state communication.BoardState
	err := c.do(ctx, http.MethodPost, "/reset", nil, &state)
	return state, err
}

func (c *Client) Population(ctx context.Context) (communication.PopulationState, error) {
	var state communication.PopulationState
	err := c.do(ctx, http.MethodGet, "/population", nil, &state)
	return state, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e communication.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, e.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
