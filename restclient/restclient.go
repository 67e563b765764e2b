// Package restclient implements the single REST call a gateway session
// needs before dialing: GET /gateway/bot. Grounded on disgo.go's
// EndpointGetGatewayBot, GetGatewayBotResponse, and SendRequest's use of
// fasthttp.Client.
package restclient

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const (
	endpointBaseURL      = "https://discord.com/api/v10"
	endpointGatewayBot   = endpointBaseURL + "/gateway/bot"
	headerAuthorization  = "Authorization"
)

// SessionStartLimit mirrors the Gateway's session_start_limit object.
type SessionStartLimit struct {
	Total          int `json:"total"`
	Remaining      int `json:"remaining"`
	ResetAfter     int `json:"reset_after"`
	MaxConcurrency int `json:"max_concurrency"`
}

// GatewayBot is the decoded response of GET /gateway/bot.
type GatewayBot struct {
	URL               string            `json:"url"`
	Shards            int               `json:"shards"`
	SessionStartLimit SessionStartLimit `json:"session_start_limit"`
}

// Client issues the gateway/bot lookup over a shared fasthttp.Client, the
// way disgo.Config.Request.Client is shared across every REST call.
type Client struct {
	HTTP  *fasthttp.Client
	Token string
}

// NewClient constructs a Client with a fresh fasthttp.Client, matching
// disgo's DefaultRequest().
func NewClient(token string) *Client {
	return &Client{HTTP: new(fasthttp.Client), Token: token}
}

// GetGatewayBot fetches the recommended WebSocket URL and shard count for
// the authenticated bot.
func (c *Client) GetGatewayBot() (*GatewayBot, error) {
	request := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(request)

	request.Header.SetMethod(fasthttp.MethodGet)
	request.Header.Set(headerAuthorization, "Bot "+c.Token)
	request.SetRequestURI(endpointGatewayBot)

	response := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(response)

	if err := c.HTTP.Do(request, response); err != nil {
		return nil, fmt.Errorf("restclient: GET /gateway/bot: %w", err)
	}

	if status := response.StatusCode(); status != fasthttp.StatusOK {
		return nil, fmt.Errorf("restclient: GET /gateway/bot: unexpected status %d", status)
	}

	var bot GatewayBot
	if err := json.Unmarshal(response.Body(), &bot); err != nil {
		return nil, fmt.Errorf("restclient: decoding /gateway/bot response: %w", err)
	}

	return &bot, nil
}
