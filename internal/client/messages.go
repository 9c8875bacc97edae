package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/elusion/briq-go/internal/constants"
	briqhttp "github.com/elusion/briq-go/internal/http"
	"github.com/elusion/briq-go/internal/validation"
	"github.com/elusion/briq-go/pkg/briq"
)

// MessagesClient implements briq.MessagesClient.
type MessagesClient struct {
	httpClient *briqhttp.Client
}

// NewMessagesClient creates a new messages client.
func NewMessagesClient(httpClient *briqhttp.Client) *MessagesClient {
	return &MessagesClient{
		httpClient: httpClient,
	}
}

// SendInstant implements briq.MessagesClient.SendInstant.
func (c *MessagesClient) SendInstant(ctx context.Context, input *briq.InstantMessage) (*briq.MessageResponse, error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	if input == nil {
		return nil, &briq.InvalidArgumentError{Argument: "input", Message: "instant message is required"}
	}

	return c.send(ctx, "messages.send_instant", constants.MessagesInstantPath, validation.InstantMessage, input)
}

// SendCampaign implements briq.MessagesClient.SendCampaign.
func (c *MessagesClient) SendCampaign(ctx context.Context, input *briq.CampaignMessage) (*briq.MessageResponse, error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	if input == nil {
		return nil, &briq.InvalidArgumentError{Argument: "input", Message: "campaign message is required"}
	}

	return c.send(ctx, "messages.send_campaign", constants.MessagesCampaignPath, validation.CampaignMessage, input)
}

func (c *MessagesClient) send(ctx context.Context, operation, path string, schema validation.Schema, input interface{}) (*briq.MessageResponse, error) {
	err := validation.Validate(schema, input)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodPost,
		Path:      path,
		Body:      input,
		Operation: operation,
	})
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	result, err := briqhttp.Decode[briq.MessageResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing message response: %w", err)
	}

	return result, nil
}

// GetLogs implements briq.MessagesClient.GetLogs.
func (c *MessagesClient) GetLogs(ctx context.Context, params *briq.MessageLogParams) (*briq.PaginatedResponse[briq.MessageLog], error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("getting message logs: %w", err)
	}

	if params == nil {
		params = &briq.MessageLogParams{}
	}

	resp, err := c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodGet,
		Path:      constants.MessagesLogsPath,
		Query:     queryOf(params),
		Operation: "messages.logs",
	})
	if err != nil {
		return nil, fmt.Errorf("getting message logs: %w", err)
	}

	logs, err := briqhttp.Decode[briq.PaginatedResponse[briq.MessageLog]](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing message logs response: %w", err)
	}

	return logs, nil
}

// GetHistory implements briq.MessagesClient.GetHistory.
func (c *MessagesClient) GetHistory(ctx context.Context, params *briq.MessageHistoryParams) (*briq.PaginatedResponse[briq.MessageHistory], error) {
	err := requireOpen(c.httpClient)
	if err != nil {
		return nil, fmt.Errorf("getting message history: %w", err)
	}

	if params == nil {
		params = &briq.MessageHistoryParams{}
	}

	resp, err := c.httpClient.Do(ctx, &briqhttp.Request{
		Method:    http.MethodGet,
		Path:      constants.MessagesHistoryPath,
		Query:     queryOf(params),
		Operation: "messages.history",
	})
	if err != nil {
		return nil, fmt.Errorf("getting message history: %w", err)
	}

	history, err := briqhttp.Decode[briq.PaginatedResponse[briq.MessageHistory]](resp)
	if err != nil {
		return nil, fmt.Errorf("parsing message history response: %w", err)
	}

	return history, nil
}
