package marketplace

import (
	"context"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// UserService defines the user service client operations to enable mocking
//
//go:generate mockgen -source=user.go -destination=../../mocks/user_service.go -package=mocks -mock_names=UserService=MockUserService
type UserService interface {
	// GetUser fetches a user by address, domain.ErrNotFound when absent
	GetUser(ctx context.Context, address string) (*domain.User, error)
}

type userClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewUserService creates a new user service client
func NewUserService(httpClient adapter.HTTPClient, baseURL string) UserService {
	return &userClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *userClient) GetUser(ctx context.Context, address string) (*domain.User, error) {
	var resp response[domain.User]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "users", address), &resp); err != nil {
		return nil, wrapError("get user", err)
	}
	return &resp.Result, nil
}
