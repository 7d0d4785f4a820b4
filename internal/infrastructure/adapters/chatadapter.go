package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aegis/internal/domain/sync"
	"aegis/internal/shared/groupname"
	"aegis/internal/shared/logger"
)

// ChatAdapter drives a chat service whose role names may not contain
// whitespace. Roles are the remote representation of groups.
type ChatAdapter struct {
	name   string
	client *restClient
	logger logger.Interface
}

func NewChatAdapter(name, baseURL, token string, timeout time.Duration, log logger.Interface) *ChatAdapter {
	return &ChatAdapter{
		name:   name,
		client: newRESTClient(baseURL, token, timeout),
		logger: log.Named("adapter." + name),
	}
}

var _ sync.Adapter = (*ChatAdapter)(nil)

func (a *ChatAdapter) Name() string { return a.name }

func (a *ChatAdapter) CreateAccount(ctx context.Context, profile sync.AccountProfile) (string, *sync.Credentials, error) {
	password, err := generatePassword()
	if err != nil {
		return "", nil, sync.Unrecoverable(err)
	}

	var resp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	body := map[string]string{
		"username": profile.Username,
		"email":    profile.Email,
		"password": password,
	}
	if err := a.client.do(ctx, http.MethodPost, "/api/users", body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to create chat account: %w", err)
	}

	a.logger.Infow("chat account created", "remote_id", resp.ID, "username", resp.Username)
	return resp.ID, &sync.Credentials{Username: resp.Username, Password: password}, nil
}

func (a *ChatAdapter) DisableAccount(ctx context.Context, remoteID string) error {
	path := fmt.Sprintf("/api/users/%s/deactivate", url.PathEscape(remoteID))
	if err := a.client.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("failed to disable chat account: %w", err)
	}
	return nil
}

func (a *ChatAdapter) FetchGroups(ctx context.Context, remoteID string) ([]string, error) {
	var resp struct {
		Roles []string `json:"roles"`
	}
	path := fmt.Sprintf("/api/users/%s/roles", url.PathEscape(remoteID))
	if err := a.client.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch chat roles: %w", err)
	}
	return resp.Roles, nil
}

func (a *ChatAdapter) EnsureGroup(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	err := a.client.do(ctx, http.MethodPost, "/api/roles", body, nil)
	if err != nil && sync.KindOf(err) == sync.KindValidation {
		// Conflict: the role already exists.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to ensure chat role: %w", err)
	}
	return nil
}

func (a *ChatAdapter) AddToGroup(ctx context.Context, remoteID, name string) error {
	path := fmt.Sprintf("/api/users/%s/roles/%s", url.PathEscape(remoteID), url.PathEscape(name))
	if err := a.client.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("failed to add chat role: %w", err)
	}
	return nil
}

func (a *ChatAdapter) RemoveFromGroup(ctx context.Context, remoteID, name string) error {
	path := fmt.Sprintf("/api/users/%s/roles/%s", url.PathEscape(remoteID), url.PathEscape(name))
	if err := a.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to remove chat role: %w", err)
	}
	return nil
}

// SanitizeGroupName maps group names into the chat service's role charset:
// folded, clamped, whitespace replaced by hyphens, lowercased.
func (a *ChatAdapter) SanitizeGroupName(name string) string {
	return strings.ToLower(groupname.ReplaceSpaces(groupname.Sanitize(name), "-"))
}
