package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aegis/internal/domain/sync"
	"aegis/internal/shared/groupname"
	"aegis/internal/shared/logger"
)

// ForumAdapter drives a forum service. Forum usergroups accept spaces and
// mixed case, so only the default sanitization applies.
type ForumAdapter struct {
	name   string
	client *restClient
	logger logger.Interface
}

func NewForumAdapter(name, baseURL, token string, timeout time.Duration, log logger.Interface) *ForumAdapter {
	return &ForumAdapter{
		name:   name,
		client: newRESTClient(baseURL, token, timeout),
		logger: log.Named("adapter." + name),
	}
}

var _ sync.Adapter = (*ForumAdapter)(nil)

func (a *ForumAdapter) Name() string { return a.name }

func (a *ForumAdapter) CreateAccount(ctx context.Context, profile sync.AccountProfile) (string, *sync.Credentials, error) {
	password, err := generatePassword()
	if err != nil {
		return "", nil, sync.Unrecoverable(err)
	}

	var resp struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}
	body := map[string]string{
		"username": profile.Username,
		"email":    profile.Email,
		"password": password,
	}
	if err := a.client.do(ctx, http.MethodPost, "/api/v1/members", body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to create forum account: %w", err)
	}

	remoteID := fmt.Sprintf("%d", resp.UserID)
	a.logger.Infow("forum account created", "remote_id", remoteID, "username", resp.Username)
	return remoteID, &sync.Credentials{Username: resp.Username, Password: password}, nil
}

func (a *ForumAdapter) DisableAccount(ctx context.Context, remoteID string) error {
	path := fmt.Sprintf("/api/v1/members/%s/ban", url.PathEscape(remoteID))
	if err := a.client.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("failed to disable forum account: %w", err)
	}
	return nil
}

func (a *ForumAdapter) FetchGroups(ctx context.Context, remoteID string) ([]string, error) {
	var resp struct {
		Groups []struct {
			Name string `json:"name"`
		} `json:"groups"`
	}
	path := fmt.Sprintf("/api/v1/members/%s/groups", url.PathEscape(remoteID))
	if err := a.client.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch forum groups: %w", err)
	}

	names := make([]string, 0, len(resp.Groups))
	for _, g := range resp.Groups {
		names = append(names, g.Name)
	}
	return names, nil
}

func (a *ForumAdapter) EnsureGroup(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	err := a.client.do(ctx, http.MethodPost, "/api/v1/groups", body, nil)
	if err != nil && sync.KindOf(err) == sync.KindValidation {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to ensure forum group: %w", err)
	}
	return nil
}

func (a *ForumAdapter) AddToGroup(ctx context.Context, remoteID, name string) error {
	path := fmt.Sprintf("/api/v1/members/%s/groups", url.PathEscape(remoteID))
	if err := a.client.do(ctx, http.MethodPost, path, map[string]string{"name": name}, nil); err != nil {
		return fmt.Errorf("failed to add forum group: %w", err)
	}
	return nil
}

func (a *ForumAdapter) RemoveFromGroup(ctx context.Context, remoteID, name string) error {
	path := fmt.Sprintf("/api/v1/members/%s/groups/%s", url.PathEscape(remoteID), url.PathEscape(name))
	if err := a.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to remove forum group: %w", err)
	}
	return nil
}

func (a *ForumAdapter) SanitizeGroupName(name string) string {
	return groupname.Sanitize(name)
}
