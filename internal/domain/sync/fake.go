package sync

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// FakeAdapter is an in-memory Adapter used by engine, dispatcher and trigger
// tests. It tracks remote state and can be primed to fail specific calls.
type FakeAdapter struct {
	ServiceName string

	mu         sync.Mutex
	nextID     int
	accounts   map[string]bool            // remoteID -> enabled
	groups     map[string]struct{}        // existing remote groups
	members    map[string]map[string]bool // remoteID -> group -> member
	Sanitizer  func(string) string
	FailAdd    map[string]error // group name -> error
	FailRemove map[string]error
	FailEnsure map[string]error
	FetchErr   error
	CreateErr  error
	DisableErr error

	Disabled []string // remoteIDs passed to DisableAccount
}

func NewFakeAdapter(service string) *FakeAdapter {
	return &FakeAdapter{
		ServiceName: service,
		accounts:    make(map[string]bool),
		groups:      make(map[string]struct{}),
		members:     make(map[string]map[string]bool),
	}
}

func (f *FakeAdapter) Name() string { return f.ServiceName }

func (f *FakeAdapter) CreateAccount(_ context.Context, profile AccountProfile) (string, *Credentials, error) {
	if f.CreateErr != nil {
		return "", nil, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	remoteID := fmt.Sprintf("%s-%d", f.ServiceName, f.nextID)
	f.accounts[remoteID] = true
	f.members[remoteID] = make(map[string]bool)
	return remoteID, &Credentials{Username: profile.Username, Password: "generated"}, nil
}

func (f *FakeAdapter) DisableAccount(_ context.Context, remoteID string) error {
	if f.DisableErr != nil {
		return f.DisableErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[remoteID] = false
	f.Disabled = append(f.Disabled, remoteID)
	return nil
}

func (f *FakeAdapter) FetchGroups(_ context.Context, remoteID string) ([]string, error) {
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for name, member := range f.members[remoteID] {
		if member {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *FakeAdapter) EnsureGroup(_ context.Context, name string) error {
	if err := f.FailEnsure[name]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[name] = struct{}{}
	return nil
}

func (f *FakeAdapter) AddToGroup(_ context.Context, remoteID, name string) error {
	if err := f.FailAdd[name]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[name]; !ok {
		return Unrecoverable(fmt.Errorf("group %q does not exist", name))
	}
	if f.members[remoteID] == nil {
		f.members[remoteID] = make(map[string]bool)
	}
	f.members[remoteID][name] = true
	return nil
}

func (f *FakeAdapter) RemoveFromGroup(_ context.Context, remoteID, name string) error {
	if err := f.FailRemove[name]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[remoteID], name)
	return nil
}

func (f *FakeAdapter) SanitizeGroupName(name string) string {
	if f.Sanitizer != nil {
		return f.Sanitizer(name)
	}
	return name
}

// SetRemoteGroups primes the remote membership of an account.
func (f *FakeAdapter) SetRemoteGroups(remoteID string, groups ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[remoteID] = make(map[string]bool, len(groups))
	for _, g := range groups {
		f.groups[g] = struct{}{}
		f.members[remoteID][g] = true
	}
}

// GroupExists reports whether the remote group has been created.
func (f *FakeAdapter) GroupExists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.groups[name]
	return ok
}
