package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/domain/character"
	"aegis/internal/domain/shared/events"
	domainUser "aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

type fakeUsers struct {
	nextID uint
	byID   map[uint]*domainUser.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint]*domainUser.User{}}
}

func (f *fakeUsers) Create(ctx context.Context, u *domainUser.User) error {
	f.nextID++
	if err := u.SetID(f.nextID); err != nil {
		return err
	}
	f.byID[u.ID()] = u
	return nil
}

func (f *fakeUsers) Update(ctx context.Context, u *domainUser.User) error {
	f.byID[u.ID()] = u
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint) (*domainUser.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domainUser.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	for _, u := range f.byID {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (f *fakeUsers) List(ctx context.Context, filter domainUser.ListFilter) ([]*domainUser.User, int64, error) {
	return nil, 0, nil
}

type fakeProfiles struct {
	nextID   uint
	byUserID map[uint]*domainUser.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byUserID: map[uint]*domainUser.Profile{}}
}

func (f *fakeProfiles) Create(ctx context.Context, p *domainUser.Profile) error {
	f.nextID++
	if err := p.SetID(f.nextID); err != nil {
		return err
	}
	f.byUserID[p.UserID()] = p
	return nil
}

func (f *fakeProfiles) Update(ctx context.Context, p *domainUser.Profile) error {
	f.byUserID[p.UserID()] = p
	return nil
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID uint) (*domainUser.Profile, error) {
	p, ok := f.byUserID[userID]
	if !ok {
		return nil, domainUser.ErrProfileNotFound
	}
	return p, nil
}

type fakeOwnerships struct {
	nextID uint
	rows   []*character.Ownership
}

func (f *fakeOwnerships) Create(ctx context.Context, o *character.Ownership) error {
	f.nextID++
	if err := o.SetID(f.nextID); err != nil {
		return err
	}
	f.rows = append(f.rows, o)
	return nil
}

func (f *fakeOwnerships) Update(ctx context.Context, o *character.Ownership) error {
	return nil
}

func (f *fakeOwnerships) GetActiveByCharacterID(ctx context.Context, characterID int64) (*character.Ownership, error) {
	for _, o := range f.rows {
		if o.CharacterID() == characterID && o.IsActive() {
			return o, nil
		}
	}
	return nil, character.ErrOwnershipNotFound
}

func (f *fakeOwnerships) ListActiveByUserID(ctx context.Context, userID uint) ([]*character.Ownership, error) {
	var out []*character.Ownership
	for _, o := range f.rows {
		if o.UserID() == userID && o.IsActive() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOwnerships) ListHistoryByCharacterID(ctx context.Context, characterID int64) ([]*character.Ownership, error) {
	var out []*character.Ownership
	for _, o := range f.rows {
		if o.CharacterID() == characterID {
			out = append(out, o)
		}
	}
	return out, nil
}

type recorderPublisher struct {
	published []events.DomainEvent
}

func (r *recorderPublisher) Publish(event events.DomainEvent) error {
	r.published = append(r.published, event)
	return nil
}

func (r *recorderPublisher) PublishAll(evts []events.DomainEvent) error {
	r.published = append(r.published, evts...)
	return nil
}

func (r *recorderPublisher) eventTypes() []string {
	out := make([]string, 0, len(r.published))
	for _, e := range r.published {
		out = append(out, e.GetEventType())
	}
	return out
}

func TestRegisterUser_CreatesPendingAccountWithProfile(t *testing.T) {
	users := newFakeUsers()
	profiles := newFakeProfiles()
	uc := NewRegisterUserUseCase(users, profiles, logger.NewNop())

	account, err := uc.Execute(context.Background(), "Alice@Example.COM", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", account.Email())
	assert.Equal(t, domainUser.StatusPending, account.Status())

	profile, err := profiles.GetByUserID(context.Background(), account.ID())
	require.NoError(t, err)
	assert.Nil(t, profile.MainCharacterID())
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	uc := NewRegisterUserUseCase(users, newFakeProfiles(), logger.NewNop())

	_, err := uc.Execute(context.Background(), "alice@example.com", "Alice")
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), "alice@example.com", "Alice Again")
	assert.ErrorIs(t, err, domainUser.ErrEmailTaken)
}

func TestClaimCharacter_FirstClaimBecomesMain(t *testing.T) {
	ownerships := &fakeOwnerships{}
	profiles := newFakeProfiles()
	publisher := &recorderPublisher{}

	profile, err := domainUser.NewProfile(1)
	require.NoError(t, err)
	require.NoError(t, profiles.Create(context.Background(), profile))

	uc := NewClaimCharacterUseCase(
		character.NewClaimService(ownerships, publisher),
		profiles, ownerships, publisher, logger.NewNop(),
	)

	ownership, err := uc.Execute(context.Background(), 1, 9001, character.ProofSSO)
	require.NoError(t, err)
	assert.Equal(t, uint(1), ownership.UserID())

	got, err := profiles.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got.MainCharacterID())
	assert.Equal(t, int64(9001), *got.MainCharacterID())
	assert.Contains(t, publisher.eventTypes(), domainUser.EventTypeMainCharacterChanged)
}

func TestClaimCharacter_SecondClaimKeepsMain(t *testing.T) {
	ownerships := &fakeOwnerships{}
	profiles := newFakeProfiles()
	publisher := &recorderPublisher{}

	profile, err := domainUser.NewProfile(1)
	require.NoError(t, err)
	require.NoError(t, profiles.Create(context.Background(), profile))

	uc := NewClaimCharacterUseCase(
		character.NewClaimService(ownerships, publisher),
		profiles, ownerships, publisher, logger.NewNop(),
	)

	_, err = uc.Execute(context.Background(), 1, 9001, character.ProofSSO)
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), 1, 9002, character.ProofSSO)
	require.NoError(t, err)

	got, err := profiles.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got.MainCharacterID())
	assert.Equal(t, int64(9001), *got.MainCharacterID())
}

func TestClaimCharacter_WeakerProofRejected(t *testing.T) {
	ownerships := &fakeOwnerships{}
	publisher := &recorderPublisher{}
	profiles := newFakeProfiles()

	for _, userID := range []uint{1, 2} {
		profile, err := domainUser.NewProfile(userID)
		require.NoError(t, err)
		require.NoError(t, profiles.Create(context.Background(), profile))
	}

	uc := NewClaimCharacterUseCase(
		character.NewClaimService(ownerships, publisher),
		profiles, ownerships, publisher, logger.NewNop(),
	)

	_, err := uc.Execute(context.Background(), 1, 9001, character.ProofSSO)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), 2, 9001, character.ProofManual)
	assert.ErrorIs(t, err, character.ErrWeakerProof)
}

func TestClaimCharacter_EqualProofTransfers(t *testing.T) {
	ownerships := &fakeOwnerships{}
	publisher := &recorderPublisher{}
	profiles := newFakeProfiles()

	for _, userID := range []uint{1, 2} {
		profile, err := domainUser.NewProfile(userID)
		require.NoError(t, err)
		require.NoError(t, profiles.Create(context.Background(), profile))
	}

	uc := NewClaimCharacterUseCase(
		character.NewClaimService(ownerships, publisher),
		profiles, ownerships, publisher, logger.NewNop(),
	)

	_, err := uc.Execute(context.Background(), 1, 9001, character.ProofSSO)
	require.NoError(t, err)

	ownership, err := uc.Execute(context.Background(), 2, 9001, character.ProofSSO)
	require.NoError(t, err)
	assert.Equal(t, uint(2), ownership.UserID())
	assert.Contains(t, publisher.eventTypes(), character.EventTypeOwnershipTransferred)
}

func TestClaimCharacter_TransferClearsFormerOwnersMain(t *testing.T) {
	ownerships := &fakeOwnerships{}
	publisher := &recorderPublisher{}
	profiles := newFakeProfiles()

	for _, userID := range []uint{1, 2} {
		profile, err := domainUser.NewProfile(userID)
		require.NoError(t, err)
		require.NoError(t, profiles.Create(context.Background(), profile))
	}

	uc := NewClaimCharacterUseCase(
		character.NewClaimService(ownerships, publisher),
		profiles, ownerships, publisher, logger.NewNop(),
	)

	_, err := uc.Execute(context.Background(), 1, 9001, character.ProofSSO)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), 2, 9001, character.ProofSSO)
	require.NoError(t, err)

	loser, err := profiles.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, loser.MainCharacterID())

	winner, err := profiles.GetByUserID(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, winner.MainCharacterID())
	assert.Equal(t, int64(9001), *winner.MainCharacterID())

	assert.Contains(t, publisher.eventTypes(), domainUser.EventTypeMainCharacterChanged)
}

func TestSetMainCharacter_RejectsUnowned(t *testing.T) {
	ownerships := &fakeOwnerships{}
	profiles := newFakeProfiles()

	owned, err := character.NewOwnership(9001, 2, character.ProofSSO)
	require.NoError(t, err)
	require.NoError(t, ownerships.Create(context.Background(), owned))

	profile, err := domainUser.NewProfile(1)
	require.NoError(t, err)
	require.NoError(t, profiles.Create(context.Background(), profile))

	uc := NewSetMainCharacterUseCase(profiles, ownerships, &recorderPublisher{}, logger.NewNop())
	err = uc.Execute(context.Background(), 1, 9001)
	assert.ErrorIs(t, err, domainUser.ErrNotOwned)
}

func TestActivateUser_PublishesEvent(t *testing.T) {
	users := newFakeUsers()
	publisher := &recorderPublisher{}

	account, err := domainUser.NewUser("alice@example.com", "Alice")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), account))

	uc := NewActivateUserUseCase(users, publisher, logger.NewNop())
	require.NoError(t, uc.Execute(context.Background(), account.ID()))

	got, err := users.GetByID(context.Background(), account.ID())
	require.NoError(t, err)
	assert.Equal(t, domainUser.StatusActive, got.Status())
	assert.Contains(t, publisher.eventTypes(), domainUser.EventTypeUserActivated)
}

func TestDeactivateUser_PublishesEvent(t *testing.T) {
	users := newFakeUsers()
	publisher := &recorderPublisher{}

	account, err := domainUser.NewUser("alice@example.com", "Alice")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), account))
	require.NoError(t, account.Activate())
	account.ClearEvents()

	uc := NewDeactivateUserUseCase(users, publisher, logger.NewNop())
	require.NoError(t, uc.Execute(context.Background(), account.ID()))

	got, err := users.GetByID(context.Background(), account.ID())
	require.NoError(t, err)
	assert.Equal(t, domainUser.StatusDisabled, got.Status())
	assert.Contains(t, publisher.eventTypes(), domainUser.EventTypeUserDeactivated)
}
