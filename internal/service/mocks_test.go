package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/repository"
)

type mockUserRepo struct {
	mu        sync.Mutex
	usersByID map[string]domain.User
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{usersByID: make(map[string]domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.usersByID {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.usersByID {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *mockUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.usersByID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *mockUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := m.FindByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *mockUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	return m.mutate(id, func(u *domain.User) { u.RefreshToken = token })
}

func (m *mockUserRepo) RotateRefreshToken(_ context.Context, id, current, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByID[id]
	if !ok || u.RefreshToken != current {
		return repository.ErrNotFound
	}
	u.RefreshToken = next
	m.usersByID[id] = u
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return m.mutate(id, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (m *mockUserRepo) UpdateAccount(_ context.Context, id, fullName, email string) (domain.User, error) {
	m.mu.Lock()
	for otherID, u := range m.usersByID {
		if otherID != id && u.Email == email {
			m.mu.Unlock()
			return domain.User{}, repository.ErrDuplicateKey
		}
	}
	m.mu.Unlock()
	return m.mutateReturn(id, func(u *domain.User) {
		u.FullName = fullName
		u.Email = email
	})
}

func (m *mockUserRepo) UpdateAvatar(_ context.Context, id, url string) (domain.User, error) {
	return m.mutateReturn(id, func(u *domain.User) { u.Avatar = url })
}

func (m *mockUserRepo) UpdateCoverImage(_ context.Context, id, url string) (domain.User, error) {
	return m.mutateReturn(id, func(u *domain.User) { u.CoverImage = url })
}

func (m *mockUserRepo) mutate(id string, fn func(u *domain.User)) error {
	_, err := m.mutateReturn(id, fn)
	return err
}

func (m *mockUserRepo) mutateReturn(id string, fn func(u *domain.User)) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	fn(&u)
	m.usersByID[id] = u
	return u, nil
}

type mockSubscriptionRepo struct {
	mu    sync.Mutex
	edges []domain.Subscription

	// afterCount corre una vez, después de CountSubscribers y sin el lock tomado.
	afterCount func()
}

func (m *mockSubscriptionRepo) setAfterCount(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterCount = fn
}

func (m *mockSubscriptionRepo) Create(_ context.Context, sub domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, sub)
	return nil
}

func (m *mockSubscriptionRepo) Find(_ context.Context, subscriberID, channelID string) (domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.SubscriberID == subscriberID && e.ChannelID == channelID {
			return e, nil
		}
	}
	return domain.Subscription{}, repository.ErrNotFound
}

func (m *mockSubscriptionRepo) Delete(_ context.Context, subscriberID, channelID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.edges[:0]
	var n int64
	for _, e := range m.edges {
		if e.SubscriberID == subscriberID && e.ChannelID == channelID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.edges = kept
	return n, nil
}

func (m *mockSubscriptionRepo) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	n := m.count(func(e domain.Subscription) bool { return e.ChannelID == channelID })
	m.mu.Lock()
	hook := m.afterCount
	m.afterCount = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	return n, nil
}

func (m *mockSubscriptionRepo) CountSubscribedTo(_ context.Context, subscriberID string) (int64, error) {
	return m.count(func(e domain.Subscription) bool { return e.SubscriberID == subscriberID }), nil
}

func (m *mockSubscriptionRepo) count(match func(e domain.Subscription) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.edges {
		if match(e) {
			n++
		}
	}
	return n
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	failOn   map[string]error
	emptyURL bool
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[localPath]; ok {
		return media.Asset{}, err
	}
	f.uploaded = append(f.uploaded, localPath)
	sort.Strings(f.uploaded)
	if f.emptyURL {
		return media.Asset{}, nil
	}
	return media.Asset{URL: "https://cdn.example.com/" + localPath, Key: localPath}, nil
}
