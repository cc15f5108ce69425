package http

import (
	"context"
	"sync"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.FindByUsernameOrEmail(ctx, username, "")
}

func (m *memUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *memUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := m.FindByUsernameOrEmail(ctx, username, email)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	_, err := m.update(id, func(u *domain.User) { u.RefreshToken = token })
	return err
}

func (m *memUserRepo) RotateRefreshToken(_ context.Context, id, current, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.RefreshToken != current {
		return repository.ErrNotFound
	}
	u.RefreshToken = next
	m.users[id] = u
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	_, err := m.update(id, func(u *domain.User) { u.PasswordHash = hash })
	return err
}

func (m *memUserRepo) UpdateAccount(_ context.Context, id, fullName, email string) (domain.User, error) {
	return m.update(id, func(u *domain.User) {
		u.FullName = fullName
		u.Email = email
	})
}

func (m *memUserRepo) UpdateAvatar(_ context.Context, id, url string) (domain.User, error) {
	return m.update(id, func(u *domain.User) { u.Avatar = url })
}

func (m *memUserRepo) UpdateCoverImage(_ context.Context, id, url string) (domain.User, error) {
	return m.update(id, func(u *domain.User) { u.CoverImage = url })
}

func (m *memUserRepo) update(id string, fn func(u *domain.User)) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	fn(&u)
	m.users[id] = u
	return u, nil
}

type memSubscriptionRepo struct {
	mu    sync.Mutex
	edges []domain.Subscription
}

func (m *memSubscriptionRepo) Create(_ context.Context, sub domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, sub)
	return nil
}

func (m *memSubscriptionRepo) Find(_ context.Context, subscriberID, channelID string) (domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.SubscriberID == subscriberID && e.ChannelID == channelID {
			return e, nil
		}
	}
	return domain.Subscription{}, repository.ErrNotFound
}

func (m *memSubscriptionRepo) Delete(_ context.Context, subscriberID, channelID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.edges[:0]
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

func (m *memSubscriptionRepo) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.edges {
		if e.ChannelID == channelID {
			n++
		}
	}
	return n, nil
}

func (m *memSubscriptionRepo) CountSubscribedTo(_ context.Context, subscriberID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.edges {
		if e.SubscriberID == subscriberID {
			n++
		}
	}
	return n, nil
}

// stubUploader registra los paths recibidos; no lee los archivos.
type stubUploader struct {
	mu    sync.Mutex
	paths []string
}

func (s *stubUploader) Upload(_ context.Context, localPath string) (media.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, localPath)
	return media.Asset{URL: "https://cdn.example.com/" + localPath, Key: localPath}, nil
}
