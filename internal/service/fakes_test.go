package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Aryan192003/Chatify-backend/internal/models"
	"github.com/Aryan192003/Chatify-backend/internal/repository"
)

type fakeChatRepo struct {
	chats   map[string]*models.Chat
	nextID  int
	saveErr error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]*models.Chat)}
}

func (f *fakeChatRepo) Create(_ context.Context, c *models.Chat) error {
	if c.ID == "" {
		f.nextID++
		c.ID = fmt.Sprintf("chat-%d", f.nextID)
	}
	c.CreatedAt = time.Now().UTC()
	cp := *c
	f.chats[c.ID] = &cp
	return nil
}

// FindByID returns a copy, like a real database read: mutations made by
// the service are not visible until Save.
func (f *fakeChatRepo) FindByID(_ context.Context, id string) (*models.Chat, error) {
	c, ok := f.chats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Members = append([]string(nil), c.Members...)
	return &cp, nil
}

func (f *fakeChatRepo) FindByMember(_ context.Context, userID string) ([]*models.Chat, error) {
	return f.filter(func(c *models.Chat) bool { return c.HasMember(userID) }), nil
}

func (f *fakeChatRepo) FindDirectByMember(_ context.Context, userID string) ([]*models.Chat, error) {
	return f.filter(func(c *models.Chat) bool { return !c.GroupChat && c.HasMember(userID) }), nil
}

func (f *fakeChatRepo) FindGroupsByCreator(_ context.Context, userID string) ([]*models.Chat, error) {
	return f.filter(func(c *models.Chat) bool { return c.GroupChat && c.Creator == userID }), nil
}

func (f *fakeChatRepo) Save(_ context.Context, c *models.Chat) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.chats[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	cp.Members = append([]string(nil), c.Members...)
	f.chats[c.ID] = &cp
	return nil
}

func (f *fakeChatRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.chats[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.chats, id)
	return nil
}

func (f *fakeChatRepo) filter(keep func(*models.Chat) bool) []*models.Chat {
	var ids []string
	for id := range f.chats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*models.Chat
	for _, id := range ids {
		if keep(f.chats[id]) {
			cp := *f.chats[id]
			out = append(out, &cp)
		}
	}
	return out
}

type fakeMessageRepo struct {
	messages  []*models.Message
	nextID    int
	insertErr error
}

func (f *fakeMessageRepo) Insert(_ context.Context, m *models.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	m.ID = fmt.Sprintf("msg-%d", f.nextID)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeMessageRepo) FindPage(_ context.Context, chatID string, skip, limit int64) ([]*models.Message, error) {
	var chat []*models.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			chat = append(chat, m)
		}
	}
	sort.Slice(chat, func(i, j int) bool { return chat[i].CreatedAt.After(chat[j].CreatedAt) })
	if skip >= int64(len(chat)) {
		return nil, nil
	}
	chat = chat[skip:]
	if int64(len(chat)) > limit {
		chat = chat[:limit]
	}
	out := make([]*models.Message, len(chat))
	for i, m := range chat {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (f *fakeMessageRepo) Count(_ context.Context, chatID string) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.ChatID == chatID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageRepo) FindWithAttachments(_ context.Context, chatID string) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range f.messages {
		if m.ChatID == chatID && len(m.Attachments) > 0 {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) DeleteByChat(_ context.Context, chatID string) error {
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.ChatID != chatID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return fmt.Errorf("duplicate username %q", u.Username)
		}
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SearchByName(_ context.Context, name string, excludeIDs []string) ([]*models.User, error) {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	var ids []string
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*models.User
	for _, id := range ids {
		u := f.users[id]
		if _, ok := excluded[id]; ok {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(name)) {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeRequestRepo struct {
	requests map[string]*models.FriendRequest
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*models.FriendRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, fr *models.FriendRequest) error {
	f.nextID++
	fr.ID = fmt.Sprintf("req-%d", f.nextID)
	f.requests[fr.ID] = fr
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id string) (*models.FriendRequest, error) {
	fr, ok := f.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return fr, nil
}

func (f *fakeRequestRepo) FindBetween(_ context.Context, a, b string) (*models.FriendRequest, error) {
	for _, fr := range f.requests {
		if (fr.Sender == a && fr.Receiver == b) || (fr.Sender == b && fr.Receiver == a) {
			return fr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRequestRepo) FindByReceiver(_ context.Context, userID string) ([]*models.FriendRequest, error) {
	var out []*models.FriendRequest
	for _, fr := range f.requests {
		if fr.Receiver == userID {
			out = append(out, fr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id string) error {
	delete(f.requests, id)
	return nil
}

type routedEvent struct {
	Event string
	Users []string
	Data  any
}

// recorderRouter captures fan-out calls instead of delivering them.
type recorderRouter struct {
	routed []routedEvent
}

func (r *recorderRouter) Route(event string, users []string, data any) {
	r.routed = append(r.routed, routedEvent{
		Event: event,
		Users: append([]string(nil), users...),
		Data:  data,
	})
}

func (r *recorderRouter) byEvent(event string) []routedEvent {
	var out []routedEvent
	for _, e := range r.routed {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeStore struct {
	uploads   []models.Attachment
	deleted   [][]string
	uploadErr error
	failAfter int // fail uploads once this many have succeeded; 0 = use uploadErr always
}

func (f *fakeStore) Upload(_ context.Context, filename, _ string, _ []byte) (models.Attachment, error) {
	if f.uploadErr != nil && (f.failAfter == 0 || len(f.uploads) >= f.failAfter) {
		return models.Attachment{}, f.uploadErr
	}
	att := models.Attachment{
		PublicID: fmt.Sprintf("pid-%d", len(f.uploads)+1),
		URL:      "https://files.example.com/" + filename,
	}
	f.uploads = append(f.uploads, att)
	return att, nil
}

func (f *fakeStore) Delete(_ context.Context, publicIDs []string) error {
	f.deleted = append(f.deleted, append([]string(nil), publicIDs...))
	return nil
}
