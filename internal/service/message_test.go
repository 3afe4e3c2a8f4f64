package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryan192003/Chatify-backend/internal/apperr"
	"github.com/Aryan192003/Chatify-backend/internal/logger"
	"github.com/Aryan192003/Chatify-backend/internal/models"
	"github.com/Aryan192003/Chatify-backend/internal/ws"
)

type messageFixture struct {
	svc      *MessageService
	chats    *fakeChatRepo
	messages *fakeMessageRepo
	router   *recorderRouter
	store    *fakeStore
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	chats := newFakeChatRepo()
	messages := &fakeMessageRepo{}
	users := newFakeUserRepo(
		&models.User{ID: "u1", Name: "Aryan", Username: "aryan"},
		&models.User{ID: "u2", Name: "Priya", Username: "priya"},
		&models.User{ID: "u3", Name: "Rahul", Username: "rahul"},
	)
	router := &recorderRouter{}
	store := &fakeStore{}
	svc := NewMessageService(chats, messages, users, store, router, nil, logger.Nop())
	require.NoError(t, chats.Create(context.Background(), &models.Chat{
		ID:        "trip",
		Name:      "Trip",
		GroupChat: true,
		Creator:   "u1",
		Members:   []string{"u1", "u2", "u3"},
	}))
	return &messageFixture{svc: svc, chats: chats, messages: messages, router: router, store: store}
}

func TestSendMessage_BroadcastsAndPersists(t *testing.T) {
	f := newMessageFixture(t)

	require.NoError(t, f.svc.SendMessage(context.Background(), "trip", "u1", "hello"))

	msgs := f.router.byEvent(ws.EventNewMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"u1", "u2", "u3"}, msgs[0].Users)
	payload := msgs[0].Data.(ws.NewMessagePayload)
	assert.Equal(t, "trip", payload.ChatID)
	assert.Equal(t, "hello", payload.Message.Content)
	assert.Equal(t, "Aryan", payload.Message.Sender.Name)
	assert.NotEmpty(t, payload.Message.ID)

	alerts := f.router.byEvent(ws.EventNewMessageAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, []string{"u1", "u2", "u3"}, alerts[0].Users)

	require.Len(t, f.messages.messages, 1)
	assert.Equal(t, "hello", f.messages.messages[0].Content)
	// The persisted document and the realtime projection carry
	// independent identifiers.
	assert.NotEqual(t, payload.Message.ID, f.messages.messages[0].ID)
}

func TestSendMessage_BroadcastSurvivesPersistenceFailure(t *testing.T) {
	f := newMessageFixture(t)
	f.messages.insertErr = errors.New("mongo down")

	err := f.svc.SendMessage(context.Background(), "trip", "u2", "still delivered")

	require.NoError(t, err)
	assert.Len(t, f.router.byEvent(ws.EventNewMessage), 1)
	assert.Len(t, f.router.byEvent(ws.EventNewMessageAlert), 1)
	assert.Empty(t, f.messages.messages)
}

func TestSendMessage_ChatNotFound(t *testing.T) {
	f := newMessageFixture(t)

	err := f.svc.SendMessage(context.Background(), "nope", "u1", "hi")

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Empty(t, f.router.routed)
}

func TestSendMessage_NonMemberRejected(t *testing.T) {
	f := newMessageFixture(t)

	err := f.svc.SendMessage(context.Background(), "trip", "stranger", "hi")

	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	assert.Empty(t, f.router.routed)
}

func TestSendAttachments_UploadsPersistsBroadcasts(t *testing.T) {
	f := newMessageFixture(t)
	files := []File{
		{Name: "a.png", ContentType: "image/png", Data: []byte("a")},
		{Name: "b.pdf", ContentType: "application/pdf", Data: []byte("b")},
	}

	msg, err := f.svc.SendAttachments(context.Background(), "trip", "u1", files)

	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)
	assert.Len(t, msg.Attachments, 2)
	assert.Empty(t, msg.Content)
	assert.Len(t, f.store.uploads, 2)
	assert.Len(t, f.router.byEvent(ws.EventNewMessage), 1)
	assert.Len(t, f.router.byEvent(ws.EventNewMessageAlert), 1)
}

func TestSendAttachments_CountBounds(t *testing.T) {
	f := newMessageFixture(t)

	_, err := f.svc.SendAttachments(context.Background(), "trip", "u1", nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	six := make([]File, 6)
	for i := range six {
		six[i] = File{Name: fmt.Sprintf("f%d", i), Data: []byte("x")}
	}
	_, err = f.svc.SendAttachments(context.Background(), "trip", "u1", six)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, f.router.routed)
}

func TestSendAttachments_UploadFailureAbortsWithoutBroadcast(t *testing.T) {
	f := newMessageFixture(t)
	f.store.uploadErr = errors.New("s3 timeout")
	f.store.failAfter = 1

	_, err := f.svc.SendAttachments(context.Background(), "trip", "u1", []File{
		{Name: "ok.png", Data: []byte("a")},
		{Name: "fails.png", Data: []byte("b")},
	})

	assert.True(t, apperr.IsKind(err, apperr.KindStorage))
	assert.Empty(t, f.router.routed)
	assert.Empty(t, f.messages.messages)
}

func TestFetchHistory_PagesBackwardAscendingOrder(t *testing.T) {
	f := newMessageFixture(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		f.messages.messages = append(f.messages.messages, &models.Message{
			ID:        fmt.Sprintf("m%02d", i),
			ChatID:    "trip",
			SenderID:  "u1",
			Content:   fmt.Sprintf("msg %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page1, totalPages, err := f.svc.FetchHistory(context.Background(), "trip", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, totalPages)
	require.Len(t, page1, 20)
	assert.Equal(t, "msg 25", page1[0].Content)
	assert.Equal(t, "msg 44", page1[19].Content)

	page2, _, err := f.svc.FetchHistory(context.Background(), "trip", 2)
	require.NoError(t, err)
	require.Len(t, page2, 20)
	assert.Equal(t, "msg 5", page2[0].Content)
	assert.Equal(t, "msg 24", page2[19].Content)

	page3, _, err := f.svc.FetchHistory(context.Background(), "trip", 3)
	require.NoError(t, err)
	require.Len(t, page3, 5)
	assert.Equal(t, "msg 0", page3[0].Content)
}

func TestFetchHistory_EmptyChat(t *testing.T) {
	f := newMessageFixture(t)

	msgs, totalPages, err := f.svc.FetchHistory(context.Background(), "trip", 1)

	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, 0, totalPages)
}

func TestDeleteChat_CascadesAndRefetches(t *testing.T) {
	f := newMessageFixture(t)
	f.messages.messages = append(f.messages.messages,
		&models.Message{ID: "m1", ChatID: "trip", SenderID: "u1", Content: "text"},
		&models.Message{ID: "m2", ChatID: "trip", SenderID: "u2", Attachments: []models.Attachment{
			{PublicID: "pid-a", URL: "https://files.example.com/a"},
			{PublicID: "pid-b", URL: "https://files.example.com/b"},
		}},
	)

	require.NoError(t, f.svc.DeleteChat(context.Background(), "trip", "u1"))

	_, err := f.chats.FindByID(context.Background(), "trip")
	assert.Error(t, err)
	assert.Empty(t, f.messages.messages)
	require.Len(t, f.store.deleted, 1)
	assert.ElementsMatch(t, []string{"pid-a", "pid-b"}, f.store.deleted[0])

	refetch := f.router.byEvent(ws.EventRefetchChats)
	require.Len(t, refetch, 1)
	assert.Equal(t, []string{"u1", "u2", "u3"}, refetch[0].Users)
}

func TestDeleteChat_GroupRequiresCreator(t *testing.T) {
	f := newMessageFixture(t)

	err := f.svc.DeleteChat(context.Background(), "trip", "u2")

	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	_, ferr := f.chats.FindByID(context.Background(), "trip")
	assert.NoError(t, ferr)
}

func TestDeleteChat_DirectRequiresMembership(t *testing.T) {
	f := newMessageFixture(t)
	require.NoError(t, f.chats.Create(context.Background(), &models.Chat{
		ID:      "dm",
		Members: []string{"u1", "u2"},
	}))

	err := f.svc.DeleteChat(context.Background(), "dm", "u3")
	assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))

	require.NoError(t, f.svc.DeleteChat(context.Background(), "dm", "u2"))
	_, ferr := f.chats.FindByID(context.Background(), "dm")
	assert.Error(t, ferr)
}
