package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/models"
)

func TestChatService_ProjectChannelParticipantsOnly(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	designer := env.createUser(t, models.RoleDesigner, "designer@example.com")
	stranger := env.createUser(t, models.RoleClient, "stranger@example.com")
	project := env.createProject(t, models.ProjectTypeResidential, client, manager)

	require.NoError(t, env.projectService.SetDesigners(authz.ActorFor(manager), project.ID, []uint64{designer.ID}))

	for _, actor := range []authz.Actor{authz.ActorFor(client), authz.ActorFor(manager), authz.ActorFor(designer)} {
		_, err := env.chatService.SendProjectMessage(actor, project.ID, SendMessageInput{Message: "hello"})
		require.NoError(t, err)
	}

	_, err := env.chatService.SendProjectMessage(authz.ActorFor(stranger), project.ID, SendMessageInput{Message: "hi"})
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	_, err = env.chatService.ProjectMessages(authz.ActorFor(stranger), project.ID)
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	messages, err := env.chatService.ProjectMessages(authz.ActorFor(client), project.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
}

func TestChatService_DirectMessagesMarkReadOnFetch(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, models.RoleProjectManager, "alice@example.com")
	bob := env.createUser(t, models.RoleDesigner, "bob@example.com")

	aliceActor := authz.ActorFor(alice)
	bobActor := authz.ActorFor(bob)

	_, err := env.chatService.SendDirectMessage(aliceActor, bob.ID, SendMessageInput{Message: "first"})
	require.NoError(t, err)
	_, err = env.chatService.SendDirectMessage(aliceActor, bob.ID, SendMessageInput{Message: "second"})
	require.NoError(t, err)

	unread, err := env.chatRepo.UnreadCount(alice.ID, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	// The sender fetching the thread does not consume the recipient's unread.
	_, err = env.chatService.DirectMessages(aliceActor, bob.ID)
	require.NoError(t, err)
	unread, err = env.chatRepo.UnreadCount(alice.ID, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)

	// The recipient fetching it does.
	messages, err := env.chatService.DirectMessages(bobActor, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, m := range messages {
		require.True(t, m.IsRead)
	}

	unread, err = env.chatRepo.UnreadCount(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestChatService_SendDirectMessageValidation(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, models.RoleHR, "alice@example.com")
	actor := authz.ActorFor(alice)

	_, err := env.chatService.SendDirectMessage(actor, alice.ID, SendMessageInput{Message: "note to self"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.chatService.SendDirectMessage(actor, 9999, SendMessageInput{Message: "hello"})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	bob := env.createUser(t, models.RoleSales, "bob@example.com")
	_, err = env.chatService.SendDirectMessage(actor, bob.ID, SendMessageInput{Message: "   "})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.chatService.SendDirectMessage(actor, bob.ID, SendMessageInput{Message: "hi", MessageType: "video"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestChatService_ConversationsOrderedByLastActivity(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, models.RoleProjectManager, "alice@example.com")
	bob := env.createUser(t, models.RoleDesigner, "bob@example.com")
	carol := env.createUser(t, models.RoleClient, "carol@example.com")

	base := time.Now().Add(-time.Hour)
	seed := []models.IndividualChatMessage{
		{SenderID: bob.ID, RecipientID: alice.ID, Message: "old thread", MessageType: models.MessageTypeText, CreatedAt: base},
		{SenderID: carol.ID, RecipientID: alice.ID, Message: "newer", MessageType: models.MessageTypeText, CreatedAt: base.Add(10 * time.Minute)},
		{SenderID: carol.ID, RecipientID: alice.ID, Message: "newest", MessageType: models.MessageTypeText, CreatedAt: base.Add(20 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, env.db.Create(&seed[i]).Error)
	}

	conversations, err := env.chatService.Conversations(authz.ActorFor(alice))
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Most recently active thread first.
	require.Equal(t, carol.ID, conversations[0].User.ID)
	require.Equal(t, "newest", conversations[0].LastMessage.Message)
	require.EqualValues(t, 2, conversations[0].UnreadCount)

	require.Equal(t, bob.ID, conversations[1].User.ID)
	require.EqualValues(t, 1, conversations[1].UnreadCount)

	// Reading a thread zeroes its unread count.
	_, err = env.chatService.DirectMessages(authz.ActorFor(alice), carol.ID)
	require.NoError(t, err)

	conversations, err = env.chatService.Conversations(authz.ActorFor(alice))
	require.NoError(t, err)
	require.Zero(t, conversations[0].UnreadCount)
}
