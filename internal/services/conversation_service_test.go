package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"secdocs/internal/models"
	"secdocs/internal/repositories"
)

func TestConversationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the given title", func(t *testing.T) {
		repo := new(MockConversationRepository)
		svc := NewConversationService(repo, testLogger())

		repo.On("Create", mock.Anything, "Audit prep", int64(1)).
			Return(&models.Conversation{ID: 1, Title: "Audit prep", OwnerID: 1}, nil)

		conv, err := svc.Create(ctx, 1, "Audit prep")
		require.NoError(t, err)
		assert.Equal(t, "Audit prep", conv.Title)
	})

	t.Run("blank title gets a default", func(t *testing.T) {
		repo := new(MockConversationRepository)
		svc := NewConversationService(repo, testLogger())

		repo.On("Create", mock.Anything, "New conversation", int64(1)).
			Return(&models.Conversation{ID: 2, Title: "New conversation", OwnerID: 1}, nil)

		_, err := svc.Create(ctx, 1, "   ")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestConversationService_List(t *testing.T) {
	ctx := context.Background()

	ownerConvs := []*models.Conversation{
		{ID: 3, Title: "Phishing triage", OwnerID: 1},
		{ID: 2, Title: "Audit prep", OwnerID: 1},
		{ID: 1, Title: "Phishing awareness training", OwnerID: 1},
	}

	newService := func() (*MockConversationRepository, *ConversationService) {
		repo := new(MockConversationRepository)
		repo.On("ListByOwner", mock.Anything, int64(1)).Return(ownerConvs, nil)
		return repo, NewConversationService(repo, testLogger())
	}

	t.Run("empty query returns everything in repository order", func(t *testing.T) {
		_, svc := newService()
		convs, err := svc.List(ctx, 1, "")
		require.NoError(t, err)
		assert.Equal(t, ownerConvs, convs)
	})

	t.Run("whitespace query is treated as empty", func(t *testing.T) {
		_, svc := newService()
		convs, err := svc.List(ctx, 1, "   ")
		require.NoError(t, err)
		assert.Len(t, convs, 3)
	})

	t.Run("query filters by title case-insensitively, keeping order", func(t *testing.T) {
		_, svc := newService()
		convs, err := svc.List(ctx, 1, "PHISH")
		require.NoError(t, err)
		require.Len(t, convs, 2)
		assert.Equal(t, int64(3), convs[0].ID)
		assert.Equal(t, int64(1), convs[1].ID)
	})

	t.Run("no matches returns an empty list", func(t *testing.T) {
		_, svc := newService()
		convs, err := svc.List(ctx, 1, "ransomware")
		require.NoError(t, err)
		assert.Empty(t, convs)
	})
}

func TestConversationService_Messages(t *testing.T) {
	ctx := context.Background()

	t.Run("returns history for the owner", func(t *testing.T) {
		repo := new(MockConversationRepository)
		svc := NewConversationService(repo, testLogger())

		repo.On("Get", mock.Anything, int64(5)).
			Return(&models.Conversation{ID: 5, OwnerID: 1}, nil)
		repo.On("ListMessages", mock.Anything, int64(5)).
			Return([]*models.Message{{ID: 1, Role: models.RoleUser}}, nil)

		msgs, err := svc.Messages(ctx, 1, 5)
		require.NoError(t, err)
		assert.Len(t, msgs, 1)
	})

	t.Run("denies another owner's conversation", func(t *testing.T) {
		repo := new(MockConversationRepository)
		svc := NewConversationService(repo, testLogger())

		repo.On("Get", mock.Anything, int64(5)).
			Return(&models.Conversation{ID: 5, OwnerID: 99}, nil)

		_, err := svc.Messages(ctx, 1, 5)
		assert.True(t, IsFailure(err, FailureAuth))
		repo.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
	})

	t.Run("missing conversation", func(t *testing.T) {
		repo := new(MockConversationRepository)
		svc := NewConversationService(repo, testLogger())

		repo.On("Get", mock.Anything, int64(5)).
			Return(nil, repositories.ConversationNotFoundError("get", 5))

		_, err := svc.Messages(ctx, 1, 5)
		assert.True(t, IsFailure(err, FailureNotFound))
	})
}

func TestConversationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes after ownership check", func(t *testing.T) {
		repo := new(MockConversationRepository)
		svc := NewConversationService(repo, testLogger())

		repo.On("Get", mock.Anything, int64(5)).
			Return(&models.Conversation{ID: 5, OwnerID: 1}, nil)
		repo.On("Delete", mock.Anything, int64(5)).Return(nil)

		assert.NoError(t, svc.Delete(ctx, 1, 5))
		repo.AssertExpectations(t)
	})

	t.Run("denies delete of another owner's conversation", func(t *testing.T) {
		repo := new(MockConversationRepository)
		svc := NewConversationService(repo, testLogger())

		repo.On("Get", mock.Anything, int64(5)).
			Return(&models.Conversation{ID: 5, OwnerID: 99}, nil)

		err := svc.Delete(ctx, 1, 5)
		assert.True(t, IsFailure(err, FailureAuth))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
