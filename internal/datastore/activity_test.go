package datastore

import (
	"testing"
	"time"

	"canedu/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClaimActivity(t *testing.T) {
	stored := &models.ActivityLog{
		ID:       "9b2f4c1e-5d7a-4e36-8a0b-1c2d3e4f5a6b",
		UserID:   "u1",
		GameSlug: "maple-addition",
		Date:     time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Correct:  4,
		Total:    5,
		Accuracy: 80,
	}

	tests := []struct {
		name    string
		userID  string
		wantErr error
	}{
		{"retry by owner", "u1", nil},
		{"id owned by another user", "u2", ErrActivityTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &models.ActivityLog{ID: stored.ID, UserID: tt.userID, GameSlug: "hockey-subtraction", Correct: 1, Total: 5}
			err := claimActivity(stored, entry)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "hockey-subtraction", entry.GameSlug)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, *stored, *entry)
		})
	}
}
