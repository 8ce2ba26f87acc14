package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/iidmage/backoffice/internal/types/commande"
	notiftypes "github.com/iidmage/backoffice/internal/types/notification"
)

type stubNotifRepo struct {
	replacedID    string
	replacedKinds []types.MilestoneKind
	replacedRows  []notiftypes.Notification
	deletedKinds  []types.MilestoneKind
	due           []notiftypes.Notification
	sent          map[int64]string
	failed        map[int64]string
}

func newStubNotifRepo() *stubNotifRepo {
	return &stubNotifRepo{sent: map[int64]string{}, failed: map[int64]string{}}
}

func (r *stubNotifRepo) ReplacePending(ctx context.Context, commandeID string, kinds []types.MilestoneKind, rows []notiftypes.Notification) error {
	r.replacedID = commandeID
	r.replacedKinds = kinds
	r.replacedRows = rows
	return nil
}

func (r *stubNotifRepo) DeletePending(ctx context.Context, commandeID string, kinds []types.MilestoneKind) error {
	r.deletedKinds = kinds
	return nil
}

func (r *stubNotifRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]notiftypes.Notification, error) {
	if limit < len(r.due) {
		return r.due[:limit], nil
	}
	return r.due, nil
}

func (r *stubNotifRepo) MarkSent(ctx context.Context, id int64, at time.Time, note string) error {
	r.sent[id] = note
	return nil
}

func (r *stubNotifRepo) MarkFailed(ctx context.Context, id int64, at time.Time, errText string) error {
	r.failed[id] = errText
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.Local)
}

func dptr(t time.Time) *time.Time { return &t }

func TestSchedulerRecreate(t *testing.T) {
	repo := newStubNotifRepo()
	s := NewScheduler(repo)
	// понедельник 17 июня 2024, 07:00
	s.now = func() time.Time { return at(2024, time.June, 17, 7) }

	t.Run("three reminders per future milestone", func(t *testing.T) {
		err := s.Recreate(context.Background(), "c-1", types.MilestoneDates{
			Pose: dptr(day(2024, time.June, 21)), // пятница
		}, "actor@iidmage.fr")
		require.NoError(t, err)

		assert.Equal(t, "c-1", repo.replacedID)
		assert.Equal(t, types.Kinds, repo.replacedKinds)
		require.Len(t, repo.replacedRows, 3)

		wantDue := []time.Time{
			at(2024, time.June, 19, 8), // за 2 рабочих дня
			at(2024, time.June, 21, 8), // в день этапа
			at(2024, time.June, 24, 8), // +1 рабочий день, пн после пт
		}
		for i, row := range repo.replacedRows {
			assert.Equal(t, types.KindPose, row.Kind)
			assert.Equal(t, notiftypes.ChannelEmail, row.Channel)
			assert.Equal(t, notiftypes.StatusPending, row.Status)
			assert.True(t, row.DueAt.Equal(wantDue[i]), "row %d: got %v want %v", i, row.DueAt, wantDue[i])
			require.NotNil(t, row.ActorEmail)
			assert.Equal(t, "actor@iidmage.fr", *row.ActorEmail)
		}
	})

	t.Run("past candidates are dropped", func(t *testing.T) {
		err := s.Recreate(context.Background(), "c-1", types.MilestoneDates{
			Production: dptr(day(2024, time.June, 14)), // прошедшая пятница
		}, "")
		require.NoError(t, err)

		// остаётся только overdue-кандидат: пн 17 июня 08:00 ещё впереди
		require.Len(t, repo.replacedRows, 1)
		assert.True(t, repo.replacedRows[0].DueAt.Equal(at(2024, time.June, 17, 8)))
		assert.Nil(t, repo.replacedRows[0].ActorEmail)
	})

	t.Run("no dates clears everything", func(t *testing.T) {
		err := s.Recreate(context.Background(), "c-1", types.MilestoneDates{}, "")
		require.NoError(t, err)
		assert.Empty(t, repo.replacedRows)
		assert.Equal(t, types.Kinds, repo.replacedKinds)
	})
}

func TestSchedulerCancelKinds(t *testing.T) {
	repo := newStubNotifRepo()
	s := NewScheduler(repo)

	kinds := types.KindLivraison.Cascade()
	require.NoError(t, s.CancelKinds(context.Background(), "c-1", kinds))
	assert.Equal(t, kinds, repo.deletedKinds)
}
