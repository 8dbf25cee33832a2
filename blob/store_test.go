package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBucket struct {
	data   []byte
	ok     bool
	getErr error
	putErr error
}

func (b *memBucket) Get(ctx context.Context) ([]byte, bool, error) {
	if b.getErr != nil {
		return nil, false, b.getErr
	}
	return b.data, b.ok, nil
}

func (b *memBucket) Put(ctx context.Context, data []byte) error {
	if b.putErr != nil {
		return b.putErr
	}
	b.data = data
	b.ok = true
	return nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewFileBucket(filepath.Join(t.TempDir(), "roster.json")))
}

func newMeeting(t *testing.T, name string) meetings.Meeting {
	t.Helper()
	meeting, err := meetings.NewMeeting(name)
	require.NoError(t, err)
	return meeting
}

func TestCreateAndGetMeetingRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meeting := newMeeting(t, "Board Session")
	require.NoError(t, store.CreateMeeting(ctx, meeting))

	got, err := store.GetMeeting(ctx, meeting.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(meeting, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateMeetingDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meeting := newMeeting(t, "a")
	require.NoError(t, store.CreateMeeting(ctx, meeting))

	err := store.CreateMeeting(ctx, meeting)
	assert.True(t, meetings.HasReason(err, meetings.REASON_MEETING_ALREADY_EXISTS))
}

func TestGetMeetingNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetMeeting(context.Background(), uuid.New())
	assert.True(t, meetings.IsNotFound(err))
}

func TestListMeetingsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	var created []meetings.Meeting
	for i, name := range []string{"t1", "t2", "t3"} {
		meeting := newMeeting(t, name)
		meeting.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.CreateMeeting(ctx, meeting))
		created = append(created, meeting)
	}

	resp, err := store.ListMeetings(ctx, 10, nil)
	require.NoError(t, err)

	require.Len(t, resp.Data, 3)
	assert.Equal(t, "t3", resp.Data[0].Name)
	assert.Equal(t, "t2", resp.Data[1].Name)
	assert.Equal(t, "t1", resp.Data[2].Name)
	assert.False(t, resp.HasNextPage)
	assert.Nil(t, resp.Cursor)
}

func TestListMeetingsEqualTimestampsAreDeterministic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	ids := make([]string, 0, 4)
	for i := range 4 {
		meeting := newMeeting(t, fmt.Sprintf("m%d", i))
		meeting.CreatedAt = at
		require.NoError(t, store.CreateMeeting(ctx, meeting))
		ids = append(ids, meeting.ID.String())
	}

	first, err := store.ListMeetings(ctx, 10, nil)
	require.NoError(t, err)
	second, err := store.ListMeetings(ctx, 10, nil)
	require.NoError(t, err)

	require.Len(t, first.Data, 4)
	assert.Equal(t, first.Data, second.Data)
	for i := 1; i < len(first.Data); i++ {
		assert.Less(t, first.Data[i].ID.String(), first.Data[i-1].ID.String())
	}
	assert.ElementsMatch(t, ids, []string{
		first.Data[0].ID.String(), first.Data[1].ID.String(),
		first.Data[2].ID.String(), first.Data[3].ID.String(),
	})
}

func TestListMeetingsPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	for i := range 5 {
		meeting := newMeeting(t, fmt.Sprintf("m%d", i))
		meeting.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateMeeting(ctx, meeting))
	}

	var names []string
	var cursor *string
	for {
		resp, err := store.ListMeetings(ctx, 2, cursor)
		require.NoError(t, err)
		for _, m := range resp.Data {
			names = append(names, m.Name)
		}
		if !resp.HasNextPage {
			break
		}
		require.NotNil(t, resp.Cursor)
		cursor = resp.Cursor
	}

	assert.Equal(t, []string{"m4", "m3", "m2", "m1", "m0"}, names)
}

func TestListMeetingsInvalidCursor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateMeeting(ctx, newMeeting(t, "a")))

	t.Run("not base64", func(t *testing.T) {
		bad := "!!not-base64!!"
		_, err := store.ListMeetings(ctx, 10, &bad)
		assert.True(t, meetings.HasReason(err, meetings.REASON_INVALID_CURSOR))
	})

	t.Run("names a meeting that is gone", func(t *testing.T) {
		gone := meetingIDToCursor(uuid.New())
		_, err := store.ListMeetings(ctx, 10, &gone)
		assert.True(t, meetings.HasReason(err, meetings.REASON_INVALID_CURSOR))
	})
}

func TestAddParticipantAppendsInCallOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meeting := newMeeting(t, "Board Session")
	require.NoError(t, store.CreateMeeting(ctx, meeting))

	first, err := meetings.RegisterAttendance(ctx, store, meeting.ID, meetings.ParticipantInput{
		FullName: "Ana Silva",
		CPF:      "123.456.789-00",
		Email:    "ana@x.com",
		Entity:   "Finance",
	})
	require.NoError(t, err)

	second, err := meetings.RegisterAttendance(ctx, store, meeting.ID, meetings.ParticipantInput{
		FullName: "Bruno Costa",
		CPF:      "987.654.321-00",
		Email:    "bruno@x.com",
		Entity:   "Legal",
	})
	require.NoError(t, err)

	got, err := store.GetMeeting(ctx, meeting.ID)
	require.NoError(t, err)

	require.Len(t, got.Participants, 2)
	assert.Equal(t, first.ID, got.Participants[0].ID)
	assert.Equal(t, second.ID, got.Participants[1].ID)
	assert.Equal(t, "Ana Silva", got.Participants[0].FullName)
	assert.Equal(t, "123.456.789-00", got.Participants[0].CPF)
	assert.Equal(t, "ana@x.com", got.Participants[0].Email)
	assert.Equal(t, "Finance", got.Participants[0].Entity)
	assert.NotEqual(t, uuid.Nil, got.Participants[0].ID)
	assert.False(t, got.Participants[0].Timestamp.Before(meeting.CreatedAt))
}

func TestAddParticipantMeetingNotFoundLeavesStoreUnchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meeting := newMeeting(t, "only one")
	require.NoError(t, store.CreateMeeting(ctx, meeting))

	err := store.AddParticipant(ctx, uuid.New(), meetings.Participant{
		ID:        uuid.New(),
		FullName:  "Ghost",
		CPF:       "111.222.333-44",
		Email:     "ghost@x.com",
		Entity:    "Nowhere",
		Timestamp: time.Now().UTC(),
	})
	assert.True(t, meetings.IsNotFound(err))

	resp, err := store.ListMeetings(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Empty(t, resp.Data[0].Participants)
}

func TestDeleteMeeting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("delete then get returns not found", func(t *testing.T) {
		meeting := newMeeting(t, "doomed")
		require.NoError(t, store.CreateMeeting(ctx, meeting))

		require.NoError(t, store.DeleteMeeting(ctx, meeting.ID))

		_, err := store.GetMeeting(ctx, meeting.ID)
		assert.True(t, meetings.IsNotFound(err))
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		survivor := newMeeting(t, "survivor")
		require.NoError(t, store.CreateMeeting(ctx, survivor))

		assert.NoError(t, store.DeleteMeeting(ctx, uuid.New()))

		resp, err := store.ListMeetings(ctx, 10, nil)
		require.NoError(t, err)
		assert.Len(t, resp.Data, 1)
	})
}

func TestCorruptPayload(t *testing.T) {
	ctx := context.Background()

	t.Run("unparseable json", func(t *testing.T) {
		store := NewStore(&memBucket{data: []byte("{not json"), ok: true})

		_, err := store.ListMeetings(ctx, 10, nil)
		assert.True(t, meetings.HasReason(err, meetings.REASON_CORRUPT_STORE))
	})

	t.Run("unsupported schema version", func(t *testing.T) {
		store := NewStore(&memBucket{data: []byte(`{"schemaVersion":99,"meetings":[]}`), ok: true})

		_, err := store.GetMeeting(ctx, uuid.New())
		assert.True(t, meetings.HasReason(err, meetings.REASON_CORRUPT_STORE))
	})

	t.Run("meeting id that is not a uuid", func(t *testing.T) {
		store := NewStore(&memBucket{
			data: []byte(`{"schemaVersion":1,"meetings":[{"id":"nope","name":"x","createdAt":"2026-03-10T09:00:00Z","participants":[]}]}`),
			ok:   true,
		})

		_, err := store.ListMeetings(ctx, 10, nil)
		assert.True(t, meetings.HasReason(err, meetings.REASON_CORRUPT_STORE))
	})
}

func TestLegacyBareArrayPayload(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	legacy := fmt.Sprintf(
		`[{"id":%q,"name":"old layout","createdAt":"2026-03-10T09:00:00Z","participants":[]}]`, id)
	bucket := &memBucket{data: []byte(legacy), ok: true}
	store := NewStore(bucket)

	got, err := store.GetMeeting(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "old layout", got.Name)

	// The next mutation rewrites the blob in the versioned layout.
	require.NoError(t, store.CreateMeeting(ctx, newMeeting(t, "new")))

	var p struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	require.NoError(t, json.Unmarshal(bucket.data, &p))
	assert.Equal(t, 1, p.SchemaVersion)

	resp, err := store.ListMeetings(ctx, 10, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestStorageUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("read failure", func(t *testing.T) {
		store := NewStore(&memBucket{getErr: errors.New("bucket offline")})

		_, err := store.ListMeetings(ctx, 10, nil)
		assert.True(t, meetings.HasReason(err, meetings.REASON_STORAGE_UNAVAILABLE))
	})

	t.Run("write failure", func(t *testing.T) {
		store := NewStore(&memBucket{putErr: errors.New("quota exceeded")})

		err := store.CreateMeeting(ctx, newMeeting(t, "a"))
		assert.True(t, meetings.HasReason(err, meetings.REASON_STORAGE_UNAVAILABLE))
	})
}
