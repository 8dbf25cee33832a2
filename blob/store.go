package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
	"github.com/presenca-digital/lista-presenca/slices"
)

// schemaVersion is stamped into every written payload. Early blobs were a
// bare JSON array with no version field; those are read as version 0 and
// rewritten in the current layout on the next mutation.
const schemaVersion = 1

var _ meetings.Repository = &Store{}

type Store struct {
	bucket Bucket

	// Serializes read-modify-write cycles within this process. See the
	// package comment for what this does not protect against.
	mu sync.Mutex
}

func NewStore(bucket Bucket) *Store {
	return &Store{bucket: bucket}
}

type payloadBlob struct {
	SchemaVersion int           `json:"schemaVersion"`
	Meetings      []meetingBlob `json:"meetings"`
}

type meetingBlob struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	CreatedAt    time.Time         `json:"createdAt"`
	Participants []participantBlob `json:"participants"`
}

type participantBlob struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	CPF       string    `json:"cpf"`
	Email     string    `json:"email"`
	Entity    string    `json:"entity"`
	Timestamp time.Time `json:"timestamp"`
}

func meetingToBlob(m meetings.Meeting) meetingBlob {
	return meetingBlob{
		ID:        m.ID.String(),
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		Participants: slices.Map(m.Participants, func(p meetings.Participant) participantBlob {
			return participantBlob{
				ID:        p.ID.String(),
				FullName:  p.FullName,
				CPF:       p.CPF,
				Email:     p.Email,
				Entity:    p.Entity,
				Timestamp: p.Timestamp,
			}
		}),
	}
}

func meetingFromBlob(m meetingBlob) (meetings.Meeting, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return meetings.Meeting{}, fmt.Errorf("meeting id %q is not a uuid: %w", m.ID, err)
	}

	participants := make([]meetings.Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		pid, err := uuid.Parse(p.ID)
		if err != nil {
			return meetings.Meeting{}, fmt.Errorf("participant id %q is not a uuid: %w", p.ID, err)
		}
		participants = append(participants, meetings.Participant{
			ID:        pid,
			FullName:  p.FullName,
			CPF:       p.CPF,
			Email:     p.Email,
			Entity:    p.Entity,
			Timestamp: p.Timestamp,
		})
	}

	return meetings.Meeting{
		ID:           id,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt,
		Participants: participants,
	}, nil
}

// load reads and decodes the whole collection. A missing blob is an empty
// store. Undecodable payloads come back as CORRUPT_STORE, never a panic.
func (s *Store) load(ctx context.Context) ([]meetingBlob, error) {
	data, ok, err := s.bucket.Get(ctx)
	if err != nil {
		return nil, meetings.NewStorageUnavailableError("Failed to read the roster blob", err)
	}
	if !ok {
		return []meetingBlob{}, nil
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		// Version 0: a bare array with no schema version.
		var legacy []meetingBlob
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, meetings.NewCorruptStoreError("Roster blob is not a decodable legacy array", err)
		}
		return legacy, nil
	}

	var p payloadBlob
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, meetings.NewCorruptStoreError("Roster blob is not decodable", err)
	}
	if p.SchemaVersion < 1 || p.SchemaVersion > schemaVersion {
		return nil, meetings.NewCorruptStoreError(fmt.Sprintf("Unsupported roster schema version %d", p.SchemaVersion), nil)
	}
	if p.Meetings == nil {
		return []meetingBlob{}, nil
	}
	return p.Meetings, nil
}

func (s *Store) save(ctx context.Context, all []meetingBlob) error {
	data, err := json.Marshal(payloadBlob{
		SchemaVersion: schemaVersion,
		Meetings:      all,
	})
	if err != nil {
		return meetings.NewFailedToTranslateToDBModelError("Failed to encode the roster blob", err)
	}

	if err := s.bucket.Put(ctx, data); err != nil {
		return meetings.NewStorageUnavailableError("Failed to write the roster blob", err)
	}
	return nil
}

func (s *Store) CreateMeeting(ctx context.Context, meeting meetings.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}

	id := meeting.ID.String()
	for _, m := range all {
		if m.ID == id {
			return meetings.NewMeetingAlreadyExistsError(fmt.Sprintf("Meeting with ID %q already exists", id), nil)
		}
	}

	return s.save(ctx, append(all, meetingToBlob(meeting)))
}

func (s *Store) GetMeeting(ctx context.Context, id uuid.UUID) (meetings.Meeting, error) {
	all, err := s.load(ctx)
	if err != nil {
		return meetings.Meeting{}, err
	}

	want := id.String()
	for _, m := range all {
		if m.ID == want {
			meeting, err := meetingFromBlob(m)
			if err != nil {
				return meetings.Meeting{}, meetings.NewCorruptStoreError(fmt.Sprintf("Meeting %q is not decodable", want), err)
			}
			return meeting, nil
		}
	}

	return meetings.Meeting{}, meetings.NewMeetingDoesNotExistError(fmt.Sprintf("Meeting with ID %q not found", want), nil)
}

func (s *Store) ListMeetings(ctx context.Context, limit int32, cursor *string) (meetings.ListMeetingsResponse, error) {
	all, err := s.load(ctx)
	if err != nil {
		return meetings.ListMeetingsResponse{}, err
	}

	// Newest first. Creation timestamps can collide within the encoding
	// resolution, so ties fall back to ID ordering; descending matches
	// the composite-key scan order of the dynamo store.
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := 0
	if cursor != nil {
		afterID, err := cursorToMeetingID(*cursor)
		if err != nil {
			return meetings.ListMeetingsResponse{}, meetings.NewInvalidCursorError("Invalid cursor", err)
		}
		start = -1
		for i, m := range all {
			if m.ID == afterID.String() {
				start = i + 1
				break
			}
		}
		if start == -1 {
			return meetings.ListMeetingsResponse{}, meetings.NewInvalidCursorError(fmt.Sprintf("Cursor names unknown meeting %q", afterID), nil)
		}
	}

	end := min(start+int(limit), len(all))
	page := make([]meetings.Meeting, 0, end-start)
	for _, m := range all[start:end] {
		meeting, err := meetingFromBlob(m)
		if err != nil {
			return meetings.ListMeetingsResponse{}, meetings.NewCorruptStoreError(fmt.Sprintf("Meeting %q is not decodable", m.ID), err)
		}
		page = append(page, meeting)
	}

	hasNextPage := end < len(all)
	var newCursor *string
	if hasNextPage && len(page) > 0 {
		c := meetingIDToCursor(page[len(page)-1].ID)
		newCursor = &c
	}

	return meetings.ListMeetingsResponse{
		Data:        page,
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}

func (s *Store) AddParticipant(ctx context.Context, meetingID uuid.UUID, participant meetings.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}

	want := meetingID.String()
	idx := -1
	for i, m := range all {
		if m.ID == want {
			idx = i
			break
		}
	}
	if idx == -1 {
		return meetings.NewMeetingDoesNotExistError(fmt.Sprintf("Meeting with ID %q not found", want), nil)
	}

	all[idx].Participants = append(all[idx].Participants, participantBlob{
		ID:        participant.ID.String(),
		FullName:  participant.FullName,
		CPF:       participant.CPF,
		Email:     participant.Email,
		Entity:    participant.Entity,
		Timestamp: participant.Timestamp,
	})

	return s.save(ctx, all)
}

func (s *Store) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}

	want := id.String()
	kept := all[:0:0]
	for _, m := range all {
		if m.ID != want {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(all) {
		// Deleting an unknown meeting is a silent no-op.
		return nil
	}

	return s.save(ctx, kept)
}
