package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/presenca-digital/lista-presenca/meetings"
)

var _ meetings.Repository = &DB{}

// Fixed-width so lexicographic key order matches chronological order.
// RFC3339Nano trims trailing zeros and would ruin that.
const sortableTimeLayout = "2006-01-02T15:04:05.000000000Z"

type meetingDynamo struct {
	PK        string
	SK        string
	GSI1PK    string
	GSI1SK    string
	ID        string
	Name      string
	CreatedAt time.Time
}

type participantDynamo struct {
	PK        string
	SK        string
	ID        string
	MeetingID string
	FullName  string
	CPF       string
	Email     string
	Entity    string
	Timestamp time.Time
}

const (
	meetingEntityName     = "MEETING"
	meetingMetaSK         = "META"
	participantEntityName = "PARTICIPANT"
)

func meetingPK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", meetingEntityName, id)
}

// participantSK orders the roster by registration time within the meeting
// partition; the id suffix keeps same-instant registrations distinct.
func participantSK(timestamp time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s#%s#%s", participantEntityName, timestamp.UTC().Format(sortableTimeLayout), id)
}

func newMeetingDynamo(meeting meetings.Meeting) meetingDynamo {
	return meetingDynamo{
		PK:        meetingPK(meeting.ID),
		SK:        meetingMetaSK,
		GSI1PK:    meetingEntityName,
		GSI1SK:    fmt.Sprintf("%s#%s#%s", meetingEntityName, meeting.CreatedAt.UTC().Format(sortableTimeLayout), meeting.ID),
		ID:        meeting.ID.String(),
		Name:      meeting.Name,
		CreatedAt: meeting.CreatedAt,
	}
}

func newParticipantDynamo(meetingID uuid.UUID, p meetings.Participant) participantDynamo {
	return participantDynamo{
		PK:        meetingPK(meetingID),
		SK:        participantSK(p.Timestamp, p.ID),
		ID:        p.ID.String(),
		MeetingID: meetingID.String(),
		FullName:  p.FullName,
		CPF:       p.CPF,
		Email:     p.Email,
		Entity:    p.Entity,
		Timestamp: p.Timestamp,
	}
}

func participantFromDynamo(p participantDynamo) (meetings.Participant, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return meetings.Participant{}, fmt.Errorf("participant id %q is not a uuid: %w", p.ID, err)
	}

	return meetings.Participant{
		ID:        id,
		FullName:  p.FullName,
		CPF:       p.CPF,
		Email:     p.Email,
		Entity:    p.Entity,
		Timestamp: p.Timestamp,
	}, nil
}

func (d *DB) CreateMeeting(ctx context.Context, meeting meetings.Meeting) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	item, err := attributevalue.MarshalMap(newMeetingDynamo(meeting))
	if err != nil {
		return meetings.NewFailedToTranslateToDBModelError("Failed to convert Meeting to meetingDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().WithCondition(newEntityConditional()))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condCheckFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailedErr) {
			return meetings.NewMeetingAlreadyExistsError(fmt.Sprintf("Meeting with ID %q already exists", meeting.ID), err)
		}
		return meetings.NewFailedToWriteError("Failed PutItem call", err)
	}

	for _, p := range meeting.Participants {
		if err := d.AddParticipant(ctx, meeting.ID, p); err != nil {
			return err
		}
	}

	return nil
}

func (d *DB) GetMeeting(ctx context.Context, id uuid.UUID) (meetings.Meeting, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	items, err := d.queryMeetingPartition(ctx, id)
	if err != nil {
		return meetings.Meeting{}, err
	}
	if len(items) == 0 {
		return meetings.Meeting{}, meetings.NewMeetingDoesNotExistError(fmt.Sprintf("Meeting with ID %q not found", id), nil)
	}

	return assembleMeeting(id, items)
}

// queryMeetingPartition fetches every item under the meeting's PK in
// ascending key order: the META item first, then participants by
// registration time.
func (d *DB) queryMeetingPartition(ctx context.Context, id uuid.UUID) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(meetingPK(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(d.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, meetings.NewFailedToFetchError(fmt.Sprintf("Failed to fetch meeting with ID %q", id), err)
		}

		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return items, nil
}

func assembleMeeting(id uuid.UUID, items []map[string]types.AttributeValue) (meetings.Meeting, error) {
	var meta *meetingDynamo
	participants := []meetings.Participant{}

	for _, item := range items {
		skAttr, ok := item["SK"].(*types.AttributeValueMemberS)
		if !ok {
			return meetings.Meeting{}, meetings.NewCorruptStoreError("Item without a string SK in meeting partition", nil)
		}

		if skAttr.Value == meetingMetaSK {
			var m meetingDynamo
			if err := attributevalue.UnmarshalMap(item, &m); err != nil {
				return meetings.Meeting{}, meetings.NewCorruptStoreError(fmt.Sprintf("Meeting %q is not decodable", id), err)
			}
			meta = &m
			continue
		}

		var p participantDynamo
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return meetings.Meeting{}, meetings.NewCorruptStoreError(fmt.Sprintf("Participant in meeting %q is not decodable", id), err)
		}
		participant, err := participantFromDynamo(p)
		if err != nil {
			return meetings.Meeting{}, meetings.NewCorruptStoreError(fmt.Sprintf("Participant in meeting %q is not decodable", id), err)
		}
		participants = append(participants, participant)
	}

	if meta == nil {
		// Participant items without their META item: the meeting was
		// deleted out from under a concurrent append.
		return meetings.Meeting{}, meetings.NewMeetingDoesNotExistError(fmt.Sprintf("Meeting with ID %q not found", id), nil)
	}

	metaID, err := uuid.Parse(meta.ID)
	if err != nil || metaID != id {
		return meetings.Meeting{}, meetings.NewCorruptStoreError(fmt.Sprintf("Meeting %q has mismatched id %q", id, meta.ID), err)
	}

	return meetings.Meeting{
		ID:           metaID,
		Name:         meta.Name,
		CreatedAt:    meta.CreatedAt,
		Participants: participants,
	}, nil
}

func (d *DB) ListMeetings(ctx context.Context, limit int32, cursor *string) (meetings.ListMeetingsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(meetingEntityName)).
		And(expression.Key("GSI1SK").BeginsWith(meetingEntityName))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = cursorToLastEval(*cursor)
		if err != nil {
			return meetings.ListMeetingsResponse{}, meetings.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		IndexName:                 aws.String(gsi1),
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Newest meeting first
		ScanIndexForward: aws.Bool(false),
		// Fetch 1 more than limit to check if there is another page
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		return meetings.ListMeetingsResponse{}, meetings.NewFailedToFetchError("Failed to fetch meetings from dynamo", err)
	}

	var metaItems []meetingDynamo
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &metaItems); err != nil {
		return meetings.ListMeetingsResponse{}, meetings.NewCorruptStoreError("Meeting index items are not decodable", err)
	}

	hasNextPage := len(metaItems) > int(limit)
	pageMeta := metaItems[:min(int(limit), len(metaItems))]

	data := make([]meetings.Meeting, 0, len(pageMeta))
	for _, meta := range pageMeta {
		id, err := uuid.Parse(meta.ID)
		if err != nil {
			return meetings.ListMeetingsResponse{}, meetings.NewCorruptStoreError(fmt.Sprintf("Meeting index item has bad id %q", meta.ID), err)
		}
		// The index carries only meeting metadata; rosters are
		// assembled per partition.
		meeting, err := d.GetMeeting(ctx, id)
		if err != nil {
			if meetings.IsNotFound(err) {
				// Deleted between the index read and the
				// partition read; skip it.
				continue
			}
			return meetings.ListMeetingsResponse{}, err
		}
		data = append(data, meeting)
	}

	var newCursor *string
	if hasNextPage && len(result.Items) > 0 && len(result.LastEvaluatedKey) > 0 {
		// Can't use LastEvalKey directly because we grabbed an extra
		// item to check for the next page
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := getKeyFromItem(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := lastEvalKeyToCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	return meetings.ListMeetingsResponse{
		Data:        data,
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}

func (d *DB) AddParticipant(ctx context.Context, meetingID uuid.UUID, participant meetings.Participant) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	// The append itself is a single new-item write; only the existence
	// check reads the meeting.
	if err := d.meetingExists(ctx, meetingID); err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(newParticipantDynamo(meetingID, participant))
	if err != nil {
		return meetings.NewFailedToTranslateToDBModelError("Failed to convert Participant to participantDynamo", err)
	}

	expr := exprMustBuild(expression.NewBuilder().WithCondition(newEntityConditional()))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return meetings.NewFailedToWriteError("Failed PutItem call", err)
	}

	return nil
}

func (d *DB) meetingExists(ctx context.Context, id uuid.UUID) error {
	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: meetingPK(id)},
			"SK": &types.AttributeValueMemberS{Value: meetingMetaSK},
		},
	})
	if err != nil {
		return meetings.NewFailedToFetchError(fmt.Sprintf("Failed to fetch meeting with ID %q", id), err)
	}
	if len(resp.Item) == 0 {
		return meetings.NewMeetingDoesNotExistError(fmt.Sprintf("Meeting with ID %q not found", id), nil)
	}
	return nil
}

func (d *DB) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	items, err := d.queryMeetingPartition(ctx, id)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		// Deleting an unknown meeting is a silent no-op.
		return nil
	}

	// Meeting and roster go together, in batches of the BatchWriteItem
	// maximum.
	const batchMax = 25
	for start := 0; start < len(items); start += batchMax {
		end := min(start+batchMax, len(items))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": item["PK"],
						"SK": item["SK"],
					},
				},
			})
		}

		unprocessed := map[string][]types.WriteRequest{d.tableName: requests}
		for len(unprocessed[d.tableName]) > 0 {
			resp, err := d.dynamoClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: unprocessed,
			})
			if err != nil {
				return meetings.NewFailedToWriteError(fmt.Sprintf("Failed to delete meeting %q", id), err)
			}
			unprocessed = resp.UnprocessedItems
		}
	}

	return nil
}
