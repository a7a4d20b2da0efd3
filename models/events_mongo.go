package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTimeout = 5 * time.Second

type mongoEventRepo struct {
	col *mongo.Collection
}

func NewMongoEventRepository(col *mongo.Collection) EventRepository {
	return &mongoEventRepo{col: col}
}

var byStartDate = bson.D{{Key: "start_date", Value: 1}}

// ListUpcoming returns events in start order; limit <= 0 means all of them.
func (r *mongoEventRepo) ListUpcoming(ctx context.Context, limit int) ([]Event, error) {
	opts := options.Find().SetSort(byStartDate)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoEventRepo) ListByOrganiser(ctx context.Context, organiserID string) ([]Event, error) {
	return r.find(ctx, bson.M{"organiser_id": organiserID}, options.Find().SetSort(byStartDate))
}

func (r *mongoEventRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cur.Close(ctx)

	out := []Event{}
	for cur.Next(ctx) {
		var e Event
		if err := cur.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

func (r *mongoEventRepo) GetByID(ctx context.Context, id string) (Event, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var e Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrNotFound
		}
		return Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	return e, nil
}

func (r *mongoEventRepo) Create(ctx context.Context, e *Event) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *mongoEventRepo) Update(ctx context.Context, e *Event) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	// _id is immutable, so the update document lists the fields explicitly
	set := bson.M{
		"title":         e.Title,
		"description":   e.Description,
		"event_image":   e.EventImage,
		"start_date":    e.StartDate,
		"end_date":      e.EndDate,
		"location":      e.Location,
		"max_attendees": e.MaxAttendees,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update event %s: %w", e.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
