package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookingbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by the "bookings" collection.
func NewMongoBookingRepo(client *mongo.Client, database string) BookingRepository {
	return &mongoBookingRepo{
		coll: client.Database(database).Collection("bookings"),
	}
}

// EnsureIndexes creates the unique index on the booking id.
func EnsureIndexes(ctx context.Context, client *mongo.Client, database string) error {
	coll := client.Database(database).Collection("bookings")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create booking indexes: %w", err)
	}
	return nil
}

// Save inserts a new booking and returns its ID.
func (r *mongoBookingRepo) Save(ctx context.Context, booking models.Booking) (string, error) {
	if booking.ID == "" {
		booking.ID = NewBookingID()
	}
	if booking.Status == "" {
		booking.Status = models.PaymentPending
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return "", fmt.Errorf("insert booking: %w", err)
	}
	return booking.ID, nil
}

// GetByID returns a booking by its ID.
func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &booking, nil
}

// Cancel marks a booking as cancelled.
func (r *mongoBookingRepo) Cancel(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": models.StatusCancelled, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}
