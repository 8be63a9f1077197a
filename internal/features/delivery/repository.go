package delivery

import (
	"context"
	"time"

	"go-broker/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Status string

const (
	StatusQueued Status = "queued"
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Record is the log entry kept for every report e-mail
type Record struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID   string             `bson:"tenant_id" json:"tenant_id"`
	ScheduleID string             `bson:"schedule_id,omitempty" json:"schedule_id,omitempty"`
	To         []string           `bson:"to" json:"to"`
	Subject    string             `bson:"subject" json:"subject"`
	Attachment string             `bson:"attachment" json:"attachment"`
	Status     Status             `bson:"status" json:"status"`
	ErrorMsg   string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	SentAt     *time.Time         `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}

type DeliveryRepository interface {
	Create(ctx context.Context, rec *Record) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status, errorMsg string) error
}

type DeliveryRepositoryImpl struct {
	col *mongo.Collection
}

func NewDeliveryRepository(db *database.MongodbDB) DeliveryRepository {
	return &DeliveryRepositoryImpl{
		col: db.DB.Collection("report_deliveries"),
	}
}

func (r *DeliveryRepositoryImpl) Create(ctx context.Context, rec *Record) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

func (r *DeliveryRepositoryImpl) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status, errorMsg string) error {
	set := bson.M{
		"status":        status,
		"error_message": errorMsg,
	}
	if status == StatusSent {
		set["sent_at"] = time.Now().UTC()
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}
