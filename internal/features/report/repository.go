package report

import (
	"context"
	"errors"

	"go-broker/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository interface {
	Create(ctx context.Context, report *SavedReport) error
	Get(ctx context.Context, id string) (*SavedReport, error)
	// List returns the tenant's reports; a non-empty userID limits it to that user's
	// own reports plus public ones.
	List(ctx context.Context, tenantID, userID string) ([]SavedReport, error)
	Replace(ctx context.Context, report *SavedReport) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportRepository(db *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: db.DB.Collection("reports"),
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *SavedReport) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, report)
	return err
}

func (r *ReportRepositoryImpl) Get(ctx context.Context, id string) (*SavedReport, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound(id)
	}
	var report SavedReport
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepositoryImpl) List(ctx context.Context, tenantID, userID string) ([]SavedReport, error) {
	filter := bson.M{"tenant_id": tenantID}
	if userID != "" {
		filter["$or"] = bson.A{
			bson.M{"created_by": userID},
			bson.M{"is_public": true},
		}
	}
	cursor, err := r.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []SavedReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []SavedReport{}
	}
	return reports, nil
}

// Replace swaps the whole definition in one write; there are no partial column edits
func (r *ReportRepositoryImpl) Replace(ctx context.Context, report *SavedReport) error {
	update := bson.M{
		"$set": bson.M{
			"name":        report.Name,
			"description": report.Description,
			"definition":  report.Definition,
			"is_public":   report.IsPublic,
			"updated_at":  report.UpdatedAt,
			"updated_by":  report.UpdatedBy,
		},
	}
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": report.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(report.ID.Hex())
	}
	return nil
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound(id)
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (r *ReportRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "is_public", Value: 1}}},
	})
	return err
}
