package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-broker/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const interruptedError = "interrupted by restart"

// Completion is what a finished run writes back onto its schedule
type Completion struct {
	Outcome    Outcome
	Error      string
	FinishedAt time.Time
}

type ScheduleRepository interface {
	Create(ctx context.Context, s *ReportSchedule) error
	GetByID(ctx context.Context, id string) (*ReportSchedule, error)
	List(ctx context.Context, tenantID, reportID string) ([]ReportSchedule, error)
	UpdateSettings(ctx context.Context, s *ReportSchedule) error
	SetStatus(ctx context.Context, id string, from, to Status, nextDueAt *time.Time) error
	Delete(ctx context.Context, id string) error
	DisableForReport(ctx context.Context, tenantID, reportID string) (int64, error)

	// Sweep operations
	ListDue(ctx context.Context, now time.Time) ([]ReportSchedule, error)
	ClaimDue(ctx context.Context, id string, dueAt time.Time) (bool, error)
	ClaimManual(ctx context.Context, id string) (bool, error)
	AdvanceDue(ctx context.Context, id string, from time.Time, to *time.Time) (bool, error)
	Complete(ctx context.Context, id string, c Completion) error
	ListInterrupted(ctx context.Context) ([]ReportSchedule, error)
	ResetInterrupted(ctx context.Context, at time.Time) (int64, error)

	// Run log operations
	CreateRun(ctx context.Context, run *ScheduleRun) error
	UpdateRun(ctx context.Context, run *ScheduleRun) error
	ListRuns(ctx context.Context, scheduleID string, limit int) ([]ScheduleRun, error)

	EnsureIndexes(ctx context.Context) error
}

type ScheduleRepositoryImpl struct {
	collection    *mongo.Collection
	runCollection *mongo.Collection
}

func NewScheduleRepository(db *database.MongodbDB) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		collection:    db.DB.Collection("report_schedules"),
		runCollection: db.DB.Collection("report_schedule_runs"),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return oid, notFound(id)
	}
	return oid, nil
}

func (r *ScheduleRepositoryImpl) Create(ctx context.Context, s *ReportSchedule) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

func (r *ScheduleRepositoryImpl) GetByID(ctx context.Context, id string) (*ReportSchedule, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var s ReportSchedule
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepositoryImpl) List(ctx context.Context, tenantID, reportID string) ([]ReportSchedule, error) {
	filter := bson.M{"tenant_id": tenantID}
	if reportID != "" {
		filter["report_id"] = reportID
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *ScheduleRepositoryImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]ReportSchedule, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schedules []ReportSchedule
	if err = cursor.All(ctx, &schedules); err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []ReportSchedule{}
	}
	return schedules, nil
}

// UpdateSettings writes only user-editable fields so a concurrent run keeps its claim
func (r *ScheduleRepositoryImpl) UpdateSettings(ctx context.Context, s *ReportSchedule) error {
	update := bson.M{
		"$set": bson.M{
			"name":                  s.Name,
			"frequency":             s.Frequency,
			"recurrence_expression": s.RecurrenceExpression,
			"recipients":            s.Recipients,
			"output_format":         s.OutputFormat,
			"anchor_at":             s.AnchorAt,
			"next_due_at":           s.NextDueAt,
			"warnings":              s.Warnings,
			"updated_at":            s.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": s.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(s.ID.Hex())
	}
	return nil
}

// SetStatus moves the schedule from one status to another. The write only lands
// while the stored status is still from, so a concurrent disable always wins.
func (r *ScheduleRepositoryImpl) SetStatus(ctx context.Context, id string, from, to Status, nextDueAt *time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"status": to, "next_due_at": nextDueAt, "updated_at": time.Now().UTC()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid, "status": from}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return invalidTransition(fmt.Errorf("%w: schedule is no longer %s", ErrInvalidTransition, from))
	}
	return nil
}

func (r *ScheduleRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *ScheduleRepositoryImpl) DisableForReport(ctx context.Context, tenantID, reportID string) (int64, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"report_id": reportID,
		"status":    bson.M{"$ne": StatusDisabled},
	}
	update := bson.M{"$set": bson.M{"status": StatusDisabled, "updated_at": time.Now().UTC()}}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *ScheduleRepositoryImpl) ListDue(ctx context.Context, now time.Time) ([]ReportSchedule, error) {
	filter := bson.M{
		"status":      StatusActive,
		"next_due_at": bson.M{"$ne": nil, "$lte": now},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "next_due_at", Value: 1}}))
}

// ClaimDue marks the schedule running only if it is still active, not already running,
// and still due at dueAt. A false result means another dispatch owns this due time.
func (r *ScheduleRepositoryImpl) ClaimDue(ctx context.Context, id string, dueAt time.Time) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{
		"_id":              oid,
		"status":           StatusActive,
		"next_due_at":      dueAt,
		"last_run_outcome": bson.M{"$ne": OutcomeRunning},
	}
	update := bson.M{"$set": bson.M{"last_run_outcome": OutcomeRunning, "running_due_at": dueAt}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *ScheduleRepositoryImpl) ClaimManual(ctx context.Context, id string) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{
		"_id":              oid,
		"status":           bson.M{"$ne": StatusDisabled},
		"last_run_outcome": bson.M{"$ne": OutcomeRunning},
	}
	update := bson.M{
		"$set":   bson.M{"last_run_outcome": OutcomeRunning},
		"$unset": bson.M{"running_due_at": ""},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// AdvanceDue moves next_due_at from one due time to the next. It is a no-op when
// the schedule was edited meanwhile.
func (r *ScheduleRepositoryImpl) AdvanceDue(ctx context.Context, id string, from time.Time, to *time.Time) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "next_due_at": from},
		bson.M{"$set": bson.M{"next_due_at": to}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *ScheduleRepositoryImpl) Complete(ctx context.Context, id string, c Completion) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"last_run_at":      c.FinishedAt,
			"last_run_outcome": c.Outcome,
			"last_error":       c.Error,
		},
		"$unset": bson.M{"running_due_at": ""},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

// ListInterrupted returns schedules still claimed by a run. Only meaningful
// before the runner starts sweeping.
func (r *ScheduleRepositoryImpl) ListInterrupted(ctx context.Context) ([]ReportSchedule, error) {
	return r.find(ctx, bson.M{"last_run_outcome": OutcomeRunning}, options.Find())
}

// ResetInterrupted fails runs left marked running by a previous process, on the
// schedules and in the run log.
func (r *ScheduleRepositoryImpl) ResetInterrupted(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"last_run_outcome": OutcomeRunning},
		bson.M{
			"$set":   bson.M{"last_run_outcome": OutcomeFailed, "last_error": interruptedError, "last_run_at": at},
			"$unset": bson.M{"running_due_at": ""},
		},
	)
	if err != nil {
		return 0, err
	}
	_, err = r.runCollection.UpdateMany(ctx,
		bson.M{"outcome": OutcomeRunning},
		bson.M{"$set": bson.M{"outcome": OutcomeFailed, "error": interruptedError, "finished_at": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *ScheduleRepositoryImpl) CreateRun(ctx context.Context, run *ScheduleRun) error {
	run.ID = primitive.NewObjectID()
	_, err := r.runCollection.InsertOne(ctx, run)
	return err
}

func (r *ScheduleRepositoryImpl) UpdateRun(ctx context.Context, run *ScheduleRun) error {
	_, err := r.runCollection.UpdateOne(ctx, bson.M{"_id": run.ID}, bson.M{"$set": run})
	return err
}

func (r *ScheduleRepositoryImpl) ListRuns(ctx context.Context, scheduleID string, limit int) ([]ScheduleRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.runCollection.Find(ctx, bson.M{"schedule_id": scheduleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []ScheduleRun
	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []ScheduleRun{}
	}
	return runs, nil
}

func (r *ScheduleRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "next_due_at", Value: 1}}},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "report_id", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = r.runCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "schedule_id", Value: 1}, {Key: "started_at", Value: -1}},
	})
	return err
}
