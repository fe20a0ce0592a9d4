package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainreports "healthtrack/internal/domain/reports"
)

const reportSequence = "reports"

// ReportRepository stores reports with a numeric _id drawn from a counters
// collection, so IDs keep the insertion order the SQL stores give.
type ReportRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	col := db.Collection("reports")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "_id", Value: 1}},
	})
	return &ReportRepository{col: col, counters: db.Collection("counters")}
}

func (r *ReportRepository) Insert(ctx context.Context, report *domainreports.Report) error {
	if report == nil {
		return domainreports.ErrIncomplete
	}
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	doc := newReportDocument(report)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: insert report: %w", err)
	}
	report.ID = domainreports.ID(id)
	return nil
}

func (r *ReportRepository) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": reportSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("mongo: next report id: %w", err)
	}
	return counter.Seq, nil
}

func (r *ReportRepository) List(ctx context.Context, owner domainreports.Owner) ([]*domainreports.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, scopeFilter(owner), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list reports: %w", err)
	}
	defer cur.Close(ctx)
	var out []*domainreports.Report
	for cur.Next(ctx) {
		var doc reportDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode report: %w", err)
		}
		out = append(out, doc.toReport())
	}
	return out, cur.Err()
}

func (r *ReportRepository) Delete(ctx context.Context, id domainreports.ID, owner domainreports.Owner) error {
	filter := scopeFilter(owner)
	filter["_id"] = int64(id)
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongo: delete report: %w", err)
	}
	if res.DeletedCount == 0 {
		return domainreports.ErrNotFound
	}
	return nil
}

func (r *ReportRepository) DeleteAll(ctx context.Context, owner domainreports.Owner) (int64, error) {
	res, err := r.col.DeleteMany(ctx, scopeFilter(owner))
	if err != nil {
		return 0, fmt.Errorf("mongo: clear reports: %w", err)
	}
	return res.DeletedCount, nil
}

func scopeFilter(owner domainreports.Owner) bson.M {
	if owner.IsGuest() {
		return bson.M{}
	}
	return bson.M{"owner": string(owner)}
}

type reportDocument struct {
	ID           int64     `bson:"_id"`
	CreatedAt    time.Time `bson:"created_at"`
	Hemoglobin   float64   `bson:"hemoglobin"`
	FastingSugar float64   `bson:"fasting_sugar"`
	Systolic     int       `bson:"bp_systolic"`
	Diastolic    int       `bson:"bp_diastolic"`
	Cholesterol  float64   `bson:"cholesterol"`
	HeightCM     float64   `bson:"height_cm"`
	WeightKG     float64   `bson:"weight_kg"`
	BMI          float64   `bson:"bmi"`
	Owner        string    `bson:"owner"`
}

func newReportDocument(r *domainreports.Report) reportDocument {
	return reportDocument{
		ID:           int64(r.ID),
		CreatedAt:    r.CreatedAt.UTC(),
		Hemoglobin:   r.Hemoglobin,
		FastingSugar: r.FastingSugar,
		Systolic:     r.Systolic,
		Diastolic:    r.Diastolic,
		Cholesterol:  r.Cholesterol,
		HeightCM:     r.HeightCM,
		WeightKG:     r.WeightKG,
		BMI:          r.BMI,
		Owner:        string(r.Owner),
	}
}

func (d reportDocument) toReport() *domainreports.Report {
	return &domainreports.Report{
		ID:           domainreports.ID(d.ID),
		CreatedAt:    d.CreatedAt.UTC(),
		Hemoglobin:   d.Hemoglobin,
		FastingSugar: d.FastingSugar,
		Systolic:     d.Systolic,
		Diastolic:    d.Diastolic,
		Cholesterol:  d.Cholesterol,
		HeightCM:     d.HeightCM,
		WeightKG:     d.WeightKG,
		BMI:          d.BMI,
		Owner:        domainreports.Owner(d.Owner),
	}
}

var _ domainreports.Repository = (*ReportRepository)(nil)
