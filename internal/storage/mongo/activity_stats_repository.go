package mongo

import (
	"context"
	"time"

	"github.com/shortenhub/shorten/internal/infrastructure/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityStatsRepository keeps daily per-provider counters of link events.
// The events consumer feeds it; it is not on any request path.
type ActivityStatsRepository struct {
	coll *mongo.Collection
}

type activityDailyDoc struct {
	Provider string `bson:"provider"`
	Type     string `bson:"type"`
	Date     string `bson:"date"` // YYYY-MM-DD (UTC)
	Count    int64  `bson:"count"`
}

// DailyActivity is one aggregated row for reporting.
type DailyActivity struct {
	Provider string `json:"provider"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Count    int64  `json:"count"`
}

func NewActivityStatsRepository(m *db.Mongo) (*ActivityStatsRepository, error) {
	repo := &ActivityStatsRepository{coll: m.Collection("link_activity_daily")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "provider", Value: 1},
			{Key: "type", Value: 1},
			{Key: "date", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_provider_type_date"),
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *ActivityStatsRepository) IncDaily(ctx context.Context, provider, eventType string, at time.Time) error {
	date := dateString(at)
	if provider == "" {
		provider = "unknown"
	}

	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"provider": provider, "type": eventType, "date": date},
		bson.M{
			"$inc": bson.M{"count": 1},
			"$setOnInsert": bson.M{
				"provider": provider,
				"type":     eventType,
				"date":     date,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *ActivityStatsRepository) GetDaily(ctx context.Context, from, to time.Time) ([]DailyActivity, error) {
	cur, err := r.coll.Find(
		ctx,
		bson.M{"date": bson.M{
			"$gte": dateString(from),
			"$lte": dateString(to),
		}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "provider", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []DailyActivity
	for cur.Next(ctx) {
		var doc activityDailyDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, DailyActivity{
			Provider: doc.Provider,
			Type:     doc.Type,
			Date:     doc.Date,
			Count:    doc.Count,
		})
	}
	return out, cur.Err()
}

func dateString(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
