package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/shortenhub/shorten/internal/infrastructure/db"
	"github.com/shortenhub/shorten/internal/processing/links"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryRepository is the account-backed History store. Rows are scoped to
// the owning user id; the server assigns the canonical id and timestamp on
// insert.
type HistoryRepository struct {
	coll *mongo.Collection
}

type linkDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	OriginalURL string             `bson:"originalUrl"`
	ShortURL    string             `bson:"shortUrl"`
	Alias       string             `bson:"alias"`
	Summary     string             `bson:"summary,omitempty"`
	Provider    string             `bson:"provider"`
	CreatedAt   time.Time          `bson:"createdAt"`
	ExpiresAt   *time.Time         `bson:"expiresAt,omitempty"`
}

func NewHistoryRepository(m *db.Mongo) (*HistoryRepository, error) {
	repo := &HistoryRepository{coll: m.Collection("shortened_links")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt_desc"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// List returns the account's history, ordered by creation time descending.
func (r *HistoryRepository) List(ctx context.Context, identity links.Identity) ([]links.ShortenedLink, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": string(identity)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []links.ShortenedLink{}
	for cursor.Next(ctx) {
		var doc linkDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, mapLinkDoc(doc))
	}
	return out, cursor.Err()
}

// Insert persists one row for the account and returns the canonical record
// with the server-assigned id and timestamp. Callers reconcile their
// optimistic shape with this result before prepending it to in-memory
// history.
func (r *HistoryRepository) Insert(ctx context.Context, identity links.Identity, link links.ShortenedLink) (links.ShortenedLink, error) {
	doc := linkDoc{
		UserID:      string(identity),
		OriginalURL: link.OriginalURL,
		ShortURL:    link.ShortURL,
		Alias:       link.Alias,
		Summary:     link.Summary,
		Provider:    string(link.Provider),
		CreatedAt:   time.Now().UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return links.ShortenedLink{}, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return links.ShortenedLink{}, errors.New("unexpected inserted id type")
	}
	doc.ID = id
	return mapLinkDoc(doc), nil
}

// Delete removes one row by id, scoped to the owning account. Missing rows
// yield links.ErrNotFound, which callers treat as recoverable.
func (r *HistoryRepository) Delete(ctx context.Context, identity links.Identity, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return links.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "userId": string(identity)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return links.ErrNotFound
	}
	return nil
}

func mapLinkDoc(doc linkDoc) links.ShortenedLink {
	link := links.ShortenedLink{
		ID:          doc.ID.Hex(),
		OriginalURL: doc.OriginalURL,
		ShortURL:    doc.ShortURL,
		Alias:       doc.Alias,
		Summary:     doc.Summary,
		Provider:    links.Provider(doc.Provider),
		CreatedAt:   doc.CreatedAt.UnixMilli(),
	}
	if doc.ExpiresAt != nil {
		ms := doc.ExpiresAt.UnixMilli()
		link.ExpiresAt = &ms
	}
	return link
}
