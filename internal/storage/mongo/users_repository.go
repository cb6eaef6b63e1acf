package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/shortenhub/shorten/internal/auth"
	"github.com/shortenhub/shorten/internal/infrastructure/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersRepository stores account credentials. Emails are unique and
// normalized to lowercase before any lookup or insert.
type UsersRepository struct {
	coll *mongo.Collection
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash []byte             `bson:"passwordHash"`
	Confirmed    bool               `bson:"confirmed"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func NewUsersRepository(m *db.Mongo) (*UsersRepository, error) {
	repo := &UsersRepository{coll: m.Collection("users")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *UsersRepository) Create(ctx context.Context, email string, passwordHash []byte) (auth.User, error) {
	doc := userDoc{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.User{}, auth.ErrEmailTaken
		}
		return auth.User{}, err
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return mapUserDoc(doc), nil
}

func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, err
	}
	return mapUserDoc(doc), nil
}

// Confirm flips the account's email-confirmation flag. It is how the
// confirmation step completes; sign-in is refused until it has run.
func (r *UsersRepository) Confirm(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return auth.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"confirmed": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func mapUserDoc(doc userDoc) auth.User {
	return auth.User{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Confirmed:    doc.Confirmed,
		CreatedAt:    doc.CreatedAt,
	}
}
