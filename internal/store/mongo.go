package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Session is a questionnaire session document.
type Session struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	Locale       string     `json:"locale" bson:"locale"`
	Consent      bool       `json:"consent" bson:"consent"`
	StartedAt    time.Time  `json:"started_at" bson:"started_at"`
	LastActivity time.Time  `json:"last_activity" bson:"last_activity"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// Answer is a persisted answer document.
type Answer struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID     string    `json:"session_id" bson:"session_id"`
	QuestionID    int       `json:"question_id" bson:"question_id"`
	RawTranscript string    `json:"raw_transcript" bson:"raw_transcript"`
	MappedOption  string    `json:"mapped_option" bson:"mapped_option"`
	Confidence    float64   `json:"confidence" bson:"confidence"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// SessionRepo persists questionnaire sessions.
type SessionRepo interface {
	Create(ctx context.Context, locale string, consent bool) (string, error)
	Get(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string) error
	Finish(ctx context.Context, id string) error
}

// AnswerRepo persists answers.
type AnswerRepo interface {
	Create(ctx context.Context, answer *Answer) error
	ListBySession(ctx context.Context, sessionID string) ([]Answer, error)
}

// Connect opens a MongoDB client and verifies connectivity.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a Mongo-backed session repository.
func NewSessionRepo(client *mongo.Client, database string) SessionRepo {
	return &sessionRepo{collection: client.Database(database).Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, locale string, consent bool) (string, error) {
	now := time.Now().UTC()
	result, err := r.collection.InsertOne(ctx, bson.M{
		"locale":        locale,
		"consent":       consent,
		"started_at":    now,
		"last_activity": now,
	})
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var doc struct {
		ID           primitive.ObjectID `bson:"_id"`
		Locale       string             `bson:"locale"`
		Consent      bool               `bson:"consent"`
		StartedAt    time.Time          `bson:"started_at"`
		LastActivity time.Time          `bson:"last_activity"`
		FinishedAt   *time.Time         `bson:"finished_at,omitempty"`
	}
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, err
	}

	return &Session{
		ID:           doc.ID.Hex(),
		Locale:       doc.Locale,
		Consent:      doc.Consent,
		StartedAt:    doc.StartedAt,
		LastActivity: doc.LastActivity,
		FinishedAt:   doc.FinishedAt,
	}, nil
}

func (r *sessionRepo) Touch(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_activity": time.Now().UTC()}})
	return err
}

func (r *sessionRepo) Finish(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"finished_at": time.Now().UTC()}})
	return err
}

type answerRepo struct {
	collection *mongo.Collection
}

// NewAnswerRepo creates a Mongo-backed answer repository.
func NewAnswerRepo(client *mongo.Client, database string) AnswerRepo {
	return &answerRepo{collection: client.Database(database).Collection("answers")}
}

func (r *answerRepo) Create(ctx context.Context, answer *Answer) error {
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, bson.M{
		"session_id":     answer.SessionID,
		"question_id":    answer.QuestionID,
		"raw_transcript": answer.RawTranscript,
		"mapped_option":  answer.MappedOption,
		"confidence":     answer.Confidence,
		"created_at":     answer.CreatedAt,
	})
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		answer.ID = oid.Hex()
	}
	return nil
}

func (r *answerRepo) ListBySession(ctx context.Context, sessionID string) ([]Answer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID            primitive.ObjectID `bson:"_id"`
		SessionID     string             `bson:"session_id"`
		QuestionID    int                `bson:"question_id"`
		RawTranscript string             `bson:"raw_transcript"`
		MappedOption  string             `bson:"mapped_option"`
		Confidence    float64            `bson:"confidence"`
		CreatedAt     time.Time          `bson:"created_at"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	answers := make([]Answer, 0, len(docs))
	for _, d := range docs {
		answers = append(answers, Answer{
			ID:            d.ID.Hex(),
			SessionID:     d.SessionID,
			QuestionID:    d.QuestionID,
			RawTranscript: d.RawTranscript,
			MappedOption:  d.MappedOption,
			Confidence:    d.Confidence,
			CreatedAt:     d.CreatedAt,
		})
	}
	return answers, nil
}
