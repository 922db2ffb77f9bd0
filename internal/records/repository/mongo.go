package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/recordbook/recordbook/internal/records"
)

// MongoStore keeps notes and contacts in their own collections. Integer ids
// come from a per-collection sequence in the "counters" collection.
type MongoStore struct {
	client   *mongo.Client
	notes    *mongo.Collection
	contacts *mongo.Collection
	counters *mongo.Collection
}

// NewMongoStore binds the collections in database and ensures the contact
// search indexes exist.
func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*MongoStore, error) {
	m := newMongoStore(client, database)
	// searchable fields get an index each
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "lastname", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
	if _, err := m.contacts.Indexes().CreateMany(ctx, idx); err != nil {
		return nil, fmt.Errorf("mongo create indexes: %w", err)
	}
	return m, nil
}

func newMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		notes:    db.Collection("notes"),
		contacts: db.Collection("contacts"),
		counters: db.Collection("counters"),
	}
}

func (m *MongoStore) nextID(ctx context.Context, sequence string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("mongo next id for %s: %w", sequence, err)
	}
	return out.Seq, nil
}

func mongoNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func findOptions(offset, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func (m *MongoStore) CreateNote(ctx context.Context, n *records.Note) (*records.Note, error) {
	id, err := m.nextID(ctx, "notes")
	if err != nil {
		return nil, err
	}
	stored := *n
	stored.ID = id
	if _, err := m.notes.InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("mongo insert note: %w", err)
	}
	return &stored, nil
}

func (m *MongoStore) GetNote(ctx context.Context, id int64) (*records.Note, error) {
	var n records.Note
	if err := m.notes.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return nil, mongoNotFound(err)
	}
	return &n, nil
}

func (m *MongoStore) ListNotes(ctx context.Context, offset, limit int) ([]records.Note, error) {
	cur, err := m.notes.Find(ctx, bson.M{}, findOptions(offset, limit))
	if err != nil {
		return nil, err
	}
	out := []records.Note{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoStore) DeleteNote(ctx context.Context, id int64) error {
	return deleteOne(ctx, m.notes, id)
}

func (m *MongoStore) CreateContact(ctx context.Context, c *records.Contact) (*records.Contact, error) {
	id, err := m.nextID(ctx, "contacts")
	if err != nil {
		return nil, err
	}
	stored := *c
	stored.ID = id
	if _, err := m.contacts.InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("mongo insert contact: %w", err)
	}
	return &stored, nil
}

func (m *MongoStore) GetContact(ctx context.Context, id int64) (*records.Contact, error) {
	var c records.Contact
	if err := m.contacts.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mongoNotFound(err)
	}
	return &c, nil
}

func (m *MongoStore) ListContacts(ctx context.Context, offset, limit int) ([]records.Contact, error) {
	return m.findContacts(ctx, bson.M{}, findOptions(offset, limit))
}

func (m *MongoStore) findContacts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]records.Contact, error) {
	cur, err := m.contacts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []records.Contact{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoStore) UpdateContact(ctx context.Context, id int64, p records.ContactPatch) (*records.Contact, error) {
	if p.Empty() {
		return m.GetContact(ctx, id)
	}
	var c records.Contact
	err := m.contacts.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(p.Columns())},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, mongoNotFound(err)
	}
	return &c, nil
}

func (m *MongoStore) DeleteContact(ctx context.Context, id int64) error {
	return deleteOne(ctx, m.contacts, id)
}

func (m *MongoStore) FindContacts(ctx context.Context, field records.ContactField, value string) ([]records.Contact, error) {
	if !field.Valid() {
		return nil, ErrUnknownField
	}
	return m.findContacts(ctx, bson.M{string(field): value}, findOptions(0, 0))
}

func deleteOne(ctx context.Context, col *mongo.Collection, id int64) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
