package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
)

const documentsCollection = "documents"

// record is the on-disk shape. Data holds the JSON document converted to BSON.
type record struct {
	Key        string    `bson:"_id"`
	Collection string    `bson:"collection"`
	DocID      string    `bson:"docId"`
	Data       bson.M    `bson:"data"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

// DocumentStore implements docstore.Store on a single Mongo collection.
type DocumentStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials Mongo, pings it and ensures the lookup index exists.
func Connect(ctx context.Context, uri, database string) (*DocumentStore, error) {
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(c, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(c, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	coll := client.Database(database).Collection(documentsCollection)
	_, err = coll.Indexes().CreateOne(c, mongo.IndexModel{
		Keys: bson.D{{Key: "collection", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &DocumentStore{client: client, coll: coll}, nil
}

func (s *DocumentStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func key(collection, id string) string { return collection + "/" + id }

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var r record
	err := s.coll.FindOne(ctx, bson.M{"_id": key(collection, id)}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, err
	}
	return toDocument(r)
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	return s.find(ctx, bson.M{"collection": collection})
}

func (s *DocumentStore) Where(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	return s.find(ctx, bson.M{"collection": collection, "data." + field: value})
}

func (s *DocumentStore) find(ctx context.Context, filter bson.M) ([]docstore.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var records []record
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	out := make([]docstore.Document, 0, len(records))
	for _, r := range records {
		d, err := toDocument(r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *DocumentStore) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	id := uuid.NewString()
	m, err := toBSON(data)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	_, err = s.coll.InsertOne(ctx, record{
		Key: key(collection, id), Collection: collection, DocID: id,
		Data: m, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data json.RawMessage) error {
	m, err := toBSON(data)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.coll.UpdateOne(ctx,
		bson.M{"_id": key(collection, id)},
		bson.M{
			"$set":         bson.M{"collection": collection, "docId": id, "data": m, "updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	m, err := toBSON(raw)
	if err != nil {
		return err
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range m {
		set["data."+k] = v
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": key(collection, id)}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key(collection, id)})
	return err
}

// toBSON converts JSON to BSON through relaxed extended JSON so numbers keep
// their integer/double distinction.
func toBSON(data json.RawMessage) (bson.M, error) {
	m := bson.M{}
	if err := bson.UnmarshalExtJSON(data, false, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func toDocument(r record) (docstore.Document, error) {
	if r.Data == nil {
		r.Data = bson.M{}
	}
	b, err := bson.MarshalExtJSON(r.Data, false, false)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: r.DocID, Data: b}, nil
}

var _ docstore.Store = (*DocumentStore)(nil)
