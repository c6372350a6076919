package docstore

import (
	"context"
	"errors"
	"fmt"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// seqField records insertion order. Ids may be supplied by callers, so "_id"
// alone does not follow creation order.
const seqField = "_seq"

// MongoStore implements Store and Subscriber on a Mongo database.
type MongoStore struct {
	db  *mongo.Database
	log *zap.Logger
}

// NewMongo wraps db.
func NewMongo(db *mongo.Database, logger *zap.Logger) *MongoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoStore{db: db, log: logger}
}

// Database exposes the underlying database for index management.
func (s *MongoStore) Database() *mongo.Database { return s.db }

// Get loads a record by id.
func (s *MongoStore) Get(ctx context.Context, coll, id string) (bson.M, error) {
	var m bson.M
	err := s.db.Collection(coll).FindOne(ctx, bson.M{IDField: id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(coll, id)
	}
	if err != nil {
		return nil, s.mapErr("get", coll, err)
	}
	delete(m, seqField)
	return m, nil
}

// Query returns matching records in insertion order.
func (s *MongoStore) Query(ctx context.Context, coll string, filters ...Filter) ([]bson.M, error) {
	if err := checkFilters(filters); err != nil {
		return nil, err
	}
	q, err := mongoFilter(filters)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: seqField, Value: 1}, {Key: IDField, Value: 1}})
	cur, err := s.db.Collection(coll).Find(ctx, q, opts)
	if err != nil {
		return nil, s.mapErr("query", coll, err)
	}
	defer cur.Close(ctx)

	out := make([]bson.M, 0)
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, s.mapErr("query", coll, err)
		}
		delete(m, seqField)
		out = append(out, m)
	}
	if err := cur.Err(); err != nil {
		return nil, s.mapErr("query", coll, err)
	}
	return out, nil
}

// Create inserts a record.
func (s *MongoStore) Create(ctx context.Context, coll string, fields any) (string, error) {
	doc, err := Encode(fields)
	if err != nil {
		return "", err
	}
	id, err := idOf(doc)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}
	doc[IDField] = id
	doc[seqField] = primitive.NewObjectID()

	if _, err := s.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		return "", s.mapErr("create", coll, err)
	}
	return id, nil
}

// Update applies a $set of fields.
func (s *MongoStore) Update(ctx context.Context, coll, id string, fields any) error {
	set, err := Encode(fields)
	if err != nil {
		return err
	}
	delete(set, IDField)
	delete(set, seqField)
	if len(set) == 0 {
		return nil
	}
	res, err := s.db.Collection(coll).UpdateOne(ctx, bson.M{IDField: id}, bson.M{"$set": set})
	if err != nil {
		return s.mapErr("update", coll, err)
	}
	if res.MatchedCount == 0 {
		return notFound(coll, id)
	}
	return nil
}

// Ping checks connectivity to the primary.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return s.mapErr("ping", "", err)
	}
	return nil
}

// Subscribe opens a change stream on coll. Standalone servers do not support
// change streams; callers should fall back to polling when this fails.
func (s *MongoStore) Subscribe(ctx context.Context, coll string) (<-chan Change, error) {
	stream, err := s.db.Collection(coll).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, s.mapErr("subscribe", coll, err)
	}
	ch := make(chan Change, 16)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var ev struct {
				OperationType string `bson:"operationType"`
				DocumentKey   struct {
					ID string `bson:"_id"`
				} `bson:"documentKey"`
			}
			if err := stream.Decode(&ev); err != nil {
				s.log.Warn("change stream decode failed", zap.String("collection", coll), zap.Error(err))
				continue
			}
			c := Change{Collection: coll, ID: ev.DocumentKey.ID}
			switch ev.OperationType {
			case "insert":
				c.Type = ChangeInsert
			case "update", "replace":
				c.Type = ChangeUpdate
			default:
				continue
			}
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			s.log.Warn("change stream ended", zap.String("collection", coll), zap.Error(err))
		}
	}()
	return ch, nil
}

func mongoFilter(filters []Filter) (bson.M, error) {
	conds := make(bson.A, 0, len(filters))
	for _, f := range filters {
		var op string
		switch f.Op {
		case OpEq:
			op = "$eq"
		case OpNe:
			op = "$ne"
		case OpLt:
			op = "$lt"
		case OpLte:
			op = "$lte"
		case OpGt:
			op = "$gt"
		case OpGte:
			op = "$gte"
		case OpIn:
			op = "$in"
		}
		conds = append(conds, bson.M{f.Field: bson.M{op: f.Value}})
	}
	switch len(conds) {
	case 0:
		return bson.M{}, nil
	case 1:
		return conds[0].(bson.M), nil
	}
	return bson.M{"$and": conds}, nil
}

func (s *MongoStore) mapErr(op, coll string, err error) error {
	s.log.Warn("document store error",
		zap.String("op", op),
		zap.String("collection", coll),
		zap.Error(err))
	switch {
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return apperr.Collaborator("deadline-exceeded", err)
	case errors.Is(err, context.Canceled):
		return apperr.Collaborator("cancelled", err)
	case wafflemongo.IsDup(err):
		return apperr.Collaborator("already-exists", err)
	case mongo.IsNetworkError(err):
		return apperr.Collaborator("unavailable", err)
	}
	return apperr.Collaborator("unavailable", fmt.Errorf("%s %s: %w", op, coll, err))
}
