// Package mongo stores rooms and support entities in MongoDB. A room is one
// document with its participants and messages embedded.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Support/internal/core"
	"github.com/dkeye/Support/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection   = "chatrooms"
	queriesCollection = "supportqueries"
	ticketsCollection = "supporttickets"
)

type Config struct {
	URI         string
	Database    string
	MaxPoolSize int
	MaxRetry    int
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ core.Store = (*Store)(nil)

// Connect dials MongoDB, retrying while the server is not yet reachable.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	retries := cfg.MaxRetry
	if retries <= 0 {
		retries = 1
	}

	var (
		cli *mongo.Client
		err error
	)
	for i := 0; i < retries; i++ {
		cli, err = connect(ctx, opts)
		if err == nil {
			break
		}
		log.Warn().Err(err).Str("module", "store.mongo").Int("attempt", i+1).Msg("connect failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second / 2):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	s := &Store{client: cli, db: cli.Database(cfg.Database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("module", "store.mongo").Str("database", cfg.Database).Msg("connected")
	return s, nil
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return cli, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(roomsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure roomId index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) LoadRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var room domain.Room
	err := s.db.Collection(roomsCollection).FindOne(ctx, bson.M{"roomId": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// SaveRoom upserts the fields the gateway owns; anything else another
// service keeps on the room document is left untouched.
func (s *Store) SaveRoom(ctx context.Context, room *domain.Room) error {
	_, err := s.db.Collection(roomsCollection).UpdateOne(ctx,
		bson.M{"roomId": room.RoomID},
		roomUpdate(room),
		options.Update().SetUpsert(true),
	)
	return err
}

func roomUpdate(room *domain.Room) bson.M {
	set := bson.M{
		"roomName":       room.RoomName,
		"roomType":       room.RoomType,
		"participants":   room.Participants,
		"messages":       room.Messages,
		"messageCount":   room.MessageCount,
		"lastActivityAt": room.LastActivityAt,
	}
	if !room.LastMessageAt.IsZero() {
		set["lastMessageAt"] = room.LastMessageAt
	}
	return bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": room.CreatedAt},
	}
}

func entityCollection(t domain.EntityType) (string, error) {
	switch t {
	case domain.EntityQuery:
		return queriesCollection, nil
	case domain.EntityTicket:
		return ticketsCollection, nil
	default:
		return "", domain.ErrEntityTypeInvalid
	}
}

// idFilter matches ObjectID keys written by the storefront, and plain string
// keys otherwise.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

// entityDoc is the subset of a query or ticket document the gateway reads.
// Queries keep their log under "responses", tickets under "messages".
type entityDoc struct {
	TicketNumber   string            `bson:"ticketNumber,omitempty"`
	Subject        string            `bson:"subject,omitempty"`
	Status         string            `bson:"status"`
	CustomerID     string            `bson:"customerId,omitempty"`
	CustomerEmail  string            `bson:"customerEmail,omitempty"`
	RoomID         string            `bson:"roomId,omitempty"`
	Responses      []domain.Response `bson:"responses,omitempty"`
	Messages       []domain.Response `bson:"messages,omitempty"`
	LastActivityAt time.Time         `bson:"lastActivityAt"`
}

func logField(t domain.EntityType) string {
	if t == domain.EntityTicket {
		return "messages"
	}
	return "responses"
}

func (s *Store) LoadEntity(ctx context.Context, id string, typ domain.EntityType) (*domain.Entity, error) {
	coll, err := entityCollection(typ)
	if err != nil {
		return nil, err
	}
	var doc entityDoc
	err = s.db.Collection(coll).FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e := &domain.Entity{
		ID:             id,
		Type:           typ,
		Number:         doc.TicketNumber,
		Subject:        doc.Subject,
		Status:         doc.Status,
		CustomerID:     domain.UserID(doc.CustomerID),
		CustomerEmail:  doc.CustomerEmail,
		RoomID:         domain.RoomID(doc.RoomID),
		Responses:      doc.Responses,
		LastActivityAt: doc.LastActivityAt,
	}
	if typ == domain.EntityTicket {
		e.Responses = doc.Messages
	}
	return e, nil
}

// SaveEntity updates only the fields the gateway owns, leaving the rest of
// the storefront's document alone.
func (s *Store) SaveEntity(ctx context.Context, e *domain.Entity) error {
	coll, err := entityCollection(e.Type)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(coll).UpdateOne(ctx, idFilter(e.ID), entityUpdate(e))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound
	}
	return nil
}

// entityUpdate leaves the response log alone while the entity has none, so a
// bare status change never nulls out a missing array.
func entityUpdate(e *domain.Entity) bson.M {
	set := bson.M{
		"status":         e.Status,
		"lastActivityAt": e.LastActivityAt,
	}
	if e.Responses != nil {
		set[logField(e.Type)] = e.Responses
	}
	return bson.M{"$set": set}
}
