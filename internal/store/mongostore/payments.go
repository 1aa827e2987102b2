package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"medconnect-server/internal/models"
)

// Payments is a MongoDB payments.Repository.
type Payments struct {
	coll *mongo.Collection
}

func NewPayments(db *mongo.Database) *Payments {
	return &Payments{coll: db.Collection(paymentsCollection)}
}

func (s *Payments) Create(ctx context.Context, p *models.Payment) error {
	p.EnsureID()
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

func (s *Payments) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Payments) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return s.findOne(ctx, bson.M{"orderId": orderID})
}

func (s *Payments) findOne(ctx context.Context, filter bson.M) (*models.Payment, error) {
	var p models.Payment
	if err := s.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Payments) ListByPatient(ctx context.Context, patientID string) ([]models.Payment, error) {
	cur, err := s.coll.Find(ctx, bson.M{"patientId": patientID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	list := make([]models.Payment, 0)
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Payments) Save(ctx context.Context, p *models.Payment) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
