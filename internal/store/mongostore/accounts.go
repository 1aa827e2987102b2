package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/models"
)

// Partition stores the accounts of one role in that role's collection.
type Partition[T any, PT interface {
	*T
	models.Account
}] struct {
	coll *mongo.Collection
	role models.Role
}

func NewPatients(db *mongo.Database) *Partition[models.Patient, *models.Patient] {
	return &Partition[models.Patient, *models.Patient]{coll: db.Collection(patientsCollection), role: models.RolePatient}
}

func NewDoctors(db *mongo.Database) *Partition[models.Doctor, *models.Doctor] {
	return &Partition[models.Doctor, *models.Doctor]{coll: db.Collection(doctorsCollection), role: models.RoleDoctor}
}

func NewHospitals(db *mongo.Database) *Partition[models.Hospital, *models.Hospital] {
	return &Partition[models.Hospital, *models.Hospital]{coll: db.Collection(hospitalsCollection), role: models.RoleHospital}
}

func (p *Partition[T, PT]) Role() models.Role { return p.role }

func (p *Partition[T, PT]) cast(account models.Account) (PT, error) {
	v, ok := account.(PT)
	if !ok {
		var zero PT
		return zero, fmt.Errorf("%w: %T cannot be stored as %s", models.ErrInvalidRole, account, p.role)
	}
	return v, nil
}

func (p *Partition[T, PT]) Create(ctx context.Context, account models.Account) error {
	v, err := p.cast(account)
	if err != nil {
		return err
	}
	v.Base().EnsureID()
	if _, err := p.coll.InsertOne(ctx, v); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (p *Partition[T, PT]) FindByID(ctx context.Context, id string) (models.Account, error) {
	return p.findOne(ctx, bson.M{"_id": id})
}

func (p *Partition[T, PT]) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return p.findOne(ctx, bson.M{"email": email})
}

func (p *Partition[T, PT]) findOne(ctx context.Context, filter bson.M) (models.Account, error) {
	var row T
	if err := p.coll.FindOne(ctx, filter).Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return PT(&row), nil
}

func (p *Partition[T, PT]) Save(ctx context.Context, account models.Account) error {
	v, err := p.cast(account)
	if err != nil {
		return err
	}
	res, err := p.coll.ReplaceOne(ctx, bson.M{"_id": v.Base().ID}, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (p *Partition[T, PT]) List(ctx context.Context, q accounts.Query) ([]models.Account, int64, error) {
	filter := accountFilter(p.role, q.Filter)
	total, err := p.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(accountSort(p.role, q.Sort))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	cur, err := p.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var rows []T
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	out := make([]models.Account, 0, len(rows))
	for i := range rows {
		out = append(out, PT(&rows[i]))
	}
	return out, total, nil
}

func (p *Partition[T, PT]) Count(ctx context.Context, f accounts.Filter) (int64, error) {
	return p.coll.CountDocuments(ctx, accountFilter(p.role, f))
}

func accountFilter(role models.Role, f accounts.Filter) bson.M {
	m := bson.M{}
	if len(f.IDs) > 0 {
		m["_id"] = bson.M{"$in": f.IDs}
	}
	if f.IsActive != nil {
		m["isActive"] = *f.IsActive
	}
	if f.IsVerified != nil {
		m["isVerified"] = *f.IsVerified
	}

	searchFields := []string{"name", "email"}
	switch role {
	case models.RoleDoctor:
		if f.HospitalID != "" {
			m["hospitalId"] = f.HospitalID
		}
		if f.Specialization != "" {
			m["specialization"] = exact(f.Specialization)
		}
		if f.Department != "" {
			m["department"] = exact(f.Department)
		}
		if f.MinRating != nil {
			m["rating"] = bson.M{"$gte": *f.MinRating}
		}
		searchFields = append(searchFields, "specialization")
	case models.RoleHospital:
		if f.Type != "" {
			m["type"] = exact(f.Type)
		}
		if f.City != "" {
			m["city"] = exact(f.City)
		}
		if f.State != "" {
			m["state"] = exact(f.State)
		}
		if f.Is24x7 != nil {
			m["is24x7"] = *f.Is24x7
		}
		if f.MinRating != nil {
			m["rating"] = bson.M{"$gte": *f.MinRating}
		}
		searchFields = append(searchFields, "hospitalName", "city")
	}

	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		or := bson.A{}
		for _, field := range searchFields {
			or = append(or, bson.M{field: pattern})
		}
		m["$or"] = or
	}
	return m
}

// exact matches a whole string case-insensitively.
func exact(v string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(v) + "$", "$options": "i"}
}

func accountSort(role models.Role, s accounts.Sort) bson.D {
	switch s {
	case accounts.SortRatingDesc:
		if role != models.RolePatient {
			return bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}
		}
	case accounts.SortNameAsc:
		return bson.D{{Key: "name", Value: 1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}
