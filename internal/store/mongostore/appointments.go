package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
)

// Appointments is a MongoDB appointments.Repository.
type Appointments struct {
	coll *mongo.Collection
}

func NewAppointments(db *mongo.Database) *Appointments {
	return &Appointments{coll: db.Collection(appointmentsCollection)}
}

func (s *Appointments) Create(ctx context.Context, appt *models.Appointment) error {
	appt.EnsureID()
	_, err := s.coll.InsertOne(ctx, appt)
	return err
}

func (s *Appointments) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (s *Appointments) List(ctx context.Context, q appointments.Query) ([]models.Appointment, error) {
	filter := appointmentFilter(q.Filter)

	sort := bson.D{{Key: "appointmentDate", Value: 1}}
	if q.Sort == appointments.SortCreatedDesc {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}
	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	list := make([]models.Appointment, 0)
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Appointments) Update(ctx context.Context, appt *models.Appointment, expectedVersion int) error {
	res, err := s.coll.ReplaceOne(ctx, versionGuard(appt.ID, expectedVersion), appt)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": appt.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrConflict
}

func (s *Appointments) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func appointmentFilter(f appointments.Filter) bson.M {
	filter := bson.M{}
	if f.PatientID != "" {
		filter["patientId"] = f.PatientID
	}
	if f.DoctorID != "" {
		filter["doctorId"] = f.DoctorID
	}
	if f.HospitalID != "" {
		filter["hospitalId"] = f.HospitalID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.From != nil || f.To != nil {
		date := bson.M{}
		if f.From != nil {
			date["$gte"] = *f.From
		}
		if f.To != nil {
			date["$lte"] = *f.To
		}
		filter["appointmentDate"] = date
	}
	if f.ReminderSent != nil {
		filter["reminderSent"] = *f.ReminderSent
	}
	return filter
}

// versionGuard matches the document only while it still has the expected
// version.
func versionGuard(id string, expectedVersion int) bson.M {
	return bson.M{"_id": id, "version": expectedVersion}
}
