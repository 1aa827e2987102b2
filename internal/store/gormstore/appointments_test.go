package gormstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medconnect-server/internal/appointments"
	"medconnect-server/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

const (
	guardedUpdate = "UPDATE `appointments` SET .* WHERE .*version = \\?"
	countByID     = "SELECT count\\(\\*\\) FROM `appointments` WHERE id = \\?"
)

func TestUpdateVersionGuard(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		existing int
		want     error
	}{
		{"current version", 1, 0, nil},
		{"stale version", 0, 1, models.ErrConflict},
		{"missing row", 0, 0, models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec(guardedUpdate).WillReturnResult(sqlmock.NewResult(0, tt.affected))
			if tt.affected == 0 {
				mock.ExpectQuery(countByID).
					WithArgs("appt-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.existing))
			}

			appt := &models.Appointment{
				BaseModel: models.BaseModel{ID: "appt-1"},
				Status:    models.StatusConfirmed,
				Version:   3,
			}
			err := NewAppointments(db).Update(context.Background(), appt, 2)
			if !errors.Is(err, tt.want) {
				t.Errorf("Update = %v, want %v", err, tt.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestListAppliesFilterAndRecentOrder(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `appointments` WHERE hospital_id = \\? AND status IN \\(\\?\\) ORDER BY created_at DESC LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hospital_id", "status"}).
			AddRow("appt-2", "h1", "confirmed").
			AddRow("appt-1", "h1", "confirmed"))

	list, err := NewAppointments(db).List(context.Background(), appointments.Recent(appointments.Filter{
		HospitalID: "h1",
		Statuses:   []models.AppointmentStatus{models.StatusConfirmed},
	}))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "appt-2" || list[0].Status != models.StatusConfirmed {
		t.Errorf("List = %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDeleteMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM `appointments` WHERE id = \\?").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewAppointments(db).Delete(context.Background(), "gone"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
}
