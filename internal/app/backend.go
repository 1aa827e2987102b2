package app

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"medconnect-server/internal/accounts"
	"medconnect-server/internal/appointments"
	"medconnect-server/internal/config"
	"medconnect-server/internal/models"
	"medconnect-server/internal/payments"
	"medconnect-server/internal/store/gormstore"
	"medconnect-server/internal/store/memstore"
	"medconnect-server/internal/store/mongostore"
)

// backend is the set of repositories for one DB_DRIVER.
type backend struct {
	patients     accounts.Partition
	doctors      accounts.Partition
	hospitals    accounts.Partition
	appointments appointments.Repository
	payments     payments.Repository

	// Exactly one of these is set for a database-backed driver.
	sql   *gorm.DB
	mongo *mongo.Database

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openBackend(ctx context.Context, cfg config.DatabaseConfig, debug bool) (*backend, error) {
	switch cfg.Driver {
	case "memory":
		return &backend{
			patients:     memstore.NewPatients(),
			doctors:      memstore.NewDoctors(),
			hospitals:    memstore.NewHospitals(),
			appointments: memstore.NewAppointments(),
			payments:     memstore.NewPayments(),
		}, nil

	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		return &backend{
			patients:     mongostore.NewPatients(db),
			doctors:      mongostore.NewDoctors(db),
			hospitals:    mongostore.NewHospitals(db),
			appointments: mongostore.NewAppointments(db),
			payments:     mongostore.NewPayments(db),
			mongo:        db,
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: client.Disconnect,
		}, nil

	case "mysql", "postgres":
		db, err := models.InitDB(models.DatabaseConfig{Driver: cfg.Driver, DSN: cfg.DSN, Debug: debug})
		if err != nil {
			return nil, fmt.Errorf("connect to %s: %w", cfg.Driver, err)
		}
		return &backend{
			patients:     gormstore.NewPatients(db),
			doctors:      gormstore.NewDoctors(db),
			hospitals:    gormstore.NewHospitals(db),
			appointments: gormstore.NewAppointments(db),
			payments:     gormstore.NewPayments(db),
			sql:          db,
			ping: func(ctx context.Context) error {
				return gormstore.Ping(ctx, db)
			},
			close: func(context.Context) error {
				return gormstore.Close(db)
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
}

// migrate creates the tables or indexes the driver needs.
func (b *backend) migrate(ctx context.Context) error {
	switch {
	case b.sql != nil:
		return models.AutoMigrate(b.sql.WithContext(ctx))
	case b.mongo != nil:
		return mongostore.EnsureIndexes(ctx, b.mongo)
	}
	return nil
}
