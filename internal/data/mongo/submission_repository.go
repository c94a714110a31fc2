// Package mongo provides MongoDB implementations of the domain repositories.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/afip-einvoicing/internal/domain/submission"
)

const (
	// SubmissionCollectionName is the name of the audit trail collection
	SubmissionCollectionName = "submission_records"
)

// SubmissionRepository implements the submission.Repository interface for MongoDB
type SubmissionRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewSubmissionRepository creates a new MongoDB submission repository
func NewSubmissionRepository(logger *slog.Logger, db *mongo.Database) submission.Repository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one submission attempt to the audit trail. Records are
// append-only; there is nothing to deduplicate since every attempt counts.
func (r *SubmissionRepository) Create(ctx context.Context, record *submission.Record) error {
	collection := r.db.Collection(SubmissionCollectionName)

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to create submission record",
			"invoice_id", record.InvoiceID,
			"error", err)
		return fmt.Errorf("failed to create submission record: %w", err)
	}

	return nil
}

// FindByInvoiceID retrieves every submission attempt for an invoice, oldest
// first. Returns ErrNoRecords when the invoice was never submitted.
func (r *SubmissionRepository) FindByInvoiceID(ctx context.Context, invoiceID int64) ([]*submission.Record, error) {
	collection := r.db.Collection(SubmissionCollectionName)

	filter := bson.M{"invoice_id": invoiceID}
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query submission records",
			"invoice_id", invoiceID,
			"error", err)
		return nil, fmt.Errorf("failed to query submission records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*submission.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode submission records: %w", err)
	}

	if len(records) == 0 {
		return nil, submission.ErrNoRecords{InvoiceID: invoiceID}
	}

	return records, nil
}
