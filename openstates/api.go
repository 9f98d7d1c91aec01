package openstates

import (
	"context"

	"github.com/s0up4200/openstates/collection"
)

// API defines the interface for Open States operations
type API interface {
	// ListBills queries bills
	ListBills(ctx context.Context, region string, params Params) (*collection.Collection, error)

	// GetBill fetches a single bill
	GetBill(ctx context.Context, id string, params Params) (*collection.Collection, error)

	// ListLegislators queries the legislators of a region
	ListLegislators(ctx context.Context, region string, params Params) (*collection.Collection, error)

	// ListCommittees queries the committees of a region
	ListCommittees(ctx context.Context, region string, params Params) (*collection.Collection, error)

	// GetCommittee fetches a single committee
	GetCommittee(ctx context.Context, id string, params Params) (*collection.Collection, error)
}

// BatchFetcher fetches many singular resources at once
type BatchFetcher interface {
	// GetBills fetches bills by id, preserving input order
	GetBills(ctx context.Context, ids []string, params Params, concurrency int) ([]*collection.Collection, error)

	// GetCommittees fetches committees by id, preserving input order
	GetCommittees(ctx context.Context, ids []string, params Params, concurrency int) ([]*collection.Collection, error)
}

var (
	_ API          = (*Client)(nil)
	_ BatchFetcher = (*Client)(nil)
)
