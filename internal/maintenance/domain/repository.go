package maintenance

import "context"

// RetirementRepository stores retirement records. Create enforces at most one
// record per blade and fails with ErrAlreadyRetired otherwise.
type RetirementRepository interface {
	Create(ctx context.Context, record *RetirementRecord) error
	GetByBlade(ctx context.Context, bladeID string) (*RetirementRecord, error)
	ListByType(ctx context.Context, bladeTypeID string) ([]RetirementRecord, error)
}
