package sync

import (
	"context"

	"github.com/leductinjl/backend/internal/relational"
	"github.com/leductinjl/backend/internal/types"
)

// Resolver derives foreign identifiers for records that reference other
// entities indirectly. Resolve enriches the record in place and leaves
// fields that are already populated untouched.
type Resolver interface {
	Resolve(ctx context.Context, joinID string, record Record) error
}

// RegistrationResolver resolves candidate and exam identifiers through
// the exam registration join entity. Certificates, awards and
// recognitions carry only a registration id; their candidate and exam
// edges need the registration row to be derivable.
type RegistrationResolver struct {
	registrations relational.Reader
}

// NewRegistrationResolver creates a resolver backed by the registration
// reader.
func NewRegistrationResolver(registrations relational.Reader) *RegistrationResolver {
	return &RegistrationResolver{registrations: registrations}
}

// Resolve looks up the registration row and copies candidate_id and
// exam_id into the record unless the record already carries them. A
// missing registration row is not an error: the record simply keeps
// whatever identifiers it already has, and edges that cannot be derived
// are skipped downstream.
func (r *RegistrationResolver) Resolve(ctx context.Context, joinID string, record Record) error {
	if joinID == "" {
		return nil
	}
	row, err := r.registrations.GetByID(ctx, joinID)
	if err != nil {
		return types.WrapRetryableError(types.SYNC_RESOLUTION_FAILED,
			"failed to resolve registration "+joinID, err)
	}
	if row == nil {
		return nil
	}
	joined, err := Normalize(row)
	if err != nil {
		return types.WrapError(types.SYNC_RESOLUTION_FAILED,
			"unexpected registration row shape for "+joinID, err)
	}
	for _, field := range []string{"candidate_id", "exam_id"} {
		if record.StringField(field) != "" {
			continue
		}
		if id := joined.StringField(field); id != "" {
			record[field] = id
		}
	}
	return nil
}
