package audit

import (
	"context"

	"github.com/JaimeStill/courier/pkg/pagination"
)

// System records and lists audit entries.
type System interface {
	Emitter

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Entry], error)
}
