package api

import (
	"github.com/JaimeStill/courier/internal/approvals"
	"github.com/JaimeStill/courier/internal/attachments"
	"github.com/JaimeStill/courier/internal/audit"
	"github.com/JaimeStill/courier/internal/config"
	"github.com/JaimeStill/courier/internal/documents"
	"github.com/JaimeStill/courier/internal/stamping"
	"github.com/JaimeStill/courier/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Users       users.System
	Audit       audit.System
	Attachments attachments.System
	Stamping    stamping.System
	Documents   documents.System
	Approvals   approvals.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	db := runtime.Database.Connection()

	usersSystem := users.New(db, runtime.Storage, runtime.Logger)
	auditSystem := audit.New(db, runtime.Logger, runtime.Pagination)

	attachmentsSystem := attachments.New(
		attachments.NewStore(db),
		runtime.Storage,
		runtime.Logger,
	)

	stampingSystem := stamping.New(runtime.Storage, runtime.Logger)

	docsSystem := documents.New(documents.Deps{
		Store:       documents.NewStore(db, runtime.Pagination),
		Attachments: attachmentsSystem,
		Users:       usersSystem,
		Stamper:     stampingSystem,
		Storage:     runtime.Storage,
		Audit:       auditSystem,
		Logger:      runtime.Logger,
		Pagination:  runtime.Pagination,
		PreviewTTL:  cfg.Storage.PresignTTLDuration(),
	})

	approvalsSystem := approvals.New(approvals.Deps{
		Store:       approvals.NewStore(db),
		Users:       usersSystem,
		Attachments: attachmentsSystem,
		Stamper:     stampingSystem,
		Audit:       auditSystem,
		Logger:      runtime.Logger,
	})

	return &Domain{
		Users:       usersSystem,
		Audit:       auditSystem,
		Attachments: attachmentsSystem,
		Stamping:    stampingSystem,
		Documents:   docsSystem,
		Approvals:   approvalsSystem,
	}
}
